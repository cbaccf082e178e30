package fetch_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"roster/internal/pkg/fetch"
	"roster/internal/testhelpers"
)

var _ = Describe("Client.Fetch", func() {
	var client *fetch.Client

	BeforeEach(func() {
		testhelpers.Activate()
		client = fetch.New(5*time.Second, "roster-test/1.0")
		client.UseDefaultClient()
	})

	AfterEach(func() {
		testhelpers.Deactivate()
	})

	It("returns the page body and sends the user agent", func() {
		stub := testhelpers.ServePage("https://example.test/wiki/Page", []byte("<html>ok</html>"))

		body, err := client.Fetch(context.Background(), "https://example.test/wiki/Page")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(Equal("<html>ok</html>"))
		Expect(stub.RequestHeader("User-Agent")).To(Equal("roster-test/1.0"))
		Expect(testhelpers.Unserved()).To(BeEmpty())
	})

	It("fails on a non-2xx status", func() {
		testhelpers.ServeStatus("https://example.test/wiki/Page", 404)

		body, err := client.Fetch(context.Background(), "https://example.test/wiki/Page")
		Expect(err).To(MatchError(ContainSubstring("unexpected status 404")))
		Expect(body).To(BeNil())
	})

	It("fails when the request cannot be made", func() {
		_, err := client.Fetch(context.Background(), "https://unknown.test/")
		Expect(err).To(MatchError(ContainSubstring("no page stub")))
	})

	It("gives up on a slow page once the timeout passes", func() {
		client = fetch.New(50*time.Millisecond, "roster-test/1.0")
		client.UseDefaultClient()
		testhelpers.ServePage("https://example.test/wiki/Slow", []byte("<html>late</html>")).After(5 * time.Second)

		started := time.Now()
		body, err := client.Fetch(context.Background(), "https://example.test/wiki/Slow")
		Expect(err).To(HaveOccurred())
		Expect(body).To(BeNil())
		Expect(time.Since(started)).To(BeNumerically("<", 2*time.Second))
	})

	It("serves a page that answers within the timeout", func() {
		testhelpers.ServePage("https://example.test/wiki/Page", []byte("<html>ok</html>")).After(10 * time.Millisecond)

		body, err := client.Fetch(context.Background(), "https://example.test/wiki/Page")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(Equal("<html>ok</html>"))
	})
})
