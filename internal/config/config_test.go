package config_test

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"roster/internal/config"
)

var _ = Describe("LoadConfig", func() {
	setEnv := func(key, value string) {
		Expect(os.Setenv(key, value)).To(Succeed())
		DeferCleanup(os.Unsetenv, key)
	}

	It("defaults the fetch timeout to fifteen seconds", func() {
		Expect(os.Unsetenv("ROSTER_FETCH_TIMEOUT")).To(Succeed())

		cfg, err := config.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.FetchTimeout).To(Equal(15 * time.Second))
		Expect(cfg.Locator.Classes).To(Equal([]string{"wikitable", "sortable"}))
		Expect(cfg.FinalSchema.Names()).To(HaveLen(9))
	})

	It("reads the fetch timeout in seconds", func() {
		setEnv("ROSTER_FETCH_TIMEOUT", "3")

		cfg, err := config.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.FetchTimeout).To(Equal(3 * time.Second))
	})

	DescribeTable("rejects a fetch timeout that is not a positive integer",
		func(value string) {
			setEnv("ROSTER_FETCH_TIMEOUT", value)

			cfg, err := config.LoadConfig()
			Expect(err).To(MatchError(ContainSubstring("ROSTER_FETCH_TIMEOUT")))
			Expect(cfg).To(BeNil())
		},
		Entry("zero", "0"),
		Entry("negative", "-5"),
		Entry("not a number", "fast"),
	)
})
