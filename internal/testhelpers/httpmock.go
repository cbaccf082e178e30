package testhelpers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// PageStub answers one GET for a page URL.
type PageStub struct {
	url    *url.URL
	status int
	body   []byte
	delay  time.Duration

	served  bool
	request *http.Request
}

// PageServer is an http.RoundTripper that serves registered page stubs in
// registration order, each at most once.
type PageServer struct {
	mutex sync.Mutex
	stubs []*PageStub
}

var (
	DefaultServer     = &PageServer{}
	previousTransport http.RoundTripper
)

// ServePage makes the next GET of rawURL return body as an HTML page.
func ServePage(rawURL string, body []byte) *PageStub {
	return DefaultServer.add(rawURL, http.StatusOK, body)
}

// ServeStatus makes the next GET of rawURL fail with status and no body.
func ServeStatus(rawURL string, status int) *PageStub {
	return DefaultServer.add(rawURL, status, nil)
}

// After holds the response back for d, or until the request is cancelled.
func (s *PageStub) After(d time.Duration) *PageStub {
	DefaultServer.mutex.Lock()
	defer DefaultServer.mutex.Unlock()
	s.delay = d
	return s
}

// RequestHeader returns the named header of the request s answered.
func (s *PageStub) RequestHeader(key string) string {
	DefaultServer.mutex.Lock()
	defer DefaultServer.mutex.Unlock()
	if s.request == nil {
		return ""
	}
	return s.request.Header.Get(key)
}

// Unserved lists the URLs of stubs no request has reached yet.
func Unserved() []string {
	DefaultServer.mutex.Lock()
	defer DefaultServer.mutex.Unlock()
	var pending []string
	for _, s := range DefaultServer.stubs {
		if !s.served {
			pending = append(pending, s.url.String())
		}
	}
	return pending
}

// Activate routes http.DefaultClient through DefaultServer.
func Activate() {
	if http.DefaultClient.Transport == DefaultServer {
		return
	}
	previousTransport = http.DefaultClient.Transport
	http.DefaultClient.Transport = DefaultServer
}

// Deactivate restores the previous transport and forgets every stub.
func Deactivate() {
	http.DefaultClient.Transport = previousTransport
	DefaultServer.mutex.Lock()
	DefaultServer.stubs = nil
	DefaultServer.mutex.Unlock()
}

func (p *PageServer) add(rawURL string, status int, body []byte) *PageStub {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		panic(fmt.Sprintf("testhelpers: stub URL must be absolute, got %q", rawURL))
	}

	s := &PageStub{url: u, status: status, body: body}
	p.mutex.Lock()
	p.stubs = append(p.stubs, s)
	p.mutex.Unlock()
	return s
}

func (p *PageServer) RoundTrip(req *http.Request) (*http.Response, error) {
	stub := p.claim(req)
	if stub == nil {
		return nil, fmt.Errorf("testhelpers: no page stub for %s %s (unserved: %s)",
			req.Method, req.URL, strings.Join(Unserved(), ", "))
	}

	if stub.delay > 0 {
		timer := time.NewTimer(stub.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}

	header := make(http.Header)
	if len(stub.body) > 0 {
		header.Set("Content-Type", "text/html; charset=UTF-8")
	}
	return &http.Response{
		StatusCode:    stub.status,
		Status:        fmt.Sprintf("%d %s", stub.status, http.StatusText(stub.status)),
		Body:          io.NopCloser(bytes.NewReader(stub.body)),
		Header:        header,
		Request:       req,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		ContentLength: int64(len(stub.body)),
	}, nil
}

func (p *PageServer) claim(req *http.Request) *PageStub {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if req.Method != http.MethodGet {
		return nil
	}
	for _, s := range p.stubs {
		if s.served {
			continue
		}
		if s.url.Scheme == req.URL.Scheme && s.url.Host == req.URL.Host &&
			s.url.Path == req.URL.Path && s.url.RawQuery == req.URL.RawQuery {
			s.served = true
			s.request = req
			return s
		}
	}
	return nil
}
