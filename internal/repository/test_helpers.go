package repository

import (
	"io"
	"net/http"
	"strings"
	"sync/atomic"
)

// RoundTripperFunc allows us to easily mock http.Client responses in tests.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// CountingTransport answers every request with a fixed status and body and
// records how many requests it saw.
type CountingTransport struct {
	Status int
	Body   string
	calls  atomic.Int64
	last   atomic.Pointer[http.Request]
}

func (c *CountingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.calls.Add(1)
	c.last.Store(req)
	return &http.Response{
		StatusCode: c.Status,
		Body:       io.NopCloser(strings.NewReader(c.Body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func (c *CountingTransport) Calls() int {
	return int(c.calls.Load())
}

// LastRequest returns the most recent request, or nil.
func (c *CountingTransport) LastRequest() *http.Request {
	return c.last.Load()
}
