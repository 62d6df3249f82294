package testkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// MockTransport implements http.RoundTripper for tests of code built on
// the outgoing HTTP client. Install it on the shared client:
//
//	mt := testkit.NewMockTransport()
//	mt.Stub("GET", "/api/products", 200, products)
//	httpclient.DefaultClient.Transport = mt
//	defer httpclient.ResetTransport()
type MockTransport struct {
	mu    sync.Mutex
	stubs []*stub
}

type stub struct {
	method string
	path   string
	status int
	body   []byte
	calls  int
}

// NewMockTransport returns an empty transport. Unstubbed requests fail.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// Stub registers a synthetic response for requests whose path contains
// path. A non-nil body is JSON-encoded.
func (mt *MockTransport) Stub(method, path string, status int, body any) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	s := &stub{method: method, path: path, status: status}
	switch v := body.(type) {
	case nil:
	case []byte:
		s.body = v
	default:
		s.body, _ = json.Marshal(v)
	}
	mt.stubs = append(mt.stubs, s)
}

// Calls reports how many requests matched the stub for method and path.
func (mt *MockTransport) Calls(method, path string) int {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	for _, s := range mt.stubs {
		if s.method == method && s.path == path {
			return s.calls
		}
	}
	return 0
}

// RoundTrip answers from the first matching stub.
func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	for _, s := range mt.stubs {
		if s.method != req.Method || !strings.Contains(req.URL.Path, s.path) {
			continue
		}
		s.calls++
		header := make(http.Header)
		header.Set("Content-Type", "application/json")
		return &http.Response{
			StatusCode: s.status,
			Header:     header,
			Body:       io.NopCloser(bytes.NewReader(s.body)),
			Request:    req,
		}, nil
	}
	return nil, fmt.Errorf("testkit: no stub for %s %s", req.Method, req.URL.Path)
}
