package remote

import (
	"net/http"
)

// Transport wraps an http.RoundTripper to add the service API key header
type Transport struct {
	Base   http.RoundTripper
	APIKey string
}

// RoundTrip implements http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.APIKey != "" {
		// Clone the request to avoid mutating the original
		req2 := req.Clone(req.Context())
		req2.Header.Set("apikey", t.APIKey)
		req = req2
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	return base.RoundTrip(req)
}
