package httpclient

import (
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout bounds every outbound request made by providers and notifiers.
const DefaultTimeout = 30 * time.Second

// New builds an HTTP client with the default timeout. A non-empty proxyURL
// routes traffic through that proxy; an unparsable one is ignored.
func New(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   DefaultTimeout,
		Transport: transport,
	}
}
