package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient builds a client for outbound API calls.
//
// The transport honours proxy environment variables, uses short dial and TLS
// handshake timeouts and keeps up to 100 idle connections. timeout bounds the
// whole request; http.DefaultClient has none.
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
