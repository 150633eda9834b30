package client

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewHttpTransport 集成 trace 的 transport
func NewHttpTransport() http.RoundTripper {
	return otelhttp.NewTransport(http.DefaultTransport)
}

func NewHttpClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: NewHttpTransport(),
		Timeout:   timeout,
	}
}
