package transport

import (
	"log"
	"net/http"
	"time"
)

// LoggingTransport logs the method, path, status and latency of every request
type LoggingTransport struct {
	base http.RoundTripper
}

func WithLogging(base http.RoundTripper) *LoggingTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &LoggingTransport{base: base}
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	elapsed := time.Since(start).Round(time.Millisecond)

	if err != nil {
		log.Printf("[github] %s %s failed after %s: %v", req.Method, req.URL.Path, elapsed, err)
		return resp, err
	}

	log.Printf("[github] %s %s %d (%s)", req.Method, req.URL.Path, resp.StatusCode, elapsed)
	return resp, nil
}
