package log

import (
	"log/slog"
	"net/http"
	"time"
)

// Transport is an http.RoundTripper that logs every outgoing API request with
// structured fields. It wraps the base transport so request logging stays out
// of the API call sites.
type Transport struct {
	base   http.RoundTripper
	logger *Logger
}

// NewTransport wraps base (nil means http.DefaultTransport) with request
// logging. The component attribute is carried on the fields, not the logger,
// so it appears exactly once per line.
func NewTransport(base http.RoundTripper, logger *Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = New(Config{Level: slog.LevelInfo})
	}
	return &Transport{base: base, logger: logger}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	durationMs := time.Since(start).Milliseconds()

	fields := NewFields().
		WithComponent(ComponentAPI).
		WithRequest(req.Method, req.URL.Path).
		WithRequestID(req.Header.Get("X-Request-ID"))

	if err != nil {
		fields = fields.WithError(err)
		t.logger.Logger.Log(req.Context(), slog.LevelWarn, "API request failed", fields.ToSlice()...)
		return nil, err
	}

	fields = fields.WithResponse(resp.StatusCode, durationMs, resp.StatusCode < 400)
	level := slog.LevelDebug
	if resp.StatusCode >= 400 {
		level = slog.LevelWarn
	}
	t.logger.Logger.Log(req.Context(), level, "API request completed", fields.ToSlice()...)
	return resp, nil
}
