package log

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTransportLogsComponentOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	var buf bytes.Buffer
	logger := New(Config{
		Handler: slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
	client := &http.Client{Transport: NewTransport(nil, logger)}

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/transactions", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("X-Request-ID", "req-1")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()

	line := buf.String()
	if got := strings.Count(line, FieldComponent+"="+ComponentAPI); got != 1 {
		t.Errorf("component attribute appears %d times, want 1: %s", got, line)
	}
	if !strings.Contains(line, FieldRequestID+"=req-1") {
		t.Errorf("missing request ID: %s", line)
	}
	if !strings.Contains(line, FieldStatusCode+"=200") {
		t.Errorf("missing status code: %s", line)
	}
}

func TestTransportLogsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	var buf bytes.Buffer
	logger := New(Config{
		Handler: slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
	client := &http.Client{Transport: NewTransport(nil, logger)}

	if _, err := client.Get(srv.URL + "/api/transactions"); err == nil {
		t.Fatal("expected transport error")
	}
	line := buf.String()
	if !strings.Contains(line, "API request failed") {
		t.Errorf("missing failure log: %s", line)
	}
	if got := strings.Count(line, FieldComponent+"="+ComponentAPI); got != 1 {
		t.Errorf("component attribute appears %d times, want 1: %s", got, line)
	}
}
