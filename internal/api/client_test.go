package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(srv.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client, srv
}

func TestClientSendsBearerTokenWhenArmed(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))

	if _, err := client.ListTransactions(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("disarmed client sent Authorization %q", gotAuth)
	}

	client.SetToken("demo-token-1")
	if _, err := client.ListTransactions(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer demo-token-1" {
		t.Errorf("expected Bearer demo-token-1, got %q", gotAuth)
	}

	client.ClearToken()
	if _, err := client.ListTransactions(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("cleared client sent Authorization %q", gotAuth)
	}
}

func TestClientSetsRequestID(t *testing.T) {
	var gotID string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`[]`))
	}))

	if _, err := client.ListTransactions(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotID == "" {
		t.Error("expected X-Request-ID header to be set")
	}
}

func TestClientErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantKind error
	}{
		{"401 unauthorized", http.StatusUnauthorized, ErrAuthentication},
		{"403 forbidden", http.StatusForbidden, ErrAuthentication},
		{"404 not found", http.StatusNotFound, ErrNotFound},
		{"400 bad request", http.StatusBadRequest, ErrValidation},
		{"409 conflict", http.StatusConflict, ErrValidation},
		{"422 unprocessable", http.StatusUnprocessableEntity, ErrValidation},
		{"500 server error", http.StatusInternalServerError, ErrNetwork},
		{"503 unavailable", http.StatusServiceUnavailable, ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"message": "server says no"}`))
			}))

			_, err := client.ListTransactions(context.Background(), nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.wantKind) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.wantKind)
			}

			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.status)
			}
			if apiErr.Message != "server says no" {
				t.Errorf("Message = %q", apiErr.Message)
			}
		})
	}
}

func TestClientTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client, err := NewClient(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.ListTransactions(context.Background(), nil)
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("expected ErrNetwork, got %v", err)
	}
}

func TestClientOmitsEmptyFiltersFromQuery(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	}))

	params := Params{
		{Key: "userId", Value: "1"},
		{Key: "type", Value: ""},
		{Key: "category", Value: ""},
		{Key: "sortBy", Value: "transactionDate"},
	}
	if _, err := client.ListTransactions(context.Background(), params); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "sortBy=transactionDate&userId=1" {
		t.Errorf("query = %q, empty filters must be omitted", gotQuery)
	}
}

func TestListTransactionsDecodesBothShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare array", `[{"id": 7, "amount": 12.5, "type": "EXPENSE"}]`},
		{"paged object", `{"content": [{"id": 7, "amount": 12.5, "type": "EXPENSE"}], "totalElements": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))

			list, err := client.ListTransactions(context.Background(), nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(list) != 1 || list[0].ID != 7 {
				t.Errorf("got %+v", list)
			}
		})
	}
}

func TestLoginDecodesResponse(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "demo" || body["password"] != "demo123" {
			t.Errorf("unexpected credentials %v", body)
		}
		json.NewEncoder(w).Encode(LoginResponse{
			Token:      "demo-token-1",
			User:       User{ID: 1, Username: "demo"},
			DemoSeeded: true,
		})
	}))

	resp, err := client.Login(context.Background(), "demo", "demo123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token != "demo-token-1" || resp.User.ID != 1 || !resp.DemoSeeded {
		t.Errorf("got %+v", resp)
	}
}

func TestResolveFraudAlertHitsResolveEndpoint(t *testing.T) {
	var gotPath, gotMethod string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		json.NewEncoder(w).Encode(FraudAlert{ID: 9, Resolved: true})
	}))

	alert, err := client.ResolveFraudAlert(context.Background(), 9)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/api/fraud/alerts/9/resolve" {
		t.Errorf("got %s %s", gotMethod, gotPath)
	}
	if !alert.Resolved {
		t.Error("expected resolved alert")
	}
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	if _, err := NewClient("localhost:8080", time.Second); err == nil {
		t.Error("expected error for URL without scheme")
	}
	if _, err := NewClient("", time.Second); err == nil {
		t.Error("expected error for empty URL")
	}
}
