package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func authedHandler(apiKeys []string) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return BearerAuthMiddleware(apiKeys)(ok)
}

func TestBearerAuth_DisabledWithoutKeys(t *testing.T) {
	rec := httptest.NewRecorder()
	authedHandler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/collections/x/search", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestBearerAuth_RequiresToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"unknown key", "Bearer wrong", http.StatusUnauthorized},
		{"valid key", "Bearer sekrit", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/collections/x/search", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			authedHandler([]string{"sekrit"}).ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestBearerAuth_ExemptPaths(t *testing.T) {
	for _, path := range []string{"/healthz", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			authedHandler([]string{"sekrit"}).ServeHTTP(rec,
				httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Code != http.StatusOK {
				t.Errorf("status = %d", rec.Code)
			}
		})
	}
}
