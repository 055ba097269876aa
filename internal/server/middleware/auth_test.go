package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuth(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		apiKey string
		header string
		value  string
		want   int
	}{
		{"disabled when no key configured", "", "", "", http.StatusNoContent},
		{"bearer token accepted", "s3cret", "Authorization", "Bearer s3cret", http.StatusNoContent},
		{"bearer scheme case-insensitive", "s3cret", "Authorization", "bearer s3cret", http.StatusNoContent},
		{"x-api-key accepted", "s3cret", "X-API-Key", "s3cret", http.StatusNoContent},
		{"missing token rejected", "s3cret", "", "", http.StatusUnauthorized},
		{"wrong token rejected", "s3cret", "X-API-Key", "nope", http.StatusUnauthorized},
		{"basic scheme ignored", "s3cret", "Authorization", "Basic s3cret", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/cases", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()

			Auth(tt.apiKey)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Contains(t, rec.Body.String(), "error")
			}
		})
	}
}
