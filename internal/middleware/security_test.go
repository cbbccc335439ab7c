package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSecurityHeaders(t *testing.T) {
	for _, secure := range []bool{false, true} {
		rr := httptest.NewRecorder()
		NewSecurityHeaders(secure).Apply(okHandler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Fatalf("expected nosniff header")
		}
		if rr.Header().Get("X-Frame-Options") != "DENY" {
			t.Fatalf("expected frame deny header")
		}
		hsts := rr.Header().Get("Strict-Transport-Security")
		if secure && hsts == "" {
			t.Fatal("expected HSTS in secure mode")
		}
		if !secure && hsts != "" {
			t.Fatalf("unexpected HSTS in insecure mode: %q", hsts)
		}
	}
}
