package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sakif/code-journal/internal/model"
)

// okHandler records whether it ran and what identity it saw.
// Wrapping it with RequireAuth lets us assert both the pass and block paths.
func okHandler(t *testing.T, want model.Identity, called *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		got, ok := IdentityFromContext(r.Context())
		if !ok {
			t.Error("IdentityFromContext() not set on an authenticated request")
		}
		if got != want {
			t.Errorf("identity = %+v, want %+v", got, want)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_ValidToken(t *testing.T) {
	ts := newTestTokenService(t)
	identity := testIdentity()
	token, err := ts.Generate(identity)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	called := false
	handler := RequireAuth(ts)(okHandler(t, identity, &called))

	req := httptest.NewRequest(http.MethodGet, "/api/entries", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if !called {
		t.Error("handler was not invoked for a valid token")
	}
}

func TestRequireAuth_RejectsBadRequests(t *testing.T) {
	ts := newTestTokenService(t)
	expired, err := ts.GenerateWithDuration(testIdentity(), -time.Minute)
	if err != nil {
		t.Fatalf("GenerateWithDuration() error = %v", err)
	}
	valid, _ := ts.Generate(testIdentity())

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not a bearer scheme", "Basic dXNlcjpwYXNz"},
		{"bearer with empty token", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
		{"tampered token", "Bearer " + valid[:len(valid)-3] + "xxx"},
		{"expired token", "Bearer " + expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := RequireAuth(ts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/entries", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
			}
			if called {
				t.Error("handler must not run when authentication fails")
			}
		})
	}
}

func TestRequireAuth_LowercaseScheme(t *testing.T) {
	// The auth scheme is case-insensitive per RFC 9110.
	ts := newTestTokenService(t)
	token, _ := ts.Generate(testIdentity())

	called := false
	handler := RequireAuth(ts)(okHandler(t, testIdentity(), &called))

	req := httptest.NewRequest(http.MethodGet, "/api/entries", nil)
	req.Header.Set("Authorization", "bearer "+token)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestIdentityFromContext_Anonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := IdentityFromContext(req.Context())
	if ok {
		t.Error("IdentityFromContext() should report false for an anonymous request")
	}
}
