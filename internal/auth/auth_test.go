package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func testHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func doRequest(t *testing.T, handler http.Handler, method, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/mcp", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_MissingHeader(t *testing.T) {
	t.Parallel()
	h := Middleware("s3cret", testLogger())(testHandler())

	rec := doRequest(t, h, http.MethodPost, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if got := rec.Header().Get("WWW-Authenticate"); got != "Bearer" {
		t.Errorf("expected WWW-Authenticate: Bearer, got %q", got)
	}
	if !strings.Contains(rec.Body.String(), "invalid or missing API key") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestMiddleware_WrongToken(t *testing.T) {
	t.Parallel()
	h := Middleware("s3cret", testLogger())(testHandler())

	rec := doRequest(t, h, http.MethodPost, "Bearer wrong")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if got := rec.Header().Get("WWW-Authenticate"); got != "Bearer" {
		t.Errorf("expected WWW-Authenticate: Bearer, got %q", got)
	}
}

func TestMiddleware_WrongScheme(t *testing.T) {
	t.Parallel()
	h := Middleware("s3cret", testLogger())(testHandler())

	rec := doRequest(t, h, http.MethodPost, "Basic s3cret")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMiddleware_ValidToken(t *testing.T) {
	t.Parallel()
	h := Middleware("s3cret", testLogger())(testHandler())

	rec := doRequest(t, h, http.MethodPost, "Bearer s3cret")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("expected pass-through body, got %q", rec.Body.String())
	}
}

func TestMiddleware_ValidTokenGET(t *testing.T) {
	t.Parallel()
	h := Middleware("s3cret", testLogger())(testHandler())

	rec := doRequest(t, h, http.MethodGet, "Bearer s3cret")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestMiddleware_SchemeCaseInsensitive(t *testing.T) {
	t.Parallel()
	h := Middleware("s3cret", testLogger())(testHandler())

	rec := doRequest(t, h, http.MethodPost, "bearer s3cret")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for lowercase scheme, got %d", rec.Code)
	}
}

func TestMiddleware_MissingSecret(t *testing.T) {
	t.Parallel()
	h := Middleware("", testLogger())(testHandler())

	rec := doRequest(t, h, http.MethodPost, "Bearer anything")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "authentication key missing") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer  abc ", "abc", true},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"", "", false},
		{"Token abc", "", false},
	}
	for _, c := range cases {
		token, ok := bearerToken(c.header)
		if ok != c.ok || token != c.token {
			t.Errorf("bearerToken(%q) = (%q, %v), want (%q, %v)", c.header, token, ok, c.token, c.ok)
		}
	}
}
