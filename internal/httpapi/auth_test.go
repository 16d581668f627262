package httpapi

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestJWTMiddlewareAllowsPublicPaths(t *testing.T) {
	mw := NewJWTMiddleware([]string{"/health"}, zaptest.NewLogger(t))

	called := false
	handler := mw.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatal("expected public path to reach the handler without a token")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestJWTMiddlewareRejectsMissingToken(t *testing.T) {
	mw := NewJWTMiddleware(nil, zaptest.NewLogger(t))

	handler := mw.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/runs", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMintOperatorTokenRoundTrip(t *testing.T) {
	os.Setenv("SEARCHD_JWT_SECRET", "test-secret-at-least-32-bytes-long!!")
	defer os.Unsetenv("SEARCHD_JWT_SECRET")

	token, err := MintOperatorToken("operator-1")
	if err != nil {
		t.Fatalf("MintOperatorToken: %v", err)
	}

	mw := NewJWTMiddleware(nil, zaptest.NewLogger(t))
	var gotUserID, gotRole string
	handler := mw.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserID(r.Context())
		gotRole = UserRole(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/runs", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotUserID != "operator-1" {
		t.Errorf("expected user id operator-1, got %q", gotUserID)
	}
	if gotRole != "operator" {
		t.Errorf("expected role operator, got %q", gotRole)
	}
}
