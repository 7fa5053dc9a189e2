package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flueprint/flueprint/internal/auth"
)

func newService(t *testing.T, ttl time.Duration) *auth.Service {
	t.Helper()
	s, err := auth.NewService("test-secret", ttl)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return s
}

func TestNewService_RejectsEmptySecret(t *testing.T) {
	if _, err := auth.NewService("", 0); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestIssueAndValidate(t *testing.T) {
	s := newService(t, time.Hour)

	token, err := s.Issue("surveyor-42")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := s.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != "surveyor-42" {
		t.Errorf("UserID = %q, want surveyor-42", claims.UserID)
	}
}

func TestValidate_RejectsWrongSecret(t *testing.T) {
	issuer := newService(t, 0)
	token, err := issuer.Issue("surveyor-42")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other, err := auth.NewService("different-secret", 0)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if _, err := other.Validate(token); err == nil {
		t.Fatal("expected validation failure with wrong secret")
	}
}

func TestValidate_RejectsGarbage(t *testing.T) {
	s := newService(t, 0)
	if _, err := s.Validate("not.a.token"); err == nil {
		t.Fatal("expected validation failure for garbage token")
	}
}

func TestMiddleware_PlacesUserIDInContext(t *testing.T) {
	s := newService(t, time.Hour)
	token, err := s.Issue("surveyor-7")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var captured string
	handler := s.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = auth.UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/v1/schema", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if captured != "surveyor-7" {
		t.Errorf("context user ID = %q, want surveyor-7", captured)
	}
}

func TestMiddleware_RejectsMissingHeader(t *testing.T) {
	s := newService(t, 0)
	handler := s.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("handler ran without authorization")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/schema", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestMiddleware_RejectsNonBearerScheme(t *testing.T) {
	s := newService(t, 0)
	handler := s.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("handler ran with basic auth")
	}))

	req := httptest.NewRequest("GET", "/api/v1/schema", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestUserID_EmptyOutsideRequest(t *testing.T) {
	if got := auth.UserID(httptest.NewRequest("GET", "/", nil).Context()); got != "" {
		t.Errorf("UserID = %q, want empty", got)
	}
}
