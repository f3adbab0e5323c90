package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-analyzer/internal/services/health"
	"resume-analyzer/internal/shared/auth"
	"resume-analyzer/internal/shared/config"
	"resume-analyzer/internal/users"
)

func newTestRouter(t *testing.T) (*gin.Engine, *auth.Signer, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	signer, err := auth.NewSigner("router-test-secret", time.Hour, false)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	userSvc := users.NewService(users.NewMemoryRepo())
	user, _, err := userSvc.GetOrCreate(context.Background(), users.Identity{Subject: "sub-1", Email: "a@example.com", Name: "A"})
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	r := NewRouter(RouterDeps{
		Config:      config.Config{Env: "dev", CORSAllowOrigin: []string{"http://localhost:5173"}},
		Tokens:      signer,
		Health:      health.NewService(nil, "none", "placeholder"),
		UserHandler: users.NewHandler(userSvc),
	})
	return r, signer, user.ID
}

func TestHealthIsPublic(t *testing.T) {
	r, _, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"database":"memory"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r, signer, userID := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	token, err := signer.Sign(auth.Claims{Sub: userID, Email: "a@example.com"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r, _, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "resume_analyzer_") {
		t.Fatal("expected resume_analyzer metrics")
	}
}

func TestAddr(t *testing.T) {
	for in, want := range map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"} {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
