package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tilestock/tilestock/internal/auth"
	"github.com/tilestock/tilestock/internal/db"
	"github.com/tilestock/tilestock/internal/model"
	"github.com/tilestock/tilestock/internal/store"
)

func TestCookieAuthMiddleware(t *testing.T) {
	database := db.NewTestDB(t)
	secret := "test-secret"

	var gotClaims *auth.Claims
	handler := CookieAuthMiddleware(secret, database)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims = GetWebClaims(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// No cookie: redirect to login.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected redirect without cookie, got %d", rec.Code)
	}

	// Valid cookie: passes through with claims.
	token, err := auth.GenerateToken(secret, 1, "admin", model.RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid cookie, got %d", rec.Code)
	}
	if gotClaims == nil || gotClaims.Username != "admin" {
		t.Errorf("expected claims in context, got %+v", gotClaims)
	}

	// Revoked token: rejected and cookie cleared.
	claims, _ := auth.ValidateToken(secret, token)
	if err := store.RevokeToken(context.Background(), database, claims.ID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected redirect for revoked token, got %d", rec.Code)
	}

	// Garbage cookie: rejected.
	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "garbage"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected redirect for garbage token, got %d", rec.Code)
	}
}
