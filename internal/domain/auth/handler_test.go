package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/learnhub/learnhub-api/internal/middleware"
	"github.com/learnhub/learnhub-api/internal/pkg/jwt"
)

func TestAuthRoutes(t *testing.T) {
	jwtSvc := jwt.NewService("test-secret", time.Hour)
	svc := NewService(newFakeUserRepo(), jwtSvc)
	svc.hashCost = 4

	router := chi.NewRouter()
	router.Mount("/auth", NewHandler(svc).Routes(middleware.Auth(jwtSvc)))

	body, _ := json.Marshal(map[string]string{
		"email":     "grace@example.com",
		"password":  "supersecret",
		"firstName": "Grace",
		"lastName":  "H",
		"role":      "INSTRUCTOR",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var reg struct {
		Data AuthResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&reg); err != nil {
		t.Fatalf("decode: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+reg.Data.Tokens.AccessToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", rec.Code)
	}

	bad, _ := json.Marshal(map[string]string{"email": "nope", "password": "x"})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(bad)))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid register: expected 422, got %d", rec.Code)
	}

	put := func(path string, body map[string]string) *httptest.ResponseRecorder {
		raw, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(raw))
		req.Header.Set("Authorization", "Bearer "+reg.Data.Tokens.AccessToken)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	if rec := put("/auth/me", map[string]string{"bio": "Compilers"}); rec.Code != http.StatusOK {
		t.Fatalf("update profile: expected 200, got %d", rec.Code)
	}
	if rec := put("/auth/me/password", map[string]string{"currentPassword": "supersecret", "newPassword": "nodigitshere"}); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("weak password: expected 422, got %d", rec.Code)
	}
	if rec := put("/auth/me/password", map[string]string{"currentPassword": "wrong", "newPassword": "newsecret1"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("wrong current password: expected 400, got %d", rec.Code)
	}
	if rec := put("/auth/me/password", map[string]string{"currentPassword": "supersecret", "newPassword": "newsecret1"}); rec.Code != http.StatusOK {
		t.Fatalf("change password: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/auth/me", bytes.NewReader([]byte(`{}`))))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous profile update: expected 401, got %d", rec.Code)
	}
}
