package user

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/learnhub/learnhub-api/internal/middleware"
	"github.com/learnhub/learnhub-api/internal/pkg/jwt"
)

func TestUserRoutes(t *testing.T) {
	jwtSvc := jwt.NewService("test-secret", time.Hour)
	admin := newUser("root@example.com", RoleAdmin, 0)
	student := newUser("ada@example.com", RoleStudent, time.Minute)
	repo := newFakeRepo(admin, student)

	router := chi.NewRouter()
	router.Mount("/users", NewHandler(NewService(repo)).Routes(middleware.Auth(jwtSvc)))

	token := func(u *User) string {
		tok, err := jwtSvc.GenerateAccessToken(u.ID, string(u.Role))
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		return tok
	}
	do := func(tok, method, path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			_ = json.NewEncoder(&buf).Encode(body)
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("students cannot list users", func(t *testing.T) {
		if rec := do(token(student), http.MethodGet, "/users", nil); rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("admin lists with meta", func(t *testing.T) {
		rec := do(token(admin), http.MethodGet, "/users?role=STUDENT", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Data []User `json:"data"`
			Meta struct {
				Total int `json:"total"`
			} `json:"meta"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Meta.Total != 1 || resp.Data[0].ID != student.ID {
			t.Fatalf("unexpected page %+v", resp)
		}
		if rec := do(token(admin), http.MethodGet, "/users?role=ROOT", nil); rec.Code != http.StatusBadRequest {
			t.Fatalf("invalid role filter: expected 400, got %d", rec.Code)
		}
	})

	t.Run("status requires isActive", func(t *testing.T) {
		rec := do(token(admin), http.MethodPut, "/users/"+student.ID.String()+"/status", map[string]any{})
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		rec = do(token(admin), http.MethodPut, "/users/"+student.ID.String()+"/status", map[string]any{"isActive": false})
		if rec.Code != http.StatusOK || repo.users[student.ID].IsActive {
			t.Fatalf("expected disabled account, got %d", rec.Code)
		}
	})

	t.Run("role changes", func(t *testing.T) {
		rec := do(token(admin), http.MethodPut, "/users/"+student.ID.String()+"/role", map[string]string{"role": "SUPERUSER"})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 INVALID_ROLE, got %d", rec.Code)
		}
		rec = do(token(admin), http.MethodPut, "/users/"+uuid.NewString()+"/role", map[string]string{"role": "ADMIN"})
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		rec = do(token(admin), http.MethodPut, "/users/not-a-uuid/role", map[string]string{"role": "ADMIN"})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
