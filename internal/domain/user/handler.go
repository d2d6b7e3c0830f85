package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/learnhub/learnhub-api/internal/middleware"
	"github.com/learnhub/learnhub-api/internal/pkg/errorhandler"
	"github.com/learnhub/learnhub-api/internal/pkg/response"
	"github.com/learnhub/learnhub-api/internal/pkg/validator"
)

// Handler serves admin account management
type Handler struct {
	service *Service
}

// NewHandler creates user handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type statusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

type roleRequest struct {
	Role string `json:"role" validate:"required"`
}

// Routes mounts every endpoint behind authentication and the admin role
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware, middleware.RequireAdmin())
	r.Get("/", h.List)
	r.Put("/{id}/status", h.SetStatus)
	r.Put("/{id}/role", h.SetRole)
	return r
}

// List handles GET /users
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{Search: q.Get("search")}
	if v := q.Get("role"); v != "" {
		if !IsValidRole(v) {
			response.BadRequest(w, "Invalid role")
			return
		}
		role := Role(v)
		filter.Role = &role
	}

	page, limit := response.PageParams(r, 20, 100)
	users, total, err := h.service.List(r.Context(), &filter, page, limit)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.WithMeta(w, users, response.NewMeta(page, limit, total))
}

// SetStatus handles PUT /users/{id}/status
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	u, err := h.service.SetStatus(r.Context(), middleware.GetUserID(r.Context()), id, *req.IsActive)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, u)
}

// SetRole handles PUT /users/{id}/role
func (h *Handler) SetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	var req roleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	u, err := h.service.SetRole(r.Context(), middleware.GetUserID(r.Context()), id, req.Role)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, u)
}

func userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return uuid.Nil, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := response.DecodeJSON(r.Body, dst); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return false
	}
	if errs := validator.Validate(dst); errs != nil {
		response.ValidationError(w, errs)
		return false
	}
	return true
}
