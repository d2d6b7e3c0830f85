package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/learnhub/learnhub-api/internal/middleware"
	"github.com/learnhub/learnhub-api/internal/pkg/errorhandler"
	"github.com/learnhub/learnhub-api/internal/pkg/response"
	"github.com/learnhub/learnhub-api/internal/pkg/validator"
)

// Handler serves /auth
type Handler struct {
	service *Service
}

// NewHandler creates auth handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts register and login publicly and the /me endpoints behind requireAuth
func (h *Handler) Routes(requireAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/me", h.Me)
		r.Put("/me", h.UpdateProfile)
		r.Put("/me/password", h.ChangePassword)
	})
	return r
}

// decodeBody reads and validates a JSON body, writing the error response itself.
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

// Register handles POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := h.service.Register(r.Context(), &req)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.Created(w, result)
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := h.service.Login(r.Context(), &req)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, result)
}

// Me handles GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Me(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, profile)
}

// UpdateProfile handles PUT /auth/me
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	profile, err := h.service.UpdateProfile(r.Context(), middleware.GetUserID(r.Context()), &req)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, profile)
}

// ChangePassword handles PUT /auth/me/password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.service.ChangePassword(r.Context(), middleware.GetUserID(r.Context()), &req); err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, map[string]string{"message": "Password changed successfully"})
}
