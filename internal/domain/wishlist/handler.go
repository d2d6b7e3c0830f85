package wishlist

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/learnhub/learnhub-api/internal/middleware"
	"github.com/learnhub/learnhub-api/internal/pkg/errorhandler"
	"github.com/learnhub/learnhub-api/internal/pkg/response"
	"github.com/learnhub/learnhub-api/internal/pkg/validator"
)

// Handler handles wishlist HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates wishlist handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns wishlist router; every route requires authentication
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/", h.List)
	r.Post("/", h.Add)
	r.Delete("/{courseId}", h.Remove)
	return r
}

// List handles GET /wishlist
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, out)
}

// Add handles POST /wishlist
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	item, err := h.service.Add(r.Context(), middleware.GetUserID(r.Context()), req.CourseID)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.Created(w, item)
}

// Remove handles DELETE /wishlist/{courseId}
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	courseID, err := uuid.Parse(chi.URLParam(r, "courseId"))
	if err != nil {
		response.BadRequest(w, "Invalid course ID")
		return
	}
	if err := h.service.Remove(r.Context(), middleware.GetUserID(r.Context()), courseID); err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, map[string]string{"message": "Removed from wishlist"})
}
