package statistics

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/learnhub/learnhub-api/internal/pkg/errorhandler"
	"github.com/learnhub/learnhub-api/internal/pkg/response"
)

// Handler serves course statistics
type Handler struct {
	service *Service
}

// NewHandler creates statistics handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Get handles GET /statistics/courses/{courseId}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	courseID, err := uuid.Parse(chi.URLParam(r, "courseId"))
	if err != nil {
		response.BadRequest(w, "Invalid course ID")
		return
	}

	stats, err := h.service.Get(r.Context(), courseID)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, stats)
}

// Routes returns statistics router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/courses/{courseId}", h.Get)
	return r
}
