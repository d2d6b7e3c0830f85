package quiz

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/learnhub/learnhub-api/internal/middleware"
	"github.com/learnhub/learnhub-api/internal/pkg/errorhandler"
	"github.com/learnhub/learnhub-api/internal/pkg/response"
)

// SubmitRequest for POST /quizzes/{id}/submit
type SubmitRequest struct {
	Answers Answers `json:"answers"`
}

// Handler handles quiz HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates quiz handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func quizID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid quiz ID")
		return uuid.Nil, false
	}
	return id, true
}

// Get handles GET /quizzes/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := quizID(w, r)
	if !ok {
		return
	}
	view, err := h.service.Get(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, view)
}

// Submit handles POST /quizzes/{id}/submit
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := quizID(w, r)
	if !ok {
		return
	}

	var req SubmitRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	result, err := h.service.Submit(r.Context(), middleware.GetUserID(r.Context()), id, req.Answers)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.Created(w, result)
}

// Results handles GET /quizzes/{id}/results
func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	id, ok := quizID(w, r)
	if !ok {
		return
	}
	attempts, err := h.service.Results(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, attempts)
}

// Routes returns quiz router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/{id}", h.Get)
	r.Post("/{id}/submit", h.Submit)
	r.Get("/{id}/results", h.Results)

	return r
}
