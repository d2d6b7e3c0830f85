package enrollment

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/learnhub/learnhub-api/internal/middleware"
	"github.com/learnhub/learnhub-api/internal/pkg/errorhandler"
	"github.com/learnhub/learnhub-api/internal/pkg/response"
	"github.com/learnhub/learnhub-api/internal/pkg/validator"
)

// EnrollRequest for POST /enrollments
type EnrollRequest struct {
	CourseID  uuid.UUID  `json:"courseId" validate:"required"`
	PaymentID *uuid.UUID `json:"paymentId"`
}

// Handler handles enrollment HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates enrollment handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Enroll handles POST /enrollments
func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req EnrollRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	e, err := h.service.Enroll(r.Context(), middleware.GetUserID(r.Context()), req.CourseID, req.PaymentID)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.Created(w, e)
}

// List handles GET /enrollments?status=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.GetUserEnrollments(r.Context(), middleware.GetUserID(r.Context()), r.URL.Query().Get("status"))
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, items)
}

// Get handles GET /enrollments/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid enrollment ID")
		return
	}

	detail, err := h.service.GetEnrollment(r.Context(), id, middleware.GetUserID(r.Context()))
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, detail)
}

// UpdateProgress handles PUT /enrollments/progress/{lessonId}
func (h *Handler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	lessonID, err := uuid.Parse(chi.URLParam(r, "lessonId"))
	if err != nil {
		response.BadRequest(w, "Invalid lesson ID")
		return
	}

	var req ProgressUpdate
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.UpdateProgress(r.Context(), middleware.GetUserID(r.Context()), lessonID, req)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, result)
}

// Routes returns enrollment router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Post("/", h.Enroll)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/progress/{lessonId}", h.UpdateProgress)

	return r
}
