package payment

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/learnhub/learnhub-api/internal/middleware"
	"github.com/learnhub/learnhub-api/internal/pkg/errorhandler"
	"github.com/learnhub/learnhub-api/internal/pkg/response"
)

// Handler handles payment HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates payment handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /payments
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := response.PageParams(r, 20, 100)
	payments, total, err := h.service.ListMine(r.Context(), middleware.GetUserID(r.Context()), page, limit)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.WithMeta(w, payments, response.NewMeta(page, limit, total))
}

// Get handles GET /payments/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid payment ID")
		return
	}

	ctx := r.Context()
	p, err := h.service.Get(ctx, id, middleware.GetUserID(ctx), middleware.IsAdmin(ctx))
	if err != nil {
		errorhandler.Handle(ctx, w, err)
		return
	}
	response.OK(w, p)
}

// Routes returns payment router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	return r
}
