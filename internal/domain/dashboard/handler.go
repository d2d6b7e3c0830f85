package dashboard

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/learnhub/learnhub-api/internal/middleware"
	"github.com/learnhub/learnhub-api/internal/pkg/errorhandler"
	"github.com/learnhub/learnhub-api/internal/pkg/response"
)

// Handler handles dashboard HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates new dashboard handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Admin returns the platform overview
// GET /api/v1/dashboard/admin
func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.AdminOverview(r.Context())
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, stats)
}

// Instructor returns the caller's teaching overview
// GET /api/v1/dashboard/instructor
func (h *Handler) Instructor(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.InstructorOverview(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, stats)
}

// dateParam reads an optional YYYY-MM-DD query parameter
func dateParam(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		response.BadRequest(w, "Invalid "+name+", expected YYYY-MM-DD")
		return nil, false
	}
	return &t, true
}

func dateRange(w http.ResponseWriter, r *http.Request) (start, end *time.Time, ok bool) {
	if start, ok = dateParam(w, r, "startDate"); !ok {
		return nil, nil, false
	}
	if end, ok = dateParam(w, r, "endDate"); !ok {
		return nil, nil, false
	}
	return start, end, true
}

// CourseStudents returns the roster of one of the caller's courses
// GET /api/v1/dashboard/instructor/courses/{courseId}/students
func (h *Handler) CourseStudents(w http.ResponseWriter, r *http.Request) {
	courseID, err := uuid.Parse(chi.URLParam(r, "courseId"))
	if err != nil {
		response.BadRequest(w, "Invalid course ID")
		return
	}
	page, limit := response.PageParams(r, 20, 100)
	ctx := r.Context()
	students, total, err := h.service.CourseStudents(ctx, middleware.GetUserID(ctx), middleware.IsAdmin(ctx), courseID, page, limit)
	if err != nil {
		errorhandler.Handle(ctx, w, err)
		return
	}
	response.WithMeta(w, students, response.NewMeta(page, limit, total))
}

// Earnings returns the caller's sales report
// GET /api/v1/dashboard/instructor/earnings?startDate=&endDate=
func (h *Handler) Earnings(w http.ResponseWriter, r *http.Request) {
	start, end, ok := dateRange(w, r)
	if !ok {
		return
	}
	report, err := h.service.InstructorEarnings(r.Context(), middleware.GetUserID(r.Context()), start, end)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, report)
}

// RevenueReport returns the platform sales report
// GET /api/v1/dashboard/admin/reports/revenue?startDate=&endDate=
func (h *Handler) RevenueReport(w http.ResponseWriter, r *http.Request) {
	start, end, ok := dateRange(w, r)
	if !ok {
		return
	}
	report, err := h.service.RevenueReport(r.Context(), start, end)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, report)
}

// UsersReport returns the account breakdown
// GET /api/v1/dashboard/admin/reports/users
func (h *Handler) UsersReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.UsersReport(r.Context())
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, report)
}

// Routes returns dashboard routes
func Routes(h *Handler, authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin())
		r.Get("/admin", h.Admin)
		r.Get("/admin/reports/revenue", h.RevenueReport)
		r.Get("/admin/reports/users", h.UsersReport)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireInstructor())
		r.Get("/instructor", h.Instructor)
		r.Get("/instructor/courses/{courseId}/students", h.CourseStudents)
		r.Get("/instructor/earnings", h.Earnings)
	})

	return r
}
