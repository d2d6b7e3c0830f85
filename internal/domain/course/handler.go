package course

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/learnhub/learnhub-api/internal/middleware"
	"github.com/learnhub/learnhub-api/internal/pkg/errorhandler"
	"github.com/learnhub/learnhub-api/internal/pkg/imaging"
	"github.com/learnhub/learnhub-api/internal/pkg/response"
	"github.com/learnhub/learnhub-api/internal/pkg/validator"
)

// MaxUploadSize caps the multipart body of a cover upload
const MaxUploadSize = imaging.MaxFileSize + 1<<20

// Handler handles catalog HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates course handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func actorFrom(r *http.Request) Actor {
	return Actor{UserID: middleware.GetUserID(r.Context()), IsAdmin: middleware.IsAdmin(r.Context())}
}

func pathID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		response.BadRequest(w, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// List handles GET /courses
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := Filter{Search: q.Get("search")}

	if v := q.Get("category"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(w, "Invalid category")
			return
		}
		filter.CategoryID = &id
	}
	if v := q.Get("level"); v != "" {
		if validator.ValidateVar(v, "course_level") != nil {
			response.BadRequest(w, "Invalid level")
			return
		}
		level := Level(v)
		filter.Level = &level
	}
	for param, dst := range map[string]**decimal.Decimal{"minPrice": &filter.MinPrice, "maxPrice": &filter.MaxPrice} {
		if v := q.Get(param); v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil {
				response.BadRequest(w, "Invalid "+param)
				return
			}
			*dst = &d
		}
	}

	page, limit := response.PageParams(r, 12, 100)
	courses, total, err := h.service.List(r.Context(), filter, page, limit)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.WithMeta(w, courses, response.NewMeta(page, limit, total))
}

// Categories handles GET /courses/categories. Admins may pass ?all=true to see inactive ones.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	all := middleware.IsAdmin(r.Context()) && r.URL.Query().Get("all") == "true"
	out, err := h.service.Categories(r.Context(), all)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, out)
}

// GetBySlug handles GET /courses/{slug}
func (h *Handler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.GetBySlug(r.Context(), chi.URLParam(r, "slug"), actorFrom(r))
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, detail)
}

// GetLesson handles GET /courses/lessons/{lessonId}
func (h *Handler) GetLesson(w http.ResponseWriter, r *http.Request) {
	lessonID, ok := pathID(w, r, "lessonId", "lesson")
	if !ok {
		return
	}
	l, err := h.service.GetLesson(r.Context(), lessonID, actorFrom(r))
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, l)
}

// Create handles POST /courses
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCourseRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	c, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), &req)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.Created(w, c)
}

// ListMine handles GET /courses/mine
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	page, limit := response.PageParams(r, 20, 100)
	courses, total, err := h.service.ListMine(r.Context(), middleware.GetUserID(r.Context()), page, limit)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.WithMeta(w, courses, response.NewMeta(page, limit, total))
}

// Update handles PUT /courses/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "course")
	if !ok {
		return
	}
	var req UpdateCourseRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	c, err := h.service.Update(r.Context(), id, actorFrom(r), &req)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, c)
}

// Delete handles DELETE /courses/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "course")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id, actorFrom(r)); err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.NoContent(w)
}

// Publish handles POST /courses/{id}/publish
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "course")
	if !ok {
		return
	}
	c, err := h.service.Publish(r.Context(), id, actorFrom(r))
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, c)
}

// UploadCover handles POST /courses/{id}/cover
// Multipart form: cover
func (h *Handler) UploadCover(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "course")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		response.BadRequest(w, "File too large or invalid form")
		return
	}
	file, _, err := r.FormFile("cover")
	if err != nil {
		response.BadRequest(w, "No file provided")
		return
	}
	defer file.Close()

	c, err := h.service.UploadCover(r.Context(), id, actorFrom(r), file)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, c)
}

// CreateSection handles POST /courses/{id}/sections
func (h *Handler) CreateSection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "course")
	if !ok {
		return
	}
	var req CreateSectionRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	sec, err := h.service.CreateSection(r.Context(), id, actorFrom(r), &req)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.Created(w, sec)
}

// CreateLesson handles POST /courses/{id}/sections/{sectionId}/lessons
func (h *Handler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "course")
	if !ok {
		return
	}
	sectionID, ok := pathID(w, r, "sectionId", "section")
	if !ok {
		return
	}
	var req CreateLessonRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	l, err := h.service.CreateLesson(r.Context(), id, sectionID, actorFrom(r), &req)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.Created(w, l)
}

// CreateQuiz handles POST /courses/lessons/{lessonId}/quiz
func (h *Handler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	lessonID, ok := pathID(w, r, "lessonId", "lesson")
	if !ok {
		return
	}
	var req CreateQuizRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	q, err := h.service.CreateQuiz(r.Context(), lessonID, actorFrom(r), &req)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.Created(w, q)
}

// AddQuestion handles POST /courses/quizzes/{quizId}/questions
func (h *Handler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	quizID, ok := pathID(w, r, "quizId", "quiz")
	if !ok {
		return
	}
	var req AddQuestionRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	q, err := h.service.AddQuestion(r.Context(), quizID, actorFrom(r), &req)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.Created(w, q)
}

// ListPending handles GET /courses/pending (admin)
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	page, limit := response.PageParams(r, 20, 100)
	courses, total, err := h.service.ListPending(r.Context(), page, limit)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.WithMeta(w, courses, response.NewMeta(page, limit, total))
}

// Approve handles POST /courses/{id}/approve (admin)
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "course")
	if !ok {
		return
	}
	c, err := h.service.Approve(r.Context(), id)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, c)
}

// Reject handles POST /courses/{id}/reject (admin)
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "course")
	if !ok {
		return
	}
	var req RejectRequest
	if r.ContentLength != 0 {
		if err := response.DecodeJSON(r.Body, &req); err != nil {
			response.BadRequest(w, "Invalid JSON body")
			return
		}
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	c, err := h.service.Reject(r.Context(), id, req.Reason)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, c)
}

func categoryID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "categoryId"))
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid category ID")
		return 0, false
	}
	return id, true
}

// CreateCategory handles POST /courses/categories
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	cat, err := h.service.CreateCategory(r.Context(), &req)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.Created(w, cat)
}

// UpdateCategory handles PUT /courses/categories/{categoryId}
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := categoryID(w, r)
	if !ok {
		return
	}
	var req UpdateCategoryRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	cat, err := h.service.UpdateCategory(r.Context(), id, &req)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, cat)
}

// DeleteCategory handles DELETE /courses/categories/{categoryId}
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := categoryID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.NoContent(w)
}

// UpdateLesson handles PUT /courses/lessons/{lessonId}
func (h *Handler) UpdateLesson(w http.ResponseWriter, r *http.Request) {
	lessonID, ok := pathID(w, r, "lessonId", "lesson")
	if !ok {
		return
	}
	var req UpdateLessonRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	l, err := h.service.UpdateLesson(r.Context(), lessonID, actorFrom(r), &req)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, l)
}

// DeleteLesson handles DELETE /courses/lessons/{lessonId}
func (h *Handler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	lessonID, ok := pathID(w, r, "lessonId", "lesson")
	if !ok {
		return
	}
	if err := h.service.DeleteLesson(r.Context(), lessonID, actorFrom(r)); err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.NoContent(w)
}

// ReorderLessons handles PUT /courses/{id}/sections/{sectionId}/lessons/reorder
func (h *Handler) ReorderLessons(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "course")
	if !ok {
		return
	}
	sectionID, ok := pathID(w, r, "sectionId", "section")
	if !ok {
		return
	}
	var req ReorderLessonsRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	lessons, err := h.service.ReorderLessons(r.Context(), id, sectionID, actorFrom(r), req.LessonIDs)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, lessons)
}
