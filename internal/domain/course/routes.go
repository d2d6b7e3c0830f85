package course

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/learnhub/learnhub-api/internal/middleware"
)

// Routes returns course router
func (h *Handler) Routes(authMiddleware, optionalAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Public catalog
	r.Group(func(r chi.Router) {
		r.Use(optionalAuth)
		r.Get("/", h.List)
		r.Get("/categories", h.Categories)
		r.Get("/{slug}", h.GetBySlug)
	})

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/lessons/{lessonId}", h.GetLesson)

		// Authoring
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireInstructor())
			r.Post("/", h.Create)
			r.Get("/mine", h.ListMine)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
			r.Post("/{id}/publish", h.Publish)
			r.Post("/{id}/cover", h.UploadCover)
			r.Post("/{id}/sections", h.CreateSection)
			r.Post("/{id}/sections/{sectionId}/lessons", h.CreateLesson)
			r.Put("/{id}/sections/{sectionId}/lessons/reorder", h.ReorderLessons)
			r.Put("/lessons/{lessonId}", h.UpdateLesson)
			r.Delete("/lessons/{lessonId}", h.DeleteLesson)
			r.Post("/lessons/{lessonId}/quiz", h.CreateQuiz)
			r.Post("/quizzes/{quizId}/questions", h.AddQuestion)
		})

		// Moderation
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin())
			r.Get("/pending", h.ListPending)
			r.Post("/{id}/approve", h.Approve)
			r.Post("/{id}/reject", h.Reject)
			r.Post("/categories", h.CreateCategory)
			r.Put("/categories/{categoryId}", h.UpdateCategory)
			r.Delete("/categories/{categoryId}", h.DeleteCategory)
		})
	})

	return r
}
