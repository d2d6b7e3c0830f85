package course

import (
	"net/http"

	"github.com/learnhub/learnhub-api/internal/pkg/apperror"
)

var (
	ErrCourseNotFound       = apperror.NotFound("COURSE_NOT_FOUND", "Course not found")
	ErrSectionNotFound      = apperror.NotFound("SECTION_NOT_FOUND", "Section not found")
	ErrLessonNotFound       = apperror.NotFound("LESSON_NOT_FOUND", "Lesson not found")
	ErrQuizNotFound         = apperror.NotFound("QUIZ_NOT_FOUND", "Quiz not found")
	ErrNotOwner             = apperror.Forbidden("FORBIDDEN", "You can only manage your own courses")
	ErrInvalidStatus        = apperror.BadRequest("INVALID_STATUS", "Course status does not allow this action")
	ErrNoLessons            = apperror.BadRequest("NO_LESSONS", "Course must have at least one lesson before publishing")
	ErrCourseHasEnrollments = apperror.BadRequest("COURSE_HAS_ENROLLMENTS", "Course with enrollments cannot be deleted")
	ErrQuizExists           = apperror.Conflict("QUIZ_EXISTS", "Lesson already has a quiz")
	ErrInvalidPrice         = apperror.BadRequest("INVALID_PRICE", "Discount price must not exceed price")
	ErrInvalidImage         = apperror.BadRequest("INVALID_IMAGE", "Cover must be a JPEG or PNG image up to 5MB")
	ErrInvalidAnswers       = apperror.BadRequest("INVALID_ANSWERS", "Correct answers must reference existing options")
	ErrNotEnrolled          = apperror.Forbidden("NOT_ENROLLED", "You are not enrolled in this course")
	ErrCategoryNotFound     = apperror.NotFound("CATEGORY_NOT_FOUND", "Category not found")
	ErrCategoryExists       = apperror.Conflict("CATEGORY_EXISTS", "Category slug already in use")
	ErrCategoryHasCourses   = apperror.BadRequest("CATEGORY_HAS_COURSES", "Cannot delete category with courses")
	ErrInvalidLessonOrder   = apperror.BadRequest("INVALID_LESSON_ORDER", "Lesson IDs must list every lesson of the section exactly once")
	ErrCoversDisabled       = apperror.New(http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Cover uploads are not configured")
)
