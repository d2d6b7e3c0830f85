package review

import (
	"net/http"

	"github.com/learnhub/learnhub-api/internal/pkg/apperror"
)

var (
	ErrReviewNotFound  = apperror.NotFound("REVIEW_NOT_FOUND", "Review not found")
	ErrCourseNotFound  = apperror.NotFound("COURSE_NOT_FOUND", "Course not found")
	ErrAlreadyReviewed = apperror.Conflict("ALREADY_REVIEWED", "You have already reviewed this course")
	ErrNotEnrolled     = apperror.New(http.StatusForbidden, "NOT_ENROLLED", "Only enrolled students can review a course")
	ErrNotAuthor       = apperror.Forbidden("FORBIDDEN", "You can only change your own review")
	ErrNotCourseOwner  = apperror.Forbidden("FORBIDDEN", "Only the course instructor can reply")
)
