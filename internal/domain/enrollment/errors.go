package enrollment

import (
	"net/http"

	"github.com/learnhub/learnhub-api/internal/pkg/apperror"
)

var (
	ErrCourseNotFound      = apperror.NotFound("COURSE_NOT_FOUND", "Course not found")
	ErrCourseNotAvailable  = apperror.BadRequest("COURSE_NOT_AVAILABLE", "Course is not available for enrollment")
	ErrAlreadyEnrolled     = apperror.BadRequest("ALREADY_ENROLLED", "Already enrolled in this course")
	ErrPaymentRequired     = apperror.BadRequest("PAYMENT_REQUIRED", "Payment is required for this course")
	ErrPaymentNotCompleted = apperror.BadRequest("PAYMENT_NOT_COMPLETED", "Payment is not completed")
	ErrNotEnrolled         = apperror.New(http.StatusForbidden, "NOT_ENROLLED", "You are not enrolled in this course")
	ErrLessonNotFound      = apperror.NotFound("LESSON_NOT_FOUND", "Lesson not found")
	ErrEnrollmentNotFound  = apperror.NotFound("ENROLLMENT_NOT_FOUND", "Enrollment not found")
	ErrInvalidStatus       = apperror.BadRequest("INVALID_STATUS", "Unknown enrollment status")
)
