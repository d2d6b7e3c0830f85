package dashboard

import "github.com/learnhub/learnhub-api/internal/pkg/apperror"

var (
	ErrCourseNotFound = apperror.NotFound("COURSE_NOT_FOUND", "Course not found")
	ErrNotOwner       = apperror.Forbidden("FORBIDDEN", "You can only view your own courses")
	ErrInvalidRange   = apperror.BadRequest("INVALID_DATE_RANGE", "startDate must be before endDate and the range at most 5 years")
)
