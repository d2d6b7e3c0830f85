package wishlist

import "github.com/learnhub/learnhub-api/internal/pkg/apperror"

var ErrCourseNotFound = apperror.NotFound("COURSE_NOT_FOUND", "Course not found")
