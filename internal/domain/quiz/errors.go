package quiz

import (
	"net/http"

	"github.com/learnhub/learnhub-api/internal/pkg/apperror"
)

var (
	ErrQuizNotFound         = apperror.NotFound("QUIZ_NOT_FOUND", "Quiz not found")
	ErrNotEnrolled          = apperror.New(http.StatusForbidden, "NOT_ENROLLED", "You are not enrolled in this course")
	ErrMaxAttemptsReached   = apperror.BadRequest("MAX_ATTEMPTS_REACHED", "Maximum number of attempts reached")
	ErrSubmissionInProgress = apperror.Conflict("QUIZ_IN_PROGRESS", "Another submission for this quiz is being processed")
)
