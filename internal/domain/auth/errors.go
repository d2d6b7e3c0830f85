package auth

import (
	"net/http"

	"github.com/learnhub/learnhub-api/internal/pkg/apperror"
)

var (
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	ErrInvalidRole        = apperror.BadRequest("INVALID_ROLE", "Role must be STUDENT or INSTRUCTOR")
	ErrInvalidPassword    = apperror.BadRequest("INVALID_PASSWORD", "Current password is incorrect")
)
