package user

import "github.com/learnhub/learnhub-api/internal/pkg/apperror"

var (
	ErrUserNotFound   = apperror.NotFound("USER_NOT_FOUND", "User not found")
	ErrEmailExists    = apperror.Conflict("EMAIL_EXISTS", "Email already registered")
	ErrInvalidRole    = apperror.BadRequest("INVALID_ROLE", "Role must be STUDENT, INSTRUCTOR or ADMIN")
	ErrSelfUpdate     = apperror.BadRequest("CANNOT_MODIFY_SELF", "Admins cannot change their own status or role")
	ErrAccountBlocked = apperror.Forbidden("ACCOUNT_DISABLED", "Your account has been disabled")
)
