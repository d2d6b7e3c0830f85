package wallet

import (
	"errors"
	"net/http"

	"github.com/learnhub/learnhub-api/internal/pkg/apperror"
)

var (
	ErrUserNotFound               = apperror.NotFound("USER_NOT_FOUND", "User not found")
	ErrInvalidAmount              = apperror.BadRequest("INVALID_AMOUNT", "Amount must be greater than zero")
	ErrInsufficientBalance        = apperror.BadRequest("INSUFFICIENT_BALANCE", "Insufficient wallet balance")
	ErrInvalidProvider            = apperror.BadRequest("INVALID_PROVIDER", "Only DEMO deposits can be made directly")
	ErrReservedReference          = apperror.BadRequest("RESERVED_REFERENCE", "Reference prefix is reserved")
	ErrReferenceConflict          = apperror.Conflict("REFERENCE_CONFLICT", "Reference already used with a different amount")
	ErrCourseNotFound             = apperror.NotFound("COURSE_NOT_FOUND", "Course not found")
	ErrCourseNotAvailable         = apperror.BadRequest("COURSE_NOT_AVAILABLE", "Course is not available for purchase")
	ErrCourseIsFree               = apperror.BadRequest("COURSE_IS_FREE", "Course is free, enroll directly")
	ErrAlreadyEnrolled            = apperror.BadRequest("ALREADY_ENROLLED", "Already enrolled in this course")
	ErrAlreadyPurchased           = apperror.BadRequest("ALREADY_PURCHASED", "Course already purchased")
	ErrInvalidVoucher             = apperror.BadRequest("INVALID_VOUCHER", "Voucher link is invalid")
	ErrVoucherAlreadyRedeemed     = apperror.BadRequest("VOUCHER_ALREADY_REDEEMED", "Voucher has already been redeemed")
	ErrVoucherInProgress          = apperror.Conflict("VOUCHER_IN_PROGRESS", "Voucher redemption is already in progress")
	ErrVoucherEmpty               = apperror.BadRequest("VOUCHER_EMPTY", "Voucher carries no redeemable amount")
	ErrVoucherProviderUnavailable = apperror.New(http.StatusBadGateway, "VOUCHER_PROVIDER_UNAVAILABLE", "Voucher provider did not answer, try again later")
)

// ErrDuplicateReference is returned by the repository when (user, reference) already exists.
var ErrDuplicateReference = errors.New("duplicate reference")
