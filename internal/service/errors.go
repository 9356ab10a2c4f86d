package service

import (
	"net/http"

	"jobboard/internal/apperr"
)

var (
	ErrDuplicateEmail        = apperr.New(apperr.KindConflict, "DUPLICATE_EMAIL", "user already exists").WithStatus(http.StatusBadRequest)
	ErrInvalidCredentials    = apperr.New(apperr.KindValidation, "INVALID_CREDENTIALS", "invalid credentials")
	ErrInvalidToken          = apperr.New(apperr.KindValidation, "INVALID_TOKEN", "invalid verification token")
	ErrInvalidOrExpiredToken = apperr.New(apperr.KindValidation, "INVALID_OR_EXPIRED_TOKEN", "password reset token is invalid or has expired")
	ErrUserNotFound          = apperr.New(apperr.KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrJobNotFound           = apperr.New(apperr.KindNotFound, "JOB_NOT_FOUND", "job not found")
	ErrAlreadyApplied        = apperr.New(apperr.KindConflict, "ALREADY_APPLIED", "you have already applied for this job").WithStatus(http.StatusBadRequest)
	ErrAlreadyVerified       = apperr.New(apperr.KindConflict, "ALREADY_VERIFIED", "email is already verified")
	ErrUnauthenticated       = apperr.New(apperr.KindUnauthenticated, "UNAUTHENTICATED", "authentication required")
	ErrForbidden             = apperr.New(apperr.KindForbidden, "FORBIDDEN", "you are not allowed to perform this action")
	ErrUserHasContent        = apperr.New(apperr.KindConflict, "USER_HAS_CONTENT", "user still owns jobs or applications")
	ErrStorageDisabled       = apperr.New(apperr.KindUnavailable, "STORAGE_DISABLED", "logo storage is not configured")
	ErrLogoNotFound          = apperr.New(apperr.KindNotFound, "LOGO_NOT_FOUND", "job has no logo")
)
