package api

import (
	"errors"

	"feeledger/config"
	"feeledger/service"

	"github.com/gin-gonic/gin"
)

// SafeErrorMessage hides internal error details from clients in release mode.
func SafeErrorMessage(err error, fallback string) string {
	return config.SafeErrorMessage(err, fallback)
}

// respondServiceError maps the ledger error taxonomy onto HTTP statuses.
// Anything outside the taxonomy is an infrastructure failure.
func respondServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidMode),
		errors.Is(err, service.ErrDuplicateEntry),
		errors.Is(err, service.ErrOverpayment),
		errors.Is(err, service.ErrHasPayments),
		errors.Is(err, service.ErrInactiveCategory),
		errors.Is(err, service.ErrNoClasses):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrNotAuthorized):
		Forbidden(c, err.Error())
	default:
		InternalError(c, SafeErrorMessage(err, fallback))
	}
}
