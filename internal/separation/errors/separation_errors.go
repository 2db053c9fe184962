package separationerrors

import (
	"net/http"

	"go-offboarding/internal/shared/apperror"
)

var (
	ErrSeparationNotFound = apperror.NotFound("separation")

	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"proposed_last_day must be on or after request_date",
		http.StatusBadRequest,
	)
	ErrRejectionReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"reason is required when rejecting a separation",
		http.StatusBadRequest,
	)
	ErrSeparationNumberExists = apperror.Duplicate("separation number already exists")
)
