package settlementerrors

import (
	"net/http"

	"go-offboarding/internal/shared/apperror"
)

var (
	ErrSettlementNotFound = apperror.NotFound("settlement")
	ErrSettlementExists   = apperror.Duplicate("a settlement already exists for this separation")

	ErrNegativeAmount = apperror.New(
		apperror.CodeInvalidInput,
		"settlement amounts must not be negative",
		http.StatusBadRequest,
	)
	ErrInvalidSeparationID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid separation id",
		http.StatusBadRequest,
	)
)
