package clearanceerrors

import (
	"net/http"

	"go-offboarding/internal/shared/apperror"
)

var (
	ErrClearanceNotFound = apperror.NotFound("clearance")

	ErrNoClearanceDepartments = apperror.New(
		apperror.CodeInvalidInput,
		"no active department requires clearance",
		http.StatusBadRequest,
	)
	ErrOutstandingItemsRequired = apperror.New(
		apperror.CodeInvalidInput,
		"outstanding items must not be empty",
		http.StatusBadRequest,
	)
	ErrClearanceExists = apperror.Duplicate("clearance already exists for this department")
)
