package departmenterrors

import (
	"net/http"

	"go-offboarding/internal/shared/apperror"
)

var (
	ErrDepartmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"department not found",
		http.StatusNotFound,
	)
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrDepartmentNameExists = apperror.New(
		apperror.CodeConflict,
		"department name already exists",
		http.StatusConflict,
	)
)
