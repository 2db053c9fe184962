package employeeerrors

import "go-offboarding/internal/shared/apperror"

var (
	// ErrEmployeeNotFound also covers employees of another company.
	ErrEmployeeNotFound  = apperror.NotFound("employee")
	ErrInvalidEmployeeID = apperror.InvalidField("employee_id")
)
