package employeesalaryerrors

import (
	"net/http"

	"go-offboarding/internal/shared/apperror"
)

// ErrSalaryNotFound blocks settlement estimation until payroll data exists.
var ErrSalaryNotFound = apperror.New(
	apperror.CodeNotFound,
	"no effective salary found for this employee",
	http.StatusNotFound,
)
