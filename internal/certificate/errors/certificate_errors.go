package certificateerrors

import (
	"net/http"

	"go-offboarding/internal/shared/apperror"
)

var (
	ErrCertificateNotFound = apperror.NotFound("certificate")
	ErrCertificateExists   = apperror.Duplicate("a certificate of this type already exists for the separation")

	ErrCertificateNumberExists = apperror.New(
		apperror.CodeConflict,
		"certificate number already exists",
		http.StatusConflict,
	)
	ErrRevocationReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"revocation reason is required",
		http.StatusBadRequest,
	)
)
