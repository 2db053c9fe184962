package apperror

import "net/http"

var (
	ErrNotFound = New(
		CodeNotFound,
		"Resource not found",
		http.StatusNotFound,
	)

	ErrForbidden = New(
		CodeForbidden,
		"You do not have permission to access this resource",
		http.StatusForbidden,
	)

	ErrInternal = New(
		CodeInternalError,
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)

	ErrUnauthorized = New(
		CodeUnauthorized,
		"Authentication is required",
		http.StatusUnauthorized,
	)

	ErrInvalidInput = New(
		CodeInvalidInput,
		"The provided input is invalid",
		http.StatusBadRequest,
	)

	ErrActorRequired = New(
		CodeInvalidInput,
		"actor is required",
		http.StatusBadRequest,
	)
)

func RequiredField(field string) *AppError {
	return New(CodeInvalidInput, field+" is required", http.StatusBadRequest).
		WithDetails(map[string]string{"field": field, "rule": "required"})
}

func InvalidField(field string) *AppError {
	return New(CodeInvalidInput, field+" is invalid", http.StatusBadRequest).
		WithDetails(map[string]string{"field": field, "rule": "invalid"})
}

var (
	ErrInvalidToken = New(
		CodeUnauthorized,
		"Invalid token",
		http.StatusUnauthorized,
	)

	ErrTokenExpired = New(
		CodeUnauthorized,
		"Token has expired",
		http.StatusUnauthorized,
	)
)
