package apperror

import (
	"fmt"
	"net/http"
)

// TransitionDetails is attached to every InvalidTransition error.
type TransitionDetails struct {
	Entity          string `json:"entity"`
	CurrentStatus   string `json:"current_status"`
	AttemptedStatus string `json:"attempted_status"`
}

// Validation reports missing or malformed caller input.
func Validation(message string) *AppError {
	return New(CodeInvalidInput, message, http.StatusBadRequest)
}

// InvalidTransition reports an operation attempted from a status that does not permit it.
func InvalidTransition(entity, current, attempted string) *AppError {
	return New(
		CodeInvalidState,
		fmt.Sprintf("%s cannot move from %s to %s", entity, current, attempted),
		http.StatusConflict,
	).WithDetails(TransitionDetails{
		Entity:          entity,
		CurrentStatus:   current,
		AttemptedStatus: attempted,
	})
}

// Duplicate reports a second record where only one is allowed.
func Duplicate(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}

// NotFound reports an absent referenced record.
func NotFound(entity string) *AppError {
	return New(CodeNotFound, entity+" not found", http.StatusNotFound)
}

// BlockedTransition is an InvalidTransition whose source status is legal but
// whose precondition is not met yet. message explains what is missing.
func BlockedTransition(entity, current, attempted, message string) *AppError {
	err := InvalidTransition(entity, current, attempted)
	err.Message = message
	return err
}
