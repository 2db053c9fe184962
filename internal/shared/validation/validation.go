// Package validation runs the same `binding` tags gin checks at the HTTP edge
// inside services, so the engine rejects bad input even when called directly.
package validation

import (
	"sync"

	"go-offboarding/internal/shared/apperror"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.SetTagName("binding")
		instance.RegisterTagNameFunc(apperror.JSONTagName)
	})
	return instance
}

// Struct validates v and returns an INVALID_INPUT AppError on the first failure.
func Struct(v any) error {
	if err := engine().Struct(v); err != nil {
		return apperror.MapValidationError(err)
	}
	return nil
}
