package apperror

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func formatFieldName(s string) string {
	// recipient_phone -> recipient phone -> Recipient Phone
	s = strings.ReplaceAll(s, "_", " ")

	caser := cases.Title(language.English)
	return caser.String(s)
}

// MapValidationError turns the first validator failure into an INVALID_INPUT AppError.
// Field names come from json tags once Init (or validation.New) registered the tag name func.
func MapValidationError(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		e := errs[0]
		humanReadableField := formatFieldName(e.Field())

		switch e.Tag() {
		case "required", "required_if", "required_with":
			return RequiredField(humanReadableField)
		default:
			return InvalidField(humanReadableField)
		}
	}

	return ErrInvalidInput
}
