// Package inputval validates request payload structs with
// go-playground/validator and converts violations into the application's
// Validation error, keyed by field.
package inputval

import (
	"errors"
	"strings"

	"github.com/campushub/campushub/internal/app/system/apperr"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates v against its `validate` tags.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("invalid payload", nil)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return apperr.Validation("invalid payload", fields)
}
