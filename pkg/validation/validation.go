package validation

import (
	"errors"
	"mutsamarket/pkg/httperror"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates req and returns a 400 coded "<scope>.validation_failed".
func Struct(scope string, req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return httperror.BadRequest(
			scope+".validation_failed",
			"Validation failed for the request",
			ve.Error(),
		)
	}

	return httperror.InternalServerError(
		scope+".validation_error",
		"An unexpected validation error occurred",
		nil,
	)
}
