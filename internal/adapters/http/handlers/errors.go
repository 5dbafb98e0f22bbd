package handlers

import (
	"errors"

	"expense-insight/internal/core/domain"
)

// validationMessage returns the human-readable message of a validation failure
func validationMessage(err error) (string, bool) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Message, true
	}
	if errors.Is(err, domain.ErrValidationFailed) {
		return err.Error(), true
	}
	return "", false
}
