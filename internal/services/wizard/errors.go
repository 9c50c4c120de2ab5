package wizard

import (
	"errors"
	"strings"

	"tokenadmin/internal/models"
)

// Service errors
var (
	ErrDraftNotFound   = errors.New("draft not found")
	ErrUnknownStep     = errors.New("unknown wizard step")
	ErrStepOutOfOrder  = errors.New("previous wizard steps are not completed")
	ErrDraftSubmitted  = errors.New("draft has already been submitted")
	ErrIncompleteDraft = errors.New("draft is incomplete")
	ErrInvalidPayload  = errors.New("invalid step payload")
	ErrFeeValidation   = errors.New("fee validation failed")
)

// FeeValidationError carries the full validation result of a rejected fees step.
type FeeValidationError struct {
	Calculation *models.FeeCalculationResult
	Result      models.ValidationResult
}

func (e *FeeValidationError) Error() string {
	if len(e.Result.Errors) == 0 {
		return ErrFeeValidation.Error()
	}
	return ErrFeeValidation.Error() + ": " + strings.Join(e.Result.Errors, "; ")
}

func (e *FeeValidationError) Is(target error) bool {
	return target == ErrFeeValidation
}
