package fees

import "errors"

var (
	ErrInvalidSchedule = errors.New("invalid fee schedule")
	ErrUnknownCategory = errors.New("unknown asset category")
	ErrUnknownFeeItem  = errors.New("unknown fee item")
)
