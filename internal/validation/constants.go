package validation

import "regexp"

const (
	// String lengths
	MinNameLength        = 2
	MaxNameLength        = 120
	MaxDescriptionLength = 2000
	MaxReferenceLength   = 100

	// Asset limits
	MaxAreaSqm = 10_000_000

	// Token limits
	MaxTokenSupply = 1_000_000_000_000
)

var symbolRegex = regexp.MustCompile(`^[A-Z0-9]{2,11}$`)
