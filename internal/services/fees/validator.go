package fees

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"tokenadmin/internal/models"
	"tokenadmin/internal/utils/currency"

	"github.com/go-playground/validator/v10"
)

// Property value bounds and tolerance bands.
const (
	MinPropertyValue = 100_000
	MaxPropertyValue = 1_000_000_000

	MaxBaselineDeviationPercent = 200
	MaxGrossDeviationPercent    = 1

	MinFeePercentage = 5
	MaxFeePercentage = 15
)

// Plausibility floors for categories that rarely trade below a certain size.
var categoryMinimums = map[string]float64{
	"data-center":               10_000_000,
	"hotel":                     5_000_000,
	"renewable-industrial-park": 20_000_000,
}

// ConsistencyMode selects how the expected gross total is derived.
type ConsistencyMode string

const (
	// ConsistencyReference derives the expectation from the category's
	// reference total percentage.
	ConsistencyReference ConsistencyMode = "reference"
	// ConsistencyItemized derives it from the schedule's definitions of the
	// items present in the breakdown.
	ConsistencyItemized ConsistencyMode = "itemized"
)

// ParseConsistencyMode accepts "reference" or "itemized"; blank means reference.
func ParseConsistencyMode(s string) (ConsistencyMode, error) {
	switch ConsistencyMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ConsistencyReference:
		return ConsistencyReference, nil
	case ConsistencyItemized:
		return ConsistencyItemized, nil
	}
	return "", fmt.Errorf("unknown consistency mode %q", s)
}

// ValidationInput is the fee payload submitted with an asset.
type ValidationInput struct {
	BasePropertyValue    *float64               `json:"basePropertyValue" validate:"required,gt=0"`
	Category             string                 `json:"category" validate:"required"`
	ApprovedFeeStructure *bool                  `json:"approvedFeeStructure" validate:"required,eq=true"`
	TotalFees            float64                `json:"totalFees" validate:"gte=0"`
	GrossTotal           float64                `json:"grossTotal" validate:"gte=0"`
	FeeBreakdown         []models.CalculatedFee `json:"feeBreakdown" validate:"dive"`
}

// ValidatorOption customises a Validator.
type ValidatorOption func(*Validator)

// WithConsistencyMode sets how gross totals are cross-checked.
func WithConsistencyMode(mode ConsistencyMode) ValidatorOption {
	return func(v *Validator) {
		v.mode = mode
	}
}

// Validator checks fee payloads against business rules. Findings are split
// into blocking errors and advisory warnings.
type Validator struct {
	registry *Registry
	currency string
	mode     ConsistencyMode
	schema   *validator.Validate
}

func NewValidator(registry *Registry, currencyCode string, opts ...ValidatorOption) *Validator {
	schema := validator.New()
	schema.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v := &Validator{
		registry: registry,
		currency: currency.Normalize(currencyCode),
		mode:     ConsistencyReference,
		schema:   schema,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Mode returns the active consistency mode.
func (v *Validator) Mode() ConsistencyMode {
	return v.mode
}

// Validate runs the schema check and then every business rule.
func (v *Validator) Validate(in ValidationInput) models.ValidationResult {
	var f findings
	summary := models.ValidationSummary{
		Category:   in.Category,
		TotalFees:  in.TotalFees,
		GrossTotal: in.GrossTotal,
		ItemCount:  len(in.FeeBreakdown),
	}
	if in.BasePropertyValue != nil {
		summary.BasePropertyValue = *in.BasePropertyValue
	}

	if schemaErrors := v.checkSchema(in); len(schemaErrors) > 0 {
		f.errors = schemaErrors
		return f.result(summary)
	}

	base := *in.BasePropertyValue
	schedule := v.registry.GetFeeStructureByCategory(in.Category)
	if schedule == nil {
		f.addError("Invalid category: %q", in.Category)
		return f.result(summary)
	}

	summary.CategoryName = schedule.CategoryName
	summary.ReferencePercentage = schedule.TotalPercentage
	summary.FeePercentage = (in.GrossTotal - base) / base * 100
	for _, item := range schedule.FeeItems {
		if item.Required {
			summary.RequiredItemCount++
		}
	}

	v.checkPropertyValue(&f, base, schedule)
	v.checkCategoryMinimum(&f, base, schedule)
	v.checkConsistency(&f, in, schedule)
	v.checkFeePercentage(&f, summary.FeePercentage)
	v.checkCompleteness(&f, in.FeeBreakdown, schedule)

	return f.result(summary)
}

func (v *Validator) checkSchema(in ValidationInput) []string {
	err := v.schema.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required":
			messages = append(messages, field+" is required")
		case "gt":
			messages = append(messages, fmt.Sprintf("%s must be greater than %s", field, fe.Param()))
		case "gte":
			messages = append(messages, fmt.Sprintf("%s must not be negative", field))
		case "eq":
			messages = append(messages, fmt.Sprintf("%s must be %s", field, fe.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return messages
}

func (v *Validator) checkPropertyValue(f *findings, base float64, schedule *models.CategoryFeeStructure) {
	switch {
	case base < MinPropertyValue:
		f.addError("Property value %s is too low for institutional real estate (minimum %s)",
			v.money(base), v.money(MinPropertyValue))
	case base > MaxPropertyValue:
		f.addError("Property value %s exceeds the maximum supported value of %s",
			v.money(base), v.money(MaxPropertyValue))
	}

	ref := schedule.BasePropertyValue
	if ref <= 0 {
		return
	}
	if deviation := math.Abs(base-ref) / ref * 100; deviation > MaxBaselineDeviationPercent {
		f.addWarning("Property value %s deviates %.0f%% from the %s reference value of %s",
			v.money(base), deviation, schedule.CategoryName, v.money(ref))
	}
}

func (v *Validator) checkCategoryMinimum(f *findings, base float64, schedule *models.CategoryFeeStructure) {
	floor, ok := categoryMinimums[schedule.CategoryID]
	if ok && base < floor {
		f.addWarning("Property value %s is below the typical minimum of %s for %s assets",
			v.money(base), v.money(floor), schedule.CategoryName)
	}
}

func (v *Validator) checkConsistency(f *findings, in ValidationInput, schedule *models.CategoryFeeStructure) {
	base := *in.BasePropertyValue
	expected := base * (1 + schedule.TotalPercentage/100)
	if v.mode == ConsistencyItemized {
		expected = base
		for _, row := range in.FeeBreakdown {
			if item, ok := schedule.Item(row.ID); ok {
				expected += itemAmount(item, base)
			} else {
				expected += row.Amount
			}
		}
	}

	deviation := math.Abs(in.GrossTotal-expected) / expected * 100
	if deviation > MaxGrossDeviationPercent {
		f.addError("Gross total %s is inconsistent with the expected %s (%.2f%% deviation); recalculate fees",
			v.money(in.GrossTotal), v.money(expected), deviation)
	}
}

func (v *Validator) checkFeePercentage(f *findings, pct float64) {
	switch {
	case pct < MinFeePercentage:
		f.addWarning("Total fee percentage %.2f%% looks too low; check for missing costs", pct)
	case pct > MaxFeePercentage:
		f.addWarning("Total fee percentage %.2f%% looks high; review the fee structure", pct)
	}
}

func (v *Validator) checkCompleteness(f *findings, breakdown []models.CalculatedFee, schedule *models.CategoryFeeStructure) {
	present := make(map[string]struct{}, len(breakdown))
	for _, row := range breakdown {
		present[row.ID] = struct{}{}
	}
	for _, item := range schedule.FeeItems {
		if _, ok := present[item.ID]; item.Required && !ok {
			f.addError("Required fee item missing: %s", item.Name)
		}
	}
	for _, row := range breakdown {
		if _, ok := schedule.Item(row.ID); !ok {
			name := row.Name
			if name == "" {
				name = row.ID
			}
			f.addWarning("Unexpected fee item in breakdown: %s", name)
		}
	}
}

func (v *Validator) money(amount float64) string {
	return currency.FormatCurrency(amount, v.currency)
}

type findings struct {
	errors   []string
	warnings []string
}

func (f *findings) addError(format string, args ...interface{}) {
	f.errors = append(f.errors, fmt.Sprintf(format, args...))
}

func (f *findings) addWarning(format string, args ...interface{}) {
	f.warnings = append(f.warnings, fmt.Sprintf(format, args...))
}

func (f *findings) result(summary models.ValidationSummary) models.ValidationResult {
	errs := dedupe(f.errors)
	return models.ValidationResult{
		IsValid:  len(errs) == 0,
		Errors:   errs,
		Warnings: dedupe(f.warnings),
		Summary:  summary,
	}
}

// dedupe drops repeated messages, keeping first occurrences in order.
func dedupe(messages []string) []string {
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, m := range messages {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
