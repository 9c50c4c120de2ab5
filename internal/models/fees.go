package models

// FeeGroup is the grouping tag a fee item is reported under.
type FeeGroup string

const (
	FeeGroupRegistration  FeeGroup = "registration"
	FeeGroupLegal         FeeGroup = "legal"
	FeeGroupPlatform      FeeGroup = "platform"
	FeeGroupBrokerage     FeeGroup = "brokerage"
	FeeGroupTechnical     FeeGroup = "technical"
	FeeGroupMiscellaneous FeeGroup = "miscellaneous"
)

// Valid reports whether g is one of the known grouping tags.
func (g FeeGroup) Valid() bool {
	switch g {
	case FeeGroupRegistration, FeeGroupLegal, FeeGroupPlatform,
		FeeGroupBrokerage, FeeGroupTechnical, FeeGroupMiscellaneous:
		return true
	}
	return false
}

// Fee item statuses. An empty status counts as active.
const (
	FeeStatusActive   = "active"
	FeeStatusInactive = "inactive"
)

// FeeItem is one named charge in a category's fee schedule.
type FeeItem struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description"`
	Percentage  float64  `json:"percentage" yaml:"percentage"`    // 2.5 means 2.5%
	FixedAmount float64  `json:"fixedAmount" yaml:"fixed_amount"` // ignored when Percentage > 0
	Required    bool     `json:"required" yaml:"required"`
	Category    FeeGroup `json:"category" yaml:"category"`
	Status      string   `json:"status,omitempty" yaml:"status"`
}

// IsPercentage reports whether the item is driven by its percentage.
func (f FeeItem) IsPercentage() bool {
	return f.Percentage > 0
}

// IsEnabled reports whether the item participates in totals.
func (f FeeItem) IsEnabled() bool {
	return f.Status != FeeStatusInactive
}

// CategoryFeeStructure is the fee schedule applied to one asset category.
type CategoryFeeStructure struct {
	CategoryID        string    `json:"categoryId" yaml:"category_id"`
	CategoryName      string    `json:"categoryName" yaml:"category_name"`
	FeeItems          []FeeItem `json:"feeItems" yaml:"fee_items"`
	BasePropertyValue float64   `json:"basePropertyValue" yaml:"base_property_value"`
	TotalPercentage   float64   `json:"totalPercentage" yaml:"total_percentage"`
	GrossTotal        float64   `json:"grossTotal" yaml:"gross_total"`
	Notes             []string  `json:"notes,omitempty" yaml:"notes"`
}

// Clone returns a deep copy so callers can never mutate a shared schedule.
func (s *CategoryFeeStructure) Clone() *CategoryFeeStructure {
	if s == nil {
		return nil
	}
	out := *s
	out.FeeItems = append([]FeeItem(nil), s.FeeItems...)
	out.Notes = append([]string(nil), s.Notes...)
	return &out
}

// Item returns the fee item with the given id.
func (s *CategoryFeeStructure) Item(id string) (FeeItem, bool) {
	for _, item := range s.FeeItems {
		if item.ID == id {
			return item, true
		}
	}
	return FeeItem{}, false
}

// CalculatedFee is one row of a computed fee breakdown.
type CalculatedFee struct {
	ID              string   `json:"id" validate:"required"`
	Name            string   `json:"name"`
	Category        FeeGroup `json:"category"`
	Percentage      float64  `json:"percentage"`
	FixedAmount     float64  `json:"fixedAmount"`
	IsPercentage    bool     `json:"isPercentage"`
	Required        bool     `json:"required"`
	Enabled         bool     `json:"enabled"`
	Amount          float64  `json:"amount"`
	FormattedAmount string   `json:"formattedAmount,omitempty"`
}

// FeeGroupSubtotal aggregates the rows sharing a grouping tag.
type FeeGroupSubtotal struct {
	Category          FeeGroup        `json:"category"`
	Subtotal          float64         `json:"subtotal"`
	FormattedSubtotal string          `json:"formattedSubtotal"`
	Items             []CalculatedFee `json:"items"`
}

// FormattedTotals holds the display strings of a calculation.
type FormattedTotals struct {
	BaseValue  string `json:"baseValue"`
	TotalFees  string `json:"totalFees"`
	GrossTotal string `json:"grossTotal"`
}

// FeeCalculationResult is the outcome of applying a schedule to a base value.
type FeeCalculationResult struct {
	CategoryID      string             `json:"categoryId"`
	CategoryName    string             `json:"categoryName"`
	Currency        string             `json:"currency"`
	BaseValue       float64            `json:"baseValue"`
	TotalFees       float64            `json:"totalFees"`
	TotalPercentage float64            `json:"totalPercentage"`
	GrossTotal      float64            `json:"grossTotal"`
	Items           []CalculatedFee    `json:"items"`
	Groups          []FeeGroupSubtotal `json:"groups"`
	Formatted       FormattedTotals    `json:"formatted"`
}

// Breakdown returns the enabled rows, the shape written back with a submission.
func (r *FeeCalculationResult) Breakdown() []CalculatedFee {
	if r == nil {
		return nil
	}
	out := make([]CalculatedFee, 0, len(r.Items))
	for _, item := range r.Items {
		if item.Enabled {
			out = append(out, item)
		}
	}
	return out
}

// Subtotal returns the subtotal of a group, 0 when the group is absent.
func (r *FeeCalculationResult) Subtotal(group FeeGroup) float64 {
	if r == nil {
		return 0
	}
	for _, g := range r.Groups {
		if g.Category == group {
			return g.Subtotal
		}
	}
	return 0
}

// ValidationSummary echoes the figures a validation ran against.
type ValidationSummary struct {
	BasePropertyValue   float64 `json:"basePropertyValue"`
	Category            string  `json:"category"`
	CategoryName        string  `json:"categoryName,omitempty"`
	TotalFees           float64 `json:"totalFees"`
	GrossTotal          float64 `json:"grossTotal"`
	FeePercentage       float64 `json:"feePercentage"`
	ReferencePercentage float64 `json:"referencePercentage"`
	ItemCount           int     `json:"itemCount"`
	RequiredItemCount   int     `json:"requiredItemCount"`
}

// ValidationResult separates blocking errors from advisory warnings.
type ValidationResult struct {
	IsValid  bool              `json:"isValid"`
	Warnings []string          `json:"warnings"`
	Errors   []string          `json:"errors"`
	Summary  ValidationSummary `json:"summary"`
}
