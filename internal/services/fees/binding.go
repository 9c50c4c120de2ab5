package fees

import (
	"fmt"

	"tokenadmin/internal/models"
)

// FeeForm binds the two driving inputs of a fee step, category and base
// property value, to the calculator. Every input change recomputes and
// notifies subscribers. A FeeForm belongs to a single wizard session and is
// not safe for concurrent use.
type FeeForm struct {
	registry    *Registry
	calculator  *Calculator
	category    string
	baseValue   float64
	overrides   map[string]bool
	result      *models.FeeCalculationResult
	subscribers []func(*models.FeeCalculationResult)
}

func NewFeeForm(registry *Registry, calculator *Calculator) *FeeForm {
	return &FeeForm{
		registry:   registry,
		calculator: calculator,
		overrides:  make(map[string]bool),
	}
}

// Subscribe registers fn to receive every recomputed result. fn receives nil
// while the inputs are not computable.
func (f *FeeForm) Subscribe(fn func(*models.FeeCalculationResult)) {
	f.subscribers = append(f.subscribers, fn)
}

// SetCategory switches the schedule. Item toggles belong to the previous
// schedule and are dropped.
func (f *FeeForm) SetCategory(category string) {
	if category == f.category {
		return
	}
	f.category = category
	f.overrides = make(map[string]bool)
	f.recompute()
}

func (f *FeeForm) SetBasePropertyValue(value float64) {
	if value == f.baseValue {
		return
	}
	f.baseValue = value
	f.recompute()
}

// SetItemEnabled toggles one item of the current schedule.
func (f *FeeForm) SetItemEnabled(itemID string, enabled bool) error {
	schedule := f.registry.GetFeeStructureByCategory(f.category)
	if schedule == nil {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, f.category)
	}
	if _, ok := schedule.Item(itemID); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFeeItem, itemID)
	}
	f.overrides[itemID] = enabled
	f.recompute()
	return nil
}

// Schedule returns the current schedule with toggles applied, or nil.
func (f *FeeForm) Schedule() *models.CategoryFeeStructure {
	schedule := f.registry.GetFeeStructureByCategory(f.category)
	if schedule == nil {
		return nil
	}
	for i := range schedule.FeeItems {
		enabled, ok := f.overrides[schedule.FeeItems[i].ID]
		if !ok {
			continue
		}
		if enabled {
			schedule.FeeItems[i].Status = models.FeeStatusActive
		} else {
			schedule.FeeItems[i].Status = models.FeeStatusInactive
		}
	}
	return schedule
}

// Result returns the latest calculation, nil when not computable.
func (f *FeeForm) Result() *models.FeeCalculationResult {
	return f.result
}

// TotalFees is the write-back value for the form's totalFees field.
func (f *FeeForm) TotalFees() float64 {
	if f.result == nil {
		return 0
	}
	return f.result.TotalFees
}

// GrossTotal is the write-back value for the form's grossTotal field.
func (f *FeeForm) GrossTotal() float64 {
	if f.result == nil {
		return 0
	}
	return f.result.GrossTotal
}

// FeeBreakdown is the write-back value for the form's feeBreakdown field.
func (f *FeeForm) FeeBreakdown() []models.CalculatedFee {
	return f.result.Breakdown()
}

func (f *FeeForm) recompute() {
	f.result = f.calculator.Calculate(f.baseValue, f.Schedule())
	for _, fn := range f.subscribers {
		fn(f.result)
	}
}
