package fees

import (
	"fmt"
	"math"

	"tokenadmin/internal/models"
	"tokenadmin/internal/utils/currency"
)

// Calculator applies fee schedules to base values. It holds no state besides
// the display currency and is safe for concurrent use.
type Calculator struct {
	currency string
}

func NewCalculator(currencyCode string) *Calculator {
	return &Calculator{currency: currency.Normalize(currencyCode)}
}

// Computable reports whether baseValue can be priced. Zero, negative and
// non-finite values cannot.
func Computable(baseValue float64) bool {
	return baseValue > 0 && !math.IsInf(baseValue, 0)
}

// Calculate prices schedule against baseValue. It returns nil when the inputs
// are not computable yet, which callers must not confuse with a zero result.
func (c *Calculator) Calculate(baseValue float64, schedule *models.CategoryFeeStructure) *models.FeeCalculationResult {
	if schedule == nil || !Computable(baseValue) {
		return nil
	}

	result := &models.FeeCalculationResult{
		CategoryID:   schedule.CategoryID,
		CategoryName: schedule.CategoryName,
		Currency:     c.currency,
		BaseValue:    baseValue,
		Items:        make([]models.CalculatedFee, 0, len(schedule.FeeItems)),
	}

	groupIndex := make(map[models.FeeGroup]int)
	for _, item := range schedule.FeeItems {
		row := models.CalculatedFee{
			ID:           item.ID,
			Name:         item.Name,
			Category:     item.Category,
			Percentage:   item.Percentage,
			FixedAmount:  item.FixedAmount,
			IsPercentage: item.IsPercentage(),
			Required:     item.Required,
			Enabled:      item.IsEnabled(),
		}
		if row.Enabled {
			row.Amount = itemAmount(item, baseValue)
			result.TotalFees += row.Amount
			if row.IsPercentage {
				result.TotalPercentage += item.Percentage
			}
		}
		row.FormattedAmount = currency.FormatCurrency(row.Amount, c.currency)
		result.Items = append(result.Items, row)

		i, ok := groupIndex[item.Category]
		if !ok {
			i = len(result.Groups)
			groupIndex[item.Category] = i
			result.Groups = append(result.Groups, models.FeeGroupSubtotal{Category: item.Category})
		}
		result.Groups[i].Items = append(result.Groups[i].Items, row)
		result.Groups[i].Subtotal += row.Amount
	}

	for i := range result.Groups {
		result.Groups[i].FormattedSubtotal = currency.FormatCurrency(result.Groups[i].Subtotal, c.currency)
	}

	result.GrossTotal = baseValue + result.TotalFees
	result.Formatted = models.FormattedTotals{
		BaseValue:  currency.FormatCurrency(baseValue, c.currency),
		TotalFees:  currency.FormatCurrency(result.TotalFees, c.currency),
		GrossTotal: currency.FormatCurrency(result.GrossTotal, c.currency),
	}
	return result
}

// CalculateForCategory resolves the schedule for category and prices it.
func (c *Calculator) CalculateForCategory(registry *Registry, category string, baseValue float64) *models.FeeCalculationResult {
	return c.Calculate(baseValue, registry.GetFeeStructureByCategory(category))
}

func itemAmount(item models.FeeItem, baseValue float64) float64 {
	if item.IsPercentage() {
		return baseValue * (item.Percentage / 100)
	}
	return item.FixedAmount
}

// WithItemStatus returns a copy of schedule with one item switched on or off.
func WithItemStatus(schedule *models.CategoryFeeStructure, itemID string, enabled bool) (*models.CategoryFeeStructure, error) {
	out := schedule.Clone()
	if out == nil {
		return nil, ErrUnknownCategory
	}
	for i := range out.FeeItems {
		if out.FeeItems[i].ID != itemID {
			continue
		}
		if enabled {
			out.FeeItems[i].Status = models.FeeStatusActive
		} else {
			out.FeeItems[i].Status = models.FeeStatusInactive
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFeeItem, itemID)
}
