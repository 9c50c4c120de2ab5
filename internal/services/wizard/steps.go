package wizard

import (
	"encoding/json"
	"errors"
	"fmt"

	"tokenadmin/internal/models"
	"tokenadmin/internal/services/fees"
	"tokenadmin/internal/utils/currency"
	"tokenadmin/internal/validation"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const tokenPriceScale = 6

func decodePayload(payload json.RawMessage, dest interface{}) error {
	if len(payload) == 0 {
		return fmt.Errorf("%w: empty body", ErrInvalidPayload)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

func checkPayload(v *validation.Validator) error {
	if err := v.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return nil
}

func (s *service) saveCompany(draft *models.AssetDraft, payload json.RawMessage) error {
	var in models.CompanyStepInput
	if err := decodePayload(payload, &in); err != nil {
		return err
	}

	v := validation.New()
	v.Company(&in)
	if err := checkPayload(v); err != nil {
		return err
	}

	company, err := models.ToJSON(in)
	if err != nil {
		return fmt.Errorf("failed to encode company: %w", err)
	}
	draft.Company = company
	draft.MarkCompleted(models.StepCompany)
	return nil
}

func (s *service) saveAsset(draft *models.AssetDraft, payload json.RawMessage) error {
	var in models.AssetStepInput
	if err := decodePayload(payload, &in); err != nil {
		return err
	}

	v := validation.New()
	v.Asset(&in, s.registry.Has)
	if err := checkPayload(v); err != nil {
		return err
	}

	asset, err := models.ToJSON(in)
	if err != nil {
		return fmt.Errorf("failed to encode asset: %w", err)
	}

	// A new category invalidates the priced fee schedule and the token price
	if draft.Category != "" && draft.Category != in.Category {
		clearFees(draft)
		draft.Reopen(models.StepFees, models.StepToken)
	}

	draft.Asset = asset
	draft.Category = in.Category
	draft.MarkCompleted(models.StepAsset)
	return nil
}

// feeWriteBack receives every recomputation of the fee form.
type feeWriteBack struct {
	code        string
	calculation *models.FeeCalculationResult
	totalFees   decimal.Decimal
	grossTotal  decimal.Decimal
	breakdown   models.FeeBreakdown
}

func (w *feeWriteBack) update(result *models.FeeCalculationResult) {
	w.calculation = result
	if result == nil {
		w.totalFees, w.grossTotal, w.breakdown = decimal.Zero, decimal.Zero, nil
		return
	}
	w.totalFees = currency.ToDecimal(result.TotalFees, w.code)
	w.grossTotal = currency.ToDecimal(result.GrossTotal, w.code)
	w.breakdown = result.Breakdown()
}

func (s *service) saveFees(draft *models.AssetDraft, payload json.RawMessage, out *StepResult) error {
	var in models.FeeStepInput
	if err := decodePayload(payload, &in); err != nil {
		return err
	}

	category := in.Category
	if category == "" {
		category = draft.Category
	}
	if category != draft.Category {
		return fmt.Errorf("%w: %w", ErrInvalidPayload,
			validation.FieldErrors{"category": "must match the asset category"})
	}

	form := fees.NewFeeForm(s.registry, s.calculator)
	writeBack := &feeWriteBack{code: draft.Currency}
	form.Subscribe(writeBack.update)

	form.SetCategory(category)
	if in.BasePropertyValue != nil {
		form.SetBasePropertyValue(*in.BasePropertyValue)
	}
	// A category that lost its schedule since the asset step has no items to
	// toggle; the validator reports it as an invalid category.
	disabled := uniqueStrings(in.DisabledItems)
	if s.registry.Has(category) {
		for _, id := range disabled {
			if err := form.SetItemEnabled(id, false); err != nil {
				if errors.Is(err, fees.ErrUnknownFeeItem) {
					return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
				}
				return err
			}
		}
	}

	result := s.validator.Validate(fees.ValidationInput{
		BasePropertyValue:    in.BasePropertyValue,
		Category:             category,
		ApprovedFeeStructure: in.ApprovedFeeStructure,
		TotalFees:            form.TotalFees(),
		GrossTotal:           form.GrossTotal(),
		FeeBreakdown:         form.FeeBreakdown(),
	})
	s.metrics.RecordValidation(category, len(result.Errors), len(result.Warnings))
	if !result.IsValid {
		return &FeeValidationError{Calculation: writeBack.calculation, Result: result}
	}

	previousGross := draft.GrossTotal
	draft.BasePropertyValue = currency.ToDecimal(*in.BasePropertyValue, draft.Currency)
	draft.TotalFees = writeBack.totalFees
	draft.GrossTotal = writeBack.grossTotal
	draft.FeeBreakdown = writeBack.breakdown
	draft.DisabledFeeItems = pq.StringArray(disabled)
	draft.FeesApproved = true

	if draft.IsCompleted(models.StepToken) && !previousGross.Equal(draft.GrossTotal) {
		draft.TokenPrice = decimal.Zero
		draft.Reopen(models.StepToken)
	}
	draft.MarkCompleted(models.StepFees)

	out.Calculation = writeBack.calculation
	out.Validation = &result
	return nil
}

func (s *service) saveToken(draft *models.AssetDraft, payload json.RawMessage) error {
	var in models.TokenStepInput
	if err := decodePayload(payload, &in); err != nil {
		return err
	}

	v := validation.New()
	v.Token(&in)
	if err := checkPayload(v); err != nil {
		return err
	}

	token, err := models.ToJSON(in)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	draft.Token = token
	draft.TokenPrice = draft.GrossTotal.Div(decimal.NewFromInt(in.TotalSupply)).Round(tokenPriceScale)
	draft.MarkCompleted(models.StepToken)
	return nil
}

func clearFees(draft *models.AssetDraft) {
	draft.BasePropertyValue = decimal.Zero
	draft.TotalFees = decimal.Zero
	draft.GrossTotal = decimal.Zero
	draft.FeeBreakdown = nil
	draft.DisabledFeeItems = nil
	draft.FeesApproved = false
	draft.TokenPrice = decimal.Zero
}

func uniqueStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
