package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Draft statuses
const (
	DraftStatusDraft     = "draft"
	DraftStatusSubmitted = "submitted"
)

// WizardStep names one page of the asset creation wizard.
type WizardStep string

const (
	StepCompany WizardStep = "company"
	StepAsset   WizardStep = "asset"
	StepFees    WizardStep = "fees"
	StepToken   WizardStep = "token"
	StepReview  WizardStep = "review"
)

// WizardSteps lists the steps that must be completed, in order.
var WizardSteps = []WizardStep{StepCompany, StepAsset, StepFees, StepToken}

// StepIndex returns the position of step in WizardSteps, or -1.
func StepIndex(step WizardStep) int {
	for i, s := range WizardSteps {
		if s == step {
			return i
		}
	}
	return -1
}

// AssetDraft is a partially or fully completed asset creation wizard.
type AssetDraft struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Status            string          `gorm:"not null;default:'draft';index" json:"status"`
	CurrentStep       WizardStep      `gorm:"not null" json:"currentStep"`
	CompletedSteps    pq.StringArray  `gorm:"type:text[]" json:"completedSteps"`
	Company           JSON            `gorm:"type:jsonb" json:"company,omitempty"`
	Asset             JSON            `gorm:"type:jsonb" json:"asset,omitempty"`
	Token             JSON            `gorm:"type:jsonb" json:"token,omitempty"`
	Category          string          `gorm:"index" json:"category,omitempty"`
	Currency          string          `gorm:"size:3;not null" json:"currency"`
	BasePropertyValue decimal.Decimal `gorm:"type:decimal(20,2)" json:"basePropertyValue"`
	TotalFees         decimal.Decimal `gorm:"type:decimal(20,2)" json:"totalFees"`
	GrossTotal        decimal.Decimal `gorm:"type:decimal(20,2)" json:"grossTotal"`
	FeeBreakdown      FeeBreakdown    `gorm:"type:jsonb" json:"feeBreakdown,omitempty"`
	DisabledFeeItems  pq.StringArray  `gorm:"type:text[]" json:"disabledFeeItems,omitempty"`
	FeesApproved      bool            `gorm:"default:false" json:"feesApproved"`
	TokenPrice        decimal.Decimal `gorm:"type:decimal(24,6)" json:"tokenPrice"`
	CreatedBy         string          `gorm:"size:255;index" json:"createdBy,omitempty"`
	SubmittedBy       string          `gorm:"size:255" json:"submittedBy,omitempty"`
	SubmittedAt       *time.Time      `json:"submittedAt,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// IsCompleted reports whether step has been saved successfully.
func (d *AssetDraft) IsCompleted(step WizardStep) bool {
	for _, s := range d.CompletedSteps {
		if s == string(step) {
			return true
		}
	}
	return false
}

// MarkCompleted records step and moves CurrentStep to the next open step.
func (d *AssetDraft) MarkCompleted(step WizardStep) {
	if !d.IsCompleted(step) {
		d.CompletedSteps = append(d.CompletedSteps, string(step))
	}
	d.CurrentStep = d.NextStep()
}

// Reopen clears the completion of steps so they must be saved again.
func (d *AssetDraft) Reopen(steps ...WizardStep) {
	kept := d.CompletedSteps[:0]
	for _, s := range d.CompletedSteps {
		reopened := false
		for _, r := range steps {
			if s == string(r) {
				reopened = true
				break
			}
		}
		if !reopened {
			kept = append(kept, s)
		}
	}
	d.CompletedSteps = kept
	d.CurrentStep = d.NextStep()
}

// NextStep returns the first incomplete step, or StepReview when none is left.
func (d *AssetDraft) NextStep() WizardStep {
	for _, s := range WizardSteps {
		if !d.IsCompleted(s) {
			return s
		}
	}
	return StepReview
}

// MissingSteps lists the steps not yet completed, in wizard order.
func (d *AssetDraft) MissingSteps() []WizardStep {
	var missing []WizardStep
	for _, s := range WizardSteps {
		if !d.IsCompleted(s) {
			missing = append(missing, s)
		}
	}
	return missing
}
