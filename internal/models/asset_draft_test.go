package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssetDraft_StepProgress(t *testing.T) {
	draft := &AssetDraft{CurrentStep: StepCompany}
	assert.Equal(t, StepCompany, draft.NextStep())

	draft.MarkCompleted(StepCompany)
	draft.MarkCompleted(StepAsset)
	draft.MarkCompleted(StepAsset)
	assert.Equal(t, []string{"company", "asset"}, []string(draft.CompletedSteps))
	assert.Equal(t, StepFees, draft.CurrentStep)

	draft.MarkCompleted(StepFees)
	draft.MarkCompleted(StepToken)
	assert.Equal(t, StepReview, draft.CurrentStep)
	assert.Empty(t, draft.MissingSteps())

	draft.Reopen(StepFees, StepToken)
	assert.Equal(t, StepFees, draft.CurrentStep)
	assert.False(t, draft.IsCompleted(StepFees))
	assert.True(t, draft.IsCompleted(StepAsset))
	assert.Equal(t, []WizardStep{StepFees, StepToken}, draft.MissingSteps())
}

func TestStepIndex(t *testing.T) {
	assert.Equal(t, 0, StepIndex(StepCompany))
	assert.Equal(t, 3, StepIndex(StepToken))
	assert.Equal(t, -1, StepIndex(StepReview))
	assert.Equal(t, -1, StepIndex("payment"))
}
