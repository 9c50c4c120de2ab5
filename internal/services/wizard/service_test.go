package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"tokenadmin/internal/models"
	"tokenadmin/internal/repositories"
	"tokenadmin/internal/services/fees"
	"tokenadmin/internal/validation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDraftRepository struct {
	mock.Mock
}

func (m *MockDraftRepository) Create(ctx context.Context, draft *models.AssetDraft) error {
	return m.Called(ctx, draft).Error(0)
}

func (m *MockDraftRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AssetDraft, error) {
	args := m.Called(ctx, id)
	draft, _ := args.Get(0).(*models.AssetDraft)
	return draft, args.Error(1)
}

func (m *MockDraftRepository) Update(ctx context.Context, draft *models.AssetDraft) error {
	return m.Called(ctx, draft).Error(0)
}

func (m *MockDraftRepository) List(ctx context.Context, limit, offset int) ([]models.AssetDraft, int64, error) {
	args := m.Called(ctx, limit, offset)
	drafts, _ := args.Get(0).([]models.AssetDraft)
	return drafts, args.Get(1).(int64), args.Error(2)
}

type MockDraftCache struct {
	mock.Mock
}

func (m *MockDraftCache) CacheDraft(ctx context.Context, draft *models.AssetDraft) error {
	return m.Called(ctx, draft).Error(0)
}

func (m *MockDraftCache) FillDraft(ctx context.Context, draft *models.AssetDraft) error {
	return m.Called(ctx, draft).Error(0)
}

func (m *MockDraftCache) GetDraft(ctx context.Context, id uuid.UUID) (*models.AssetDraft, error) {
	args := m.Called(ctx, id)
	draft, _ := args.Get(0).(*models.AssetDraft)
	return draft, args.Error(1)
}

func (m *MockDraftCache) InvalidateDraft(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type recordingMetrics struct {
	NoopMetricsCollector
	validations []string
}

func (r *recordingMetrics) RecordValidation(category string, errors, warnings int) {
	r.validations = append(r.validations, category)
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

const (
	companyPayload = `{"name":"Harbor SPV Ltd","jurisdiction":"Cayman Islands"}`
	assetPayload   = `{"name":"Harbor Tower","location":"Dubai","category":"commercial","areaSqm":12000}`
	feesPayload    = `{"basePropertyValue":1000000,"approvedFeeStructure":true}`
	tokenPayload   = `{"name":"Harbor Token","symbol":"HBR","totalSupply":1000000}`
)

type fixture struct {
	repo    *MockDraftRepository
	cache   *MockDraftCache
	metrics *recordingMetrics
	service Service
	draft   *models.AssetDraft
}

// newFixture wires a service to mocks that behave like a store holding a
// single draft.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:    new(MockDraftRepository),
		cache:   new(MockDraftCache),
		metrics: &recordingMetrics{},
		draft: &models.AssetDraft{
			ID:          uuid.New(),
			Status:      models.DraftStatusDraft,
			CurrentStep: models.StepCompany,
			Currency:    "USD",
		},
	}
	f.repo.On("GetByID", mock.Anything, f.draft.ID).Return(f.draft, nil)
	f.repo.On("Update", mock.Anything, f.draft).Return(nil)
	f.cache.On("CacheDraft", mock.Anything, f.draft).Return(nil)

	f.service = NewService(f.repo, f.cache, fees.MustDefaultRegistry(), Config{
		DefaultCurrency: "usd",
		Now:             func() time.Time { return fixedNow },
	}, f.metrics)
	return f
}

func (f *fixture) save(step models.WizardStep, payload string) (*StepResult, error) {
	return f.service.SaveStep(context.Background(), f.draft.ID, step, json.RawMessage(payload))
}

func (f *fixture) completeAll(t *testing.T) {
	t.Helper()
	for _, s := range []struct {
		step    models.WizardStep
		payload string
	}{
		{models.StepCompany, companyPayload},
		{models.StepAsset, assetPayload},
		{models.StepFees, feesPayload},
		{models.StepToken, tokenPayload},
	} {
		_, err := f.save(s.step, s.payload)
		require.NoError(t, err, "step %s", s.step)
	}
}

func TestService_Start(t *testing.T) {
	repo := new(MockDraftRepository)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.AssetDraft")).Return(nil)
	service := NewService(repo, new(MockDraftCache), fees.MustDefaultRegistry(), Config{}, nil)

	draft, err := service.Start(context.Background(), "ops-7")
	require.NoError(t, err)
	assert.Equal(t, "ops-7", draft.CreatedBy)
	assert.NotEqual(t, uuid.Nil, draft.ID)
	assert.Equal(t, models.DraftStatusDraft, draft.Status)
	assert.Equal(t, models.StepCompany, draft.CurrentStep)
	assert.Equal(t, "USD", draft.Currency)
	repo.AssertExpectations(t)
}

func TestService_Get(t *testing.T) {
	id := uuid.New()
	stored := &models.AssetDraft{ID: id, Status: models.DraftStatusDraft}

	t.Run("cache hit", func(t *testing.T) {
		repo := new(MockDraftRepository)
		cache := new(MockDraftCache)
		cache.On("GetDraft", mock.Anything, id).Return(stored, nil)

		draft, err := NewService(repo, cache, fees.MustDefaultRegistry(), Config{}, nil).Get(context.Background(), id)
		require.NoError(t, err)
		assert.Same(t, stored, draft)
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("cache miss populates cache", func(t *testing.T) {
		repo := new(MockDraftRepository)
		cache := new(MockDraftCache)
		cache.On("GetDraft", mock.Anything, id).Return(nil, nil)
		cache.On("FillDraft", mock.Anything, stored).Return(nil)
		repo.On("GetByID", mock.Anything, id).Return(stored, nil)

		draft, err := NewService(repo, cache, fees.MustDefaultRegistry(), Config{}, nil).Get(context.Background(), id)
		require.NoError(t, err)
		assert.Same(t, stored, draft)
		cache.AssertExpectations(t)
		cache.AssertNotCalled(t, "CacheDraft", mock.Anything, mock.Anything)
	})

	t.Run("cache failure falls back to database", func(t *testing.T) {
		repo := new(MockDraftRepository)
		cache := new(MockDraftCache)
		cache.On("GetDraft", mock.Anything, id).Return(nil, errors.New("connection refused"))
		cache.On("FillDraft", mock.Anything, stored).Return(errors.New("connection refused"))
		repo.On("GetByID", mock.Anything, id).Return(stored, nil)

		draft, err := NewService(repo, cache, fees.MustDefaultRegistry(), Config{}, nil).Get(context.Background(), id)
		require.NoError(t, err)
		assert.Same(t, stored, draft)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockDraftRepository)
		cache := new(MockDraftCache)
		cache.On("GetDraft", mock.Anything, id).Return(nil, nil)
		repo.On("GetByID", mock.Anything, id).Return(nil, repositories.ErrDraftNotFound)

		_, err := NewService(repo, cache, fees.MustDefaultRegistry(), Config{}, nil).Get(context.Background(), id)
		assert.ErrorIs(t, err, ErrDraftNotFound)
	})
}

func TestService_SaveStepCacheFailureInvalidates(t *testing.T) {
	repo := new(MockDraftRepository)
	cache := new(MockDraftCache)
	draft := &models.AssetDraft{ID: uuid.New(), Status: models.DraftStatusDraft, CurrentStep: models.StepCompany, Currency: "USD"}
	repo.On("GetByID", mock.Anything, draft.ID).Return(draft, nil)
	repo.On("Update", mock.Anything, draft).Return(nil)
	cache.On("CacheDraft", mock.Anything, draft).Return(errors.New("connection refused"))
	cache.On("InvalidateDraft", mock.Anything, draft.ID).Return(nil)

	service := NewService(repo, cache, fees.MustDefaultRegistry(), Config{}, nil)
	_, err := service.SaveStep(context.Background(), draft.ID, models.StepCompany, json.RawMessage(companyPayload))
	require.NoError(t, err)
	cache.AssertExpectations(t)
}

func TestService_List(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		limit      int
		wantLimit  int
		wantOffset int
	}{
		{name: "defaults", page: 0, limit: 0, wantLimit: 20, wantOffset: 0},
		{name: "third page", page: 3, limit: 10, wantLimit: 10, wantOffset: 20},
		{name: "capped", page: 1, limit: 500, wantLimit: 100, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockDraftRepository)
			repo.On("List", mock.Anything, tt.wantLimit, tt.wantOffset).Return([]models.AssetDraft{{}}, int64(41), nil)

			drafts, total, err := NewService(repo, new(MockDraftCache), fees.MustDefaultRegistry(), Config{}, nil).
				List(context.Background(), tt.page, tt.limit)
			require.NoError(t, err)
			assert.Len(t, drafts, 1)
			assert.Equal(t, int64(41), total)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_StepOrdering(t *testing.T) {
	f := newFixture(t)

	_, err := f.save(models.StepFees, feesPayload)
	assert.ErrorIs(t, err, ErrStepOutOfOrder)

	_, err = f.save(models.StepReview, `{}`)
	assert.ErrorIs(t, err, ErrUnknownStep)

	_, err = f.save("payment", `{}`)
	assert.ErrorIs(t, err, ErrUnknownStep)

	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestService_InvalidPayload(t *testing.T) {
	f := newFixture(t)

	_, err := f.save(models.StepCompany, `{"name":"A"}`)
	require.ErrorIs(t, err, ErrInvalidPayload)
	var fieldErrs validation.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "must be at least 2 characters long", fieldErrs["name"])
	assert.Equal(t, "must not be empty", fieldErrs["jurisdiction"])

	_, err = f.save(models.StepCompany, `{"name":`)
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = f.save(models.StepCompany, ``)
	assert.ErrorIs(t, err, ErrInvalidPayload)

	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestService_CompleteWizard(t *testing.T) {
	f := newFixture(t)

	_, err := f.save(models.StepCompany, companyPayload)
	require.NoError(t, err)
	assert.Equal(t, models.StepAsset, f.draft.CurrentStep)
	assert.Equal(t, "Harbor SPV Ltd", f.draft.Company["name"])

	_, err = f.save(models.StepAsset, `{"name":"Harbor Tower","location":"Dubai","category":"castle"}`)
	require.ErrorIs(t, err, ErrInvalidPayload)

	_, err = f.save(models.StepAsset, assetPayload)
	require.NoError(t, err)
	assert.Equal(t, "commercial", f.draft.Category)

	result, err := f.save(models.StepFees, feesPayload)
	require.NoError(t, err)
	require.NotNil(t, result.Calculation)
	require.NotNil(t, result.Validation)
	assert.True(t, result.Validation.IsValid)
	assert.Equal(t, float64(130_000), result.Calculation.TotalFees)
	assert.Equal(t, "1000000", f.draft.BasePropertyValue.String())
	assert.Equal(t, "130000", f.draft.TotalFees.String())
	assert.Equal(t, "1130000", f.draft.GrossTotal.String())
	assert.Len(t, f.draft.FeeBreakdown, 7)
	assert.True(t, f.draft.FeesApproved)
	assert.Equal(t, []string{"commercial"}, f.metrics.validations)

	_, err = f.save(models.StepToken, tokenPayload)
	require.NoError(t, err)
	assert.Equal(t, "1.13", f.draft.TokenPrice.String())
	assert.Equal(t, models.StepReview, f.draft.CurrentStep)

	submitted, err := f.service.Submit(context.Background(), f.draft.ID, "ops-9")
	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusSubmitted, submitted.Draft.Status)
	require.NotNil(t, submitted.Draft.SubmittedAt)
	assert.Equal(t, fixedNow, *submitted.Draft.SubmittedAt)
	assert.Equal(t, "ops-9", submitted.Draft.SubmittedBy)
	require.NotNil(t, submitted.Validation)
	assert.True(t, submitted.Validation.IsValid)

	_, err = f.save(models.StepCompany, companyPayload)
	assert.ErrorIs(t, err, ErrDraftSubmitted)
	_, err = f.service.Submit(context.Background(), f.draft.ID, "ops-9")
	assert.ErrorIs(t, err, ErrDraftSubmitted)

	f.cache.AssertNumberOfCalls(t, "CacheDraft", 5)
	f.cache.AssertNotCalled(t, "InvalidateDraft", mock.Anything, mock.Anything)
}

func TestService_FeeValidationRejectsStep(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{
			name:    "below floor",
			payload: `{"basePropertyValue":50000,"approvedFeeStructure":true}`,
			want:    "Property value $50,000.00 is too low for institutional real estate (minimum $100,000.00)",
		},
		{
			name:    "required item disabled",
			payload: `{"basePropertyValue":1000000,"approvedFeeStructure":true,"disabledItems":["valuation"]}`,
			want:    "Required fee item missing: Independent Valuation",
		},
		{
			name:    "not approved",
			payload: `{"basePropertyValue":1000000,"approvedFeeStructure":false}`,
			want:    "approvedFeeStructure must be true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.save(models.StepCompany, companyPayload)
			require.NoError(t, err)
			_, err = f.save(models.StepAsset, assetPayload)
			require.NoError(t, err)

			_, err = f.save(models.StepFees, tt.payload)
			require.ErrorIs(t, err, ErrFeeValidation)
			var feeErr *FeeValidationError
			require.ErrorAs(t, err, &feeErr)
			assert.False(t, feeErr.Result.IsValid)
			assert.Contains(t, feeErr.Result.Errors, tt.want)

			assert.False(t, f.draft.IsCompleted(models.StepFees))
			assert.True(t, f.draft.GrossTotal.IsZero())
			f.repo.AssertNumberOfCalls(t, "Update", 2)
		})
	}
}

func TestService_FeesStepPayloadErrors(t *testing.T) {
	f := newFixture(t)
	_, err := f.save(models.StepCompany, companyPayload)
	require.NoError(t, err)
	_, err = f.save(models.StepAsset, assetPayload)
	require.NoError(t, err)

	_, err = f.save(models.StepFees, `{"basePropertyValue":1000000,"approvedFeeStructure":true,"disabledItems":["courier"]}`)
	assert.ErrorIs(t, err, ErrInvalidPayload)
	assert.ErrorIs(t, err, fees.ErrUnknownFeeItem)

	_, err = f.save(models.StepFees, `{"category":"land","basePropertyValue":1000000,"approvedFeeStructure":true}`)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestService_FeesStepUnknownCategory(t *testing.T) {
	payloads := map[string]string{
		"without toggles": `{"basePropertyValue":1000000,"approvedFeeStructure":true}`,
		"with toggles":    `{"basePropertyValue":1000000,"approvedFeeStructure":true,"disabledItems":["brokerage"]}`,
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.save(models.StepCompany, companyPayload)
			require.NoError(t, err)
			_, err = f.save(models.StepAsset, assetPayload)
			require.NoError(t, err)

			// The schedule was removed after the asset step was saved
			f.draft.Category = "castle"

			_, err = f.save(models.StepFees, payload)
			require.ErrorIs(t, err, ErrFeeValidation)
			assert.NotErrorIs(t, err, ErrInvalidPayload)
			var feeErr *FeeValidationError
			require.ErrorAs(t, err, &feeErr)
			assert.Contains(t, feeErr.Result.Errors, `Invalid category: "castle"`)
			assert.False(t, f.draft.IsCompleted(models.StepFees))
		})
	}
}

func TestService_ChangesReopenLaterSteps(t *testing.T) {
	f := newFixture(t)
	f.completeAll(t)
	require.Empty(t, f.draft.MissingSteps())

	// Same figures keep the token step
	_, err := f.save(models.StepFees, feesPayload)
	require.NoError(t, err)
	assert.True(t, f.draft.IsCompleted(models.StepToken))
	assert.Equal(t, "1.13", f.draft.TokenPrice.String())

	// A different gross total re-opens the token step
	_, err = f.save(models.StepFees, `{"basePropertyValue":1000000,"approvedFeeStructure":true,"disabledItems":["brokerage","brokerage"]}`)
	require.NoError(t, err)
	assert.Equal(t, "1120000", f.draft.GrossTotal.String())
	assert.Equal(t, []string{"brokerage"}, []string(f.draft.DisabledFeeItems))
	assert.Equal(t, models.StepToken, f.draft.CurrentStep)
	assert.True(t, f.draft.TokenPrice.IsZero())

	_, err = f.service.Submit(context.Background(), f.draft.ID, "ops-9")
	assert.ErrorIs(t, err, ErrIncompleteDraft)

	_, err = f.save(models.StepToken, tokenPayload)
	require.NoError(t, err)
	assert.Equal(t, "1.12", f.draft.TokenPrice.String())

	// A new asset category re-opens fees and token
	_, err = f.save(models.StepAsset, `{"name":"Harbor Homes","location":"Dubai","category":"residential"}`)
	require.NoError(t, err)
	assert.Equal(t, "residential", f.draft.Category)
	assert.Equal(t, []models.WizardStep{models.StepFees, models.StepToken}, f.draft.MissingSteps())
	assert.True(t, f.draft.GrossTotal.IsZero())
	assert.Nil(t, f.draft.FeeBreakdown)
	assert.False(t, f.draft.FeesApproved)
}

func TestService_SubmitRevalidates(t *testing.T) {
	f := newFixture(t)
	f.completeAll(t)

	// Figures edited behind the wizard's back no longer add up
	f.draft.GrossTotal = f.draft.GrossTotal.Mul(f.draft.GrossTotal.Div(f.draft.BasePropertyValue))

	_, err := f.service.Submit(context.Background(), f.draft.ID, "ops-9")
	require.ErrorIs(t, err, ErrFeeValidation)
	assert.Equal(t, models.DraftStatusDraft, f.draft.Status)
	assert.Nil(t, f.draft.SubmittedAt)
}
