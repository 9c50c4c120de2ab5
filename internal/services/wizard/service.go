package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"tokenadmin/internal/models"
	"tokenadmin/internal/repositories"
	"tokenadmin/internal/services/fees"
	"tokenadmin/internal/utils/currency"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type service struct {
	repo       repositories.AssetDraftRepository
	cache      DraftCache
	registry   *fees.Registry
	calculator *fees.Calculator
	validator  *fees.Validator
	config     Config
	metrics    MetricsCollector
}

// NewService creates a new wizard service
func NewService(
	repo repositories.AssetDraftRepository,
	cache DraftCache,
	registry *fees.Registry,
	config Config,
	metrics MetricsCollector,
) Service {
	if repo == nil {
		panic("repo is required")
	}
	if cache == nil {
		panic("cache is required")
	}
	if registry == nil {
		panic("fee registry is required")
	}

	config.DefaultCurrency = currency.Normalize(config.DefaultCurrency)
	if config.ConsistencyMode == "" {
		config.ConsistencyMode = fees.ConsistencyItemized
	}
	if config.MaxPageSize <= 0 {
		config.MaxPageSize = maxPageSize
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	// Metrics is optional, create no-op collector if nil
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}

	return &service{
		repo:       repo,
		cache:      cache,
		registry:   registry,
		calculator: fees.NewCalculator(config.DefaultCurrency),
		validator:  fees.NewValidator(registry, config.DefaultCurrency, fees.WithConsistencyMode(config.ConsistencyMode)),
		config:     config,
		metrics:    metrics,
	}
}

func (s *service) Start(ctx context.Context, operator string) (*models.AssetDraft, error) {
	defer s.track("start", s.config.Now())

	draft := &models.AssetDraft{
		ID:          uuid.New(),
		Status:      models.DraftStatusDraft,
		CurrentStep: models.StepCompany,
		Currency:    s.config.DefaultCurrency,
		CreatedBy:   operator,
	}
	if err := s.repo.Create(ctx, draft); err != nil {
		s.metrics.RecordError("start", "repository")
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}

	s.metrics.RecordOperationResult("start", "success")
	return draft, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.AssetDraft, error) {
	// Try cache first
	draft, err := s.cache.GetDraft(ctx, id)
	if err != nil {
		log.Printf("wizard: cache read failed for draft %s: %v", id, err)
	}
	if draft != nil {
		s.metrics.RecordCacheHit(id.String())
		return draft, nil
	}
	s.metrics.RecordCacheMiss(id.String())

	draft, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.FillDraft(ctx, draft); err != nil {
		log.Printf("wizard: failed to cache draft %s: %v", id, err)
	}
	return draft, nil
}

func (s *service) List(ctx context.Context, page, limit int) ([]models.AssetDraft, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > s.config.MaxPageSize {
		limit = s.config.MaxPageSize
	}

	drafts, total, err := s.repo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list drafts: %w", err)
	}
	return drafts, total, nil
}

func (s *service) SaveStep(ctx context.Context, id uuid.UUID, step models.WizardStep, payload json.RawMessage) (*StepResult, error) {
	defer s.track("save_"+string(step), s.config.Now())

	idx := models.StepIndex(step)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStep, step)
	}

	// Writes always start from the database copy
	draft, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.Status == models.DraftStatusSubmitted {
		return nil, ErrDraftSubmitted
	}
	for _, previous := range models.WizardSteps[:idx] {
		if !draft.IsCompleted(previous) {
			return nil, fmt.Errorf("%w: complete %q before %q", ErrStepOutOfOrder, previous, step)
		}
	}

	result := &StepResult{Draft: draft}
	switch step {
	case models.StepCompany:
		err = s.saveCompany(draft, payload)
	case models.StepAsset:
		err = s.saveAsset(draft, payload)
	case models.StepFees:
		err = s.saveFees(draft, payload, result)
	case models.StepToken:
		err = s.saveToken(draft, payload)
	}
	if err != nil {
		s.metrics.RecordOperationResult("save_"+string(step), "rejected")
		return nil, err
	}

	if err := s.persist(ctx, draft); err != nil {
		s.metrics.RecordError("save_"+string(step), "repository")
		return nil, err
	}

	s.metrics.RecordOperationResult("save_"+string(step), "success")
	return result, nil
}

func (s *service) Submit(ctx context.Context, id uuid.UUID, operator string) (*StepResult, error) {
	defer s.track("submit", s.config.Now())

	draft, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.Status == models.DraftStatusSubmitted {
		return nil, ErrDraftSubmitted
	}
	if missing := draft.MissingSteps(); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, step := range missing {
			names[i] = string(step)
		}
		return nil, fmt.Errorf("%w: missing %s", ErrIncompleteDraft, strings.Join(names, ", "))
	}

	// Persisted figures are validated again; schedules may have changed since
	// the fees step was saved.
	validation := s.validator.Validate(persistedFees(draft))
	s.metrics.RecordValidation(draft.Category, len(validation.Errors), len(validation.Warnings))
	if !validation.IsValid {
		s.metrics.RecordOperationResult("submit", "rejected")
		return nil, &FeeValidationError{Result: validation}
	}

	now := s.config.Now().UTC()
	draft.Status = models.DraftStatusSubmitted
	draft.SubmittedAt = &now
	draft.SubmittedBy = operator
	draft.CurrentStep = models.StepReview

	if err := s.persist(ctx, draft); err != nil {
		s.metrics.RecordError("submit", "repository")
		return nil, err
	}

	log.Printf("wizard: draft %s submitted by %s (%s, gross %s)", draft.ID, operator, draft.Category,
		currency.FormatCurrency(validation.Summary.GrossTotal, draft.Currency))
	s.metrics.RecordOperationResult("submit", "success")
	return &StepResult{Draft: draft, Validation: &validation}, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.AssetDraft, error) {
	draft, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrDraftNotFound) {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return draft, nil
}

func (s *service) persist(ctx context.Context, draft *models.AssetDraft) error {
	if err := s.repo.Update(ctx, draft); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	if err := s.cache.CacheDraft(ctx, draft); err != nil {
		log.Printf("wizard: failed to cache draft %s: %v", draft.ID, err)
		if err := s.cache.InvalidateDraft(ctx, draft.ID); err != nil {
			log.Printf("wizard: failed to invalidate draft %s: %v", draft.ID, err)
		}
	}
	return nil
}

func (s *service) track(operation string, started time.Time) {
	s.metrics.RecordOperationDuration(operation, s.config.Now().Sub(started))
}

// persistedFees rebuilds the validator input from the stored draft.
func persistedFees(draft *models.AssetDraft) fees.ValidationInput {
	base := draft.BasePropertyValue.InexactFloat64()
	approved := draft.FeesApproved
	return fees.ValidationInput{
		BasePropertyValue:    &base,
		Category:             draft.Category,
		ApprovedFeeStructure: &approved,
		TotalFees:            draft.TotalFees.InexactFloat64(),
		GrossTotal:           draft.GrossTotal.InexactFloat64(),
		FeeBreakdown:         []models.CalculatedFee(draft.FeeBreakdown),
	}
}
