package wizard

import (
	"context"
	"encoding/json"
	"time"

	"tokenadmin/internal/models"
	"tokenadmin/internal/services/fees"

	"github.com/google/uuid"
)

// Service drives the asset creation wizard. operator identifies the
// authenticated user that starts or submits a draft.
type Service interface {
	// Draft lifecycle
	Start(ctx context.Context, operator string) (*models.AssetDraft, error)
	Get(ctx context.Context, id uuid.UUID) (*models.AssetDraft, error)
	List(ctx context.Context, page, limit int) ([]models.AssetDraft, int64, error)

	// Step operations
	SaveStep(ctx context.Context, id uuid.UUID, step models.WizardStep, payload json.RawMessage) (*StepResult, error)
	Submit(ctx context.Context, id uuid.UUID, operator string) (*StepResult, error)
}

// DraftCache is the read-through cache of drafts. Writes replace the cached
// copy with CacheDraft; reads fill a missing entry with FillDraft.
type DraftCache interface {
	CacheDraft(ctx context.Context, draft *models.AssetDraft) error
	FillDraft(ctx context.Context, draft *models.AssetDraft) error
	GetDraft(ctx context.Context, id uuid.UUID) (*models.AssetDraft, error)
	InvalidateDraft(ctx context.Context, id uuid.UUID) error
}

// StepResult is returned by every successful write
type StepResult struct {
	Draft       *models.AssetDraft           `json:"draft"`
	Calculation *models.FeeCalculationResult `json:"calculation,omitempty"`
	Validation  *models.ValidationResult     `json:"validation,omitempty"`
}

// Config holds configuration for wizard operations
type Config struct {
	DefaultCurrency string
	ConsistencyMode fees.ConsistencyMode
	MaxPageSize     int
	Now             func() time.Time
}

// MetricsCollector defines the interface for collecting wizard metrics
type MetricsCollector interface {
	// Operation metrics
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)

	// Cache metrics
	RecordCacheHit(key string)
	RecordCacheMiss(key string)

	// Fee metrics
	RecordValidation(category string, errors, warnings int)
	RecordError(operation, errType string)
}
