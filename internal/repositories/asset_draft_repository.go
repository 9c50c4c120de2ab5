package repositories

import (
	"context"
	"errors"
	"fmt"

	"tokenadmin/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrDraftNotFound = errors.New("asset draft not found")
	ErrInvalidDraft  = errors.New("invalid asset draft")
)

// AssetDraftRepository defines the database operations on wizard drafts
type AssetDraftRepository interface {
	Create(ctx context.Context, draft *models.AssetDraft) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AssetDraft, error)
	Update(ctx context.Context, draft *models.AssetDraft) error
	List(ctx context.Context, limit, offset int) ([]models.AssetDraft, int64, error)
}

type assetDraftRepository struct {
	db *gorm.DB
}

func NewAssetDraftRepository(db *gorm.DB) AssetDraftRepository {
	return &assetDraftRepository{
		db: db,
	}
}

func (r *assetDraftRepository) Create(ctx context.Context, draft *models.AssetDraft) error {
	if draft == nil || draft.ID == uuid.Nil {
		return ErrInvalidDraft
	}
	if err := r.db.WithContext(ctx).Create(draft).Error; err != nil {
		return fmt.Errorf("failed to create draft: %w", err)
	}
	return nil
}

func (r *assetDraftRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AssetDraft, error) {
	var draft models.AssetDraft
	if err := r.db.WithContext(ctx).First(&draft, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return &draft, nil
}

func (r *assetDraftRepository) Update(ctx context.Context, draft *models.AssetDraft) error {
	if draft == nil || draft.ID == uuid.Nil {
		return ErrInvalidDraft
	}
	result := r.db.WithContext(ctx).Save(draft)
	if result.Error != nil {
		return fmt.Errorf("failed to update draft: %w", result.Error)
	}
	return nil
}

func (r *assetDraftRepository) List(ctx context.Context, limit, offset int) ([]models.AssetDraft, int64, error) {
	var (
		drafts []models.AssetDraft
		total  int64
	)

	db := r.db.WithContext(ctx)
	if err := db.Model(&models.AssetDraft{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count drafts: %w", err)
	}

	if err := db.Order("updated_at DESC").Limit(limit).Offset(offset).Find(&drafts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list drafts: %w", err)
	}
	return drafts, total, nil
}
