package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tokenadmin/internal/models"
	cachekeys "tokenadmin/internal/utils/cache"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

// SetIfAbsent stores value only when key is not cached yet.
func (s *CacheService) SetIfAbsent(ctx context.Context, key string, value interface{}) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.SetNX(ctx, key, data, s.ttl).Result()
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// Draft caching
func (s *CacheService) CacheDraft(ctx context.Context, draft *models.AssetDraft) error {
	if draft == nil {
		return errors.New("cannot cache nil draft")
	}
	return s.Set(ctx, cachekeys.DraftKey(draft.ID), draft)
}

// FillDraft caches a draft read from the database. It never replaces an
// entry written by CacheDraft in the meantime.
func (s *CacheService) FillDraft(ctx context.Context, draft *models.AssetDraft) error {
	if draft == nil {
		return errors.New("cannot cache nil draft")
	}
	_, err := s.SetIfAbsent(ctx, cachekeys.DraftKey(draft.ID), draft)
	return err
}

// GetDraft returns nil without error on a cache miss.
func (s *CacheService) GetDraft(ctx context.Context, id uuid.UUID) (*models.AssetDraft, error) {
	var draft models.AssetDraft
	found, err := s.Get(ctx, cachekeys.DraftKey(id), &draft)
	if err != nil || !found {
		return nil, err
	}
	return &draft, nil
}

func (s *CacheService) InvalidateDraft(ctx context.Context, id uuid.UUID) error {
	return s.Delete(ctx, cachekeys.DraftKey(id))
}

// Close closes the Redis client connection
func (s *CacheService) Close() error {
	return s.client.Close()
}
