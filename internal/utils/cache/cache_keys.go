package cache

import (
	"fmt"
)

type EntityType string

const (
	EntityDraft EntityType = "draft"
)

type KeyType string

const (
	KeyID KeyType = "id"
)

// GenerateKey creates a standardized cache key
func GenerateKey(entity EntityType, keyType KeyType, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entity, keyType, value)
}

// DraftKey is the cache key of an asset draft.
func DraftKey(id fmt.Stringer) string {
	return GenerateKey(EntityDraft, KeyID, id.String())
}
