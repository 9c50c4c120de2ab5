package fees

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"sync"

	"tokenadmin/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed schedules.yaml
var defaultSchedules []byte

const scheduleDocumentVersion = 1

type scheduleDocument struct {
	Version    int                           `yaml:"version"`
	Categories []models.CategoryFeeStructure `yaml:"categories"`
}

// FeeGroup is a set of fee items sharing a grouping tag.
type FeeGroup struct {
	Category models.FeeGroup  `json:"category"`
	Items    []models.FeeItem `json:"items"`
}

// Registry is the read-only lookup table of fee schedules keyed by category id.
type Registry struct {
	order      []string
	categories map[string]*models.CategoryFeeStructure
}

var (
	defaultRegistry     *Registry
	defaultRegistryErr  error
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the registry built from the embedded schedules.
func DefaultRegistry() (*Registry, error) {
	defaultRegistryOnce.Do(func() {
		defaultRegistry, defaultRegistryErr = ParseRegistryYAML(defaultSchedules)
	})
	return defaultRegistry, defaultRegistryErr
}

// MustDefaultRegistry is DefaultRegistry for callers that cannot start without schedules.
func MustDefaultRegistry() *Registry {
	r, err := DefaultRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

// LoadRegistry reads a schedule document from path.
func LoadRegistry(path string) (*Registry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRegistryYAML(b)
}

// ParseRegistryYAML parses and checks a schedule document.
func ParseRegistryYAML(b []byte) (*Registry, error) {
	var doc scheduleDocument
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	if doc.Version != scheduleDocumentVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidSchedule, doc.Version)
	}
	if len(doc.Categories) == 0 {
		return nil, fmt.Errorf("%w: no categories", ErrInvalidSchedule)
	}
	return NewRegistry(doc.Categories)
}

// NewRegistry builds a registry from in-memory schedules. The schedules are copied.
func NewRegistry(schedules []models.CategoryFeeStructure) (*Registry, error) {
	r := &Registry{categories: make(map[string]*models.CategoryFeeStructure, len(schedules))}
	for i := range schedules {
		s := schedules[i].Clone()
		if err := checkSchedule(s); err != nil {
			return nil, err
		}
		if _, dup := r.categories[s.CategoryID]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidSchedule, s.CategoryID)
		}
		r.categories[s.CategoryID] = s
		r.order = append(r.order, s.CategoryID)
	}
	log.Printf("fees: loaded %d fee schedules", len(r.order))
	return r, nil
}

func checkSchedule(s *models.CategoryFeeStructure) error {
	if s.CategoryID == "" {
		return fmt.Errorf("%w: category without id", ErrInvalidSchedule)
	}
	if s.BasePropertyValue < 0 || s.TotalPercentage < 0 || s.GrossTotal < 0 {
		return fmt.Errorf("%w: %s: negative reference figure", ErrInvalidSchedule, s.CategoryID)
	}
	seen := make(map[string]struct{}, len(s.FeeItems))
	for _, item := range s.FeeItems {
		switch {
		case item.ID == "":
			return fmt.Errorf("%w: %s: fee item without id", ErrInvalidSchedule, s.CategoryID)
		case item.Percentage < 0 || item.FixedAmount < 0:
			return fmt.Errorf("%w: %s/%s: negative amount", ErrInvalidSchedule, s.CategoryID, item.ID)
		case item.Percentage > 0 && item.FixedAmount > 0:
			return fmt.Errorf("%w: %s/%s: both percentage and fixed amount set", ErrInvalidSchedule, s.CategoryID, item.ID)
		case !item.Category.Valid():
			return fmt.Errorf("%w: %s/%s: unknown group %q", ErrInvalidSchedule, s.CategoryID, item.ID, item.Category)
		case item.Status != "" && item.Status != models.FeeStatusActive && item.Status != models.FeeStatusInactive:
			return fmt.Errorf("%w: %s/%s: unknown status %q", ErrInvalidSchedule, s.CategoryID, item.ID, item.Status)
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("%w: %s: duplicate fee item %q", ErrInvalidSchedule, s.CategoryID, item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}

// GetFeeStructureByCategory returns a copy of the schedule for categoryID, or nil.
func (r *Registry) GetFeeStructureByCategory(categoryID string) *models.CategoryFeeStructure {
	if r == nil {
		return nil
	}
	return r.categories[categoryID].Clone()
}

// Has reports whether a schedule exists for categoryID.
func (r *Registry) Has(categoryID string) bool {
	if r == nil {
		return false
	}
	_, ok := r.categories[categoryID]
	return ok
}

// Categories returns copies of every schedule in document order.
func (r *Registry) Categories() []*models.CategoryFeeStructure {
	if r == nil {
		return nil
	}
	out := make([]*models.CategoryFeeStructure, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.categories[id].Clone())
	}
	return out
}

// GetCategorizedFees groups items by tag. Groups appear in order of first
// occurrence and keep their members' order.
func GetCategorizedFees(items []models.FeeItem) []FeeGroup {
	var groups []FeeGroup
	index := make(map[models.FeeGroup]int)
	for _, item := range items {
		i, ok := index[item.Category]
		if !ok {
			i = len(groups)
			index[item.Category] = i
			groups = append(groups, FeeGroup{Category: item.Category})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}
