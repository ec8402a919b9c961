package categories

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/billfold-dev/billfold/internal/model"
)

// UncategorizedName is the fallback category assigned to imported rows with
// no mapped category column.
const UncategorizedName = "Uncategorized"

// Service provides in-memory lookup over the category list.
type Service struct {
	categories []model.Category
	byID       map[int]*model.Category
}

// NewService creates a Service from a slice of categories.
func NewService(cats []model.Category) *Service {
	s := &Service{categories: cats}
	s.reindex()
	return s
}

func (s *Service) reindex() {
	s.byID = make(map[int]*model.Category, len(s.categories))
	for i := range s.categories {
		s.byID[s.categories[i].ID] = &s.categories[i]
	}
}

// Load reads categories.csv from a data dir and returns a Service.
func Load(dataDir string) (*Service, error) {
	path := filepath.Join(dataDir, "categories", "categories.csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening categories: %w", err)
	}
	defer f.Close()

	cats, err := ReadCategories(f)
	if err != nil {
		return nil, fmt.Errorf("reading categories: %w", err)
	}
	return NewService(cats), nil
}

// All returns all categories, active or not.
func (s *Service) All() []model.Category {
	return s.categories
}

// Active returns the active categories for a budget type.
func (s *Service) Active(bt model.BudgetType) []model.Category {
	var result []model.Category
	for _, c := range s.categories {
		if c.Active && c.BudgetType == bt {
			result = append(result, c)
		}
	}
	return result
}

// Get returns a category by ID.
func (s *Service) Get(catID int) (model.Category, bool) {
	c, ok := s.byID[catID]
	if !ok {
		return model.Category{}, false
	}
	return *c, true
}

// Exists reports whether a category ID exists.
func (s *Service) Exists(catID int) bool {
	_, ok := s.byID[catID]
	return ok
}

// ByName returns the first category in the budget type whose name matches
// case-insensitively.
func (s *Service) ByName(name string, bt model.BudgetType) (model.Category, bool) {
	for _, c := range s.categories {
		if c.BudgetType == bt && strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return model.Category{}, false
}

// Uncategorized returns the fallback category for a budget type.
func (s *Service) Uncategorized(bt model.BudgetType) (model.Category, bool) {
	return s.ByName(UncategorizedName, bt)
}

// Add appends a new category, assigning the next ID. Returns the assigned ID.
func (s *Service) Add(cat model.Category) (int, error) {
	if !cat.BudgetType.Valid() {
		return 0, fmt.Errorf("invalid budget type %q", cat.BudgetType)
	}
	if cat.Name == "" {
		return 0, fmt.Errorf("category name is required")
	}
	maxID := 0
	for _, c := range s.categories {
		if c.ID > maxID {
			maxID = c.ID
		}
	}
	cat.ID = maxID + 1
	s.categories = append(s.categories, cat)
	s.reindex()
	return cat.ID, nil
}

// Deactivate marks a category inactive. Referenced categories are never
// deleted, only hidden from new transactions.
func (s *Service) Deactivate(catID int) error {
	c, ok := s.byID[catID]
	if !ok {
		return fmt.Errorf("unknown category %d", catID)
	}
	c.Active = false
	return nil
}

// Save writes the categories to <dataDir>/categories/categories.csv.
func (s *Service) Save(dataDir string) error {
	dir := filepath.Join(dataDir, "categories")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating categories dir: %w", err)
	}

	path := filepath.Join(dir, "categories.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating categories file: %w", err)
	}
	defer f.Close()

	if err := WriteCategories(f, s.categories); err != nil {
		return fmt.Errorf("writing categories: %w", err)
	}
	return nil
}
