package store

import (
	"github.com/Bublikus/groshify-sub000/internal/models"
)

// MockCategoryStore is a TaxonomyLoader for tests.
type MockCategoryStore struct {
	Taxonomy         models.Taxonomy
	LoadTaxonomyErr  error
	RequestedDefault string
}

// LoadTaxonomy returns the configured taxonomy, or the built-in one when
// none was set.
func (m *MockCategoryStore) LoadTaxonomy(defaultCategory string) (models.Taxonomy, error) {
	m.RequestedDefault = defaultCategory
	if m.LoadTaxonomyErr != nil {
		return models.Taxonomy{}, m.LoadTaxonomyErr
	}
	if m.Taxonomy.Len() == 0 {
		return models.DefaultTaxonomy(), nil
	}
	return m.Taxonomy, nil
}
