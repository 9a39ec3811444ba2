// Package store loads the category taxonomy from disk.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Bublikus/groshify-sub000/internal/logging"
	"github.com/Bublikus/groshify-sub000/internal/models"

	"gopkg.in/yaml.v3"
)

// DefaultTaxonomyFile is looked up when no file is configured.
const DefaultTaxonomyFile = "categories.yaml"

// TaxonomyLoader is implemented by CategoryStore and its test double.
type TaxonomyLoader interface {
	LoadTaxonomy(defaultCategory string) (models.Taxonomy, error)
}

// taxonomyFile is the on-disk layout:
//
//	categories:
//	  - name: groceries
//	    description: Supermarkets and food stores
//	    icon: 🛒
//	    color: "#4CAF50"
//	    subcategories: [supermarket, bakery]
type taxonomyFile struct {
	Categories []models.CategoryDefinition `yaml:"categories"`
}

// CategoryStore resolves and reads the taxonomy file.
type CategoryStore struct {
	TaxonomyFile string
	logger       logging.Logger
}

// NewCategoryStore creates a store for the given file. An empty name means
// DefaultTaxonomyFile in the standard locations.
func NewCategoryStore(taxonomyFile string, logger logging.Logger) *CategoryStore {
	return &CategoryStore{
		TaxonomyFile: taxonomyFile,
		logger:       logging.OrDefault(logger),
	}
}

// FindConfigFile looks for filename as given, under ./config and under
// $HOME/.config/groshify.
func (s *CategoryStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".config", "groshify", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// LoadTaxonomy reads the taxonomy file. When no file exists the built-in
// taxonomy is returned; an explicitly configured file that is missing is an
// error. defaultCategory must be one of the loaded names.
func (s *CategoryStore) LoadTaxonomy(defaultCategory string) (models.Taxonomy, error) {
	if defaultCategory == "" {
		defaultCategory = models.DefaultCategory
	}

	filename := s.TaxonomyFile
	explicit := filename != ""
	if !explicit {
		filename = DefaultTaxonomyFile
	}

	path, err := s.FindConfigFile(filename)
	if err != nil {
		if explicit {
			return models.Taxonomy{}, fmt.Errorf("taxonomy file not found: %s", filename)
		}
		s.logger.Debug("No taxonomy file found, using built-in categories",
			logging.Field{Key: logging.FieldFile, Value: filename})
		return builtin(defaultCategory)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from configuration
	if err != nil {
		return models.Taxonomy{}, fmt.Errorf("error reading taxonomy file: %w", err)
	}

	defs, err := decode(data)
	if err != nil {
		return models.Taxonomy{}, fmt.Errorf("error parsing taxonomy file %s: %w", path, err)
	}

	taxonomy, err := models.NewTaxonomy(defs, defaultCategory)
	if err != nil {
		return models.Taxonomy{}, fmt.Errorf("invalid taxonomy in %s: %w", path, err)
	}

	s.logger.Info("Loaded taxonomy",
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: taxonomy.Len()})
	return taxonomy, nil
}

// decode accepts the "categories:" document and a bare list.
func decode(data []byte) ([]models.CategoryDefinition, error) {
	var doc taxonomyFile
	if err := yaml.Unmarshal(data, &doc); err == nil && len(doc.Categories) > 0 {
		return doc.Categories, nil
	}

	var list []models.CategoryDefinition
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errors.New("no categories defined")
	}
	return list, nil
}

func builtin(defaultCategory string) (models.Taxonomy, error) {
	base := models.DefaultTaxonomy()
	if defaultCategory == base.Default() {
		return base, nil
	}
	return models.NewTaxonomy(base.Categories(), defaultCategory)
}

// SaveTaxonomy writes t to path in the "categories:" layout.
func SaveTaxonomy(path string, t models.Taxonomy) error {
	data, err := yaml.Marshal(taxonomyFile{Categories: t.Categories()})
	if err != nil {
		return fmt.Errorf("error marshaling taxonomy: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("error writing taxonomy: %w", err)
	}
	return nil
}
