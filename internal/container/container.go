// Package container provides dependency injection for the groshify application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"fmt"

	"github.com/Bublikus/groshify-sub000/internal/aggregation"
	"github.com/Bublikus/groshify-sub000/internal/camtparser"
	"github.com/Bublikus/groshify-sub000/internal/categorizer"
	"github.com/Bublikus/groshify-sub000/internal/config"
	"github.com/Bublikus/groshify-sub000/internal/csvparser"
	"github.com/Bublikus/groshify-sub000/internal/logging"
	"github.com/Bublikus/groshify-sub000/internal/models"
	"github.com/Bublikus/groshify-sub000/internal/parser"
	"github.com/Bublikus/groshify-sub000/internal/pipeline"
	"github.com/Bublikus/groshify-sub000/internal/store"
	"github.com/Bublikus/groshify-sub000/internal/xlsxparser"
)

// Container holds all application dependencies and provides methods to access them.
// It is immutable after creation; dependencies are reached through getters.
type Container struct {
	logger     logging.Logger
	config     *config.Config
	store      store.TaxonomyLoader
	taxonomy   models.Taxonomy
	gemini     *categorizer.GeminiClient
	registry   *parser.Registry
	aggregator *aggregation.Aggregator
	gateway    *categorizer.Gateway
	analyzer   *pipeline.Analyzer
}

// NewContainer creates and wires all application dependencies.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(cfg, config.NewLogger(cfg))
}

// NewContainerWithLogger wires the dependencies around an existing logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	logger = logging.OrDefault(logger)
	return NewContainerWithStore(cfg, logger, store.NewCategoryStore(cfg.Categorization.TaxonomyFile, logger))
}

// NewContainerWithStore wires the dependencies around an existing logger and
// taxonomy source.
func NewContainerWithStore(cfg *config.Config, logger logging.Logger, categoryStore store.TaxonomyLoader) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	logger = logging.OrDefault(logger)

	taxonomy, err := categoryStore.LoadTaxonomy(cfg.Categorization.DefaultCategory)
	if err != nil {
		return nil, fmt.Errorf("failed to load taxonomy: %w", err)
	}

	registry := parser.NewRegistry(logger, csvparser.New(logger), xlsxparser.New(logger))
	if cfg.Parsers.CAMT.Enabled {
		registry.Register(camtparser.New(logger))
	}

	// A nil *GeminiClient must not reach the gateway as a non-nil interface.
	var (
		gemini *categorizer.GeminiClient
		client categorizer.AIClient
	)
	if cfg.AI.APIKey != "" {
		gemini = categorizer.NewGeminiClient(cfg.AI.APIKey, cfg.AI.Model, logger)
		client = gemini
		logger.Info("AI categorization enabled", logging.Field{Key: logging.FieldModel, Value: cfg.AI.Model})
	} else {
		logger.Info("AI categorization disabled, no API key configured")
	}

	aggregator := aggregation.New(cfg.Columns(), cfg.Aggregation.Locale, logger)
	gateway := categorizer.NewGateway(client, taxonomy, cfg.GatewayConfig(), logger)
	analyzer := pipeline.NewAnalyzer(registry, aggregator, gateway, logger)

	logger.Info("Container initialized successfully",
		logging.Field{Key: "parsers_count", Value: len(registry.Parsers())},
		logging.Field{Key: "categories_count", Value: taxonomy.Len()},
		logging.Field{Key: "ai_enabled", Value: gateway.Enabled()})

	return &Container{
		logger:     logger,
		config:     cfg,
		store:      categoryStore,
		taxonomy:   taxonomy,
		gemini:     gemini,
		registry:   registry,
		aggregator: aggregator,
		gateway:    gateway,
		analyzer:   analyzer,
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the container's taxonomy source.
func (c *Container) GetStore() store.TaxonomyLoader {
	return c.store
}

// GetTaxonomy returns the loaded category taxonomy.
func (c *Container) GetTaxonomy() models.Taxonomy {
	return c.taxonomy
}

// GetRegistry returns the parser registry.
func (c *Container) GetRegistry() *parser.Registry {
	return c.registry
}

// GetAggregator returns the aggregation engine.
func (c *Container) GetAggregator() *aggregation.Aggregator {
	return c.aggregator
}

// GetGateway returns the categorization gateway.
func (c *Container) GetGateway() *categorizer.Gateway {
	return c.gateway
}

// GetAnalyzer returns the document analysis pipeline.
func (c *Container) GetAnalyzer() *pipeline.Analyzer {
	return c.analyzer
}

// Close releases the classifier connection, if one was opened.
func (c *Container) Close() error {
	if c.gemini != nil {
		if err := c.gemini.Close(); err != nil {
			return fmt.Errorf("failed to close AI client: %w", err)
		}
	}
	c.logger.Debug("Container closed")
	return nil
}
