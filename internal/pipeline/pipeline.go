// Package pipeline runs the parse, group, categorize and summarize sequence
// for one uploaded file.
package pipeline

import (
	"context"
	"time"

	"github.com/Bublikus/groshify-sub000/internal/aggregation"
	"github.com/Bublikus/groshify-sub000/internal/categorizer"
	"github.com/Bublikus/groshify-sub000/internal/logging"
	"github.com/Bublikus/groshify-sub000/internal/models"
	"github.com/Bublikus/groshify-sub000/internal/parser"

	"github.com/google/uuid"
)

// Analysis is everything derived from one file. It is not modified after
// Analyze returns.
type Analysis struct {
	ID       string               `json:"id"`
	FileName string               `json:"fileName"`
	Document *models.Document     `json:"document"`
	Months   []models.MonthBucket `json:"months"`
	Overall  models.Sums          `json:"overall"`
	Undated  int                  `json:"undatedRows"`
	// Categories maps row id to category name.
	Categories        map[string]string             `json:"categories"`
	Results           []models.CategorizationResult `json:"results"`
	CategorySummaries []models.CategorySummary      `json:"categorySummaries"`

	aggregator      *aggregation.Aggregator
	defaultCategory string
}

// Selection is the view of an Analysis for one month label or for all months.
type Selection struct {
	Label             string                   `json:"label"`
	Rows              []models.Row             `json:"rows"`
	Sums              models.Sums              `json:"sums"`
	CategorySummaries []models.CategorySummary `json:"categorySummaries"`
}

// MonthLabels returns the bucket labels oldest first.
func (a *Analysis) MonthLabels() []string {
	labels := make([]string, len(a.Months))
	for i, m := range a.Months {
		labels[i] = m.Label
	}
	return labels
}

// Select returns the rows, sums and category summaries for label, which is a
// bucket label, a "YYYY-MM" key or models.AllMonths. Unknown labels select
// nothing and yield zero sums.
func (a *Analysis) Select(label string) Selection {
	rows := aggregation.CurrentMonthData(a.Document.Rows, a.Months, label)
	return Selection{
		Label:             label,
		Rows:              rows,
		Sums:              aggregation.CurrentSums(a.Overall, a.Months, label),
		CategorySummaries: a.aggregator.CategorySummaries(a.Document, rows, a.Categories, a.defaultCategory),
	}
}

// Analyzer wires the registry, the aggregator and the gateway.
type Analyzer struct {
	registry   *parser.Registry
	aggregator *aggregation.Aggregator
	gateway    *categorizer.Gateway
	logger     logging.Logger
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(registry *parser.Registry, aggregator *aggregation.Aggregator, gateway *categorizer.Gateway, logger logging.Logger) *Analyzer {
	return &Analyzer{
		registry:   registry,
		aggregator: aggregator,
		gateway:    gateway,
		logger:     logging.OrDefault(logger),
	}
}

// Registry returns the parser registry.
func (a *Analyzer) Registry() *parser.Registry {
	return a.registry
}

// Analyze parses file and derives every aggregate. Parse errors are the only
// errors returned; categorization problems degrade to the default category.
func (a *Analyzer) Analyze(ctx context.Context, file parser.File, opts parser.Options) (*Analysis, error) {
	start := time.Now()
	log := a.logger.WithFields(logging.Field{Key: logging.FieldFile, Value: file.Name})

	doc, err := a.registry.Parse(file, opts)
	if err != nil {
		log.WithError(err).Warn("Failed to parse file")
		return nil, err
	}

	grouping := a.aggregator.GroupByMonth(doc)
	assignment := a.gateway.AssignCategories(ctx, doc, a.aggregator.Columns().Description)
	def := a.gateway.DefaultCategory()

	analysis := &Analysis{
		ID:                uuid.NewString(),
		FileName:          file.Name,
		Document:          doc,
		Months:            grouping.Buckets,
		Overall:           grouping.Overall,
		Undated:           len(grouping.Undated),
		Categories:        assignment.Categories,
		Results:           assignment.Results,
		CategorySummaries: a.aggregator.CategorySummaries(doc, doc.Rows, assignment.Categories, def),
		aggregator:        a.aggregator,
		defaultCategory:   def,
	}

	log.Info("Analyzed file",
		logging.Field{Key: logging.FieldRows, Value: len(doc.Rows)},
		logging.Field{Key: logging.FieldCount, Value: len(grouping.Buckets)},
		logging.Field{Key: logging.FieldDuration, Value: time.Since(start).Milliseconds()})
	return analysis, nil
}
