// Package categorizer assigns taxonomy categories to transactions through an
// external classifier. Every failure degrades to the default category; the
// gateway never returns an error to its caller.
package categorizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Bublikus/groshify-sub000/internal/logging"
	"github.com/Bublikus/groshify-sub000/internal/models"
	"github.com/Bublikus/groshify-sub000/internal/parser"
	"github.com/Bublikus/groshify-sub000/internal/parsererror"
)

// Defaults for Config.
const (
	DefaultConfidenceThreshold = 0.8
	DefaultTimeout             = 30 * time.Second
	DefaultBatchSize           = 10
)

// Config tunes the gateway.
type Config struct {
	// ConfidenceThreshold is the minimum accepted confidence.
	ConfidenceThreshold float64
	// Timeout bounds the single classifier round-trip.
	Timeout time.Duration
	// BatchSize is how many leading rows AssignCategories sends.
	BatchSize int
	// StrictTaxonomy rejects categories that are not in the requested list.
	StrictTaxonomy bool
}

// DefaultConfig returns the stock settings.
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		Timeout:             DefaultTimeout,
		BatchSize:           DefaultBatchSize,
		StrictTaxonomy:      true,
	}
}

// Gateway mediates calls to the classifier.
type Gateway struct {
	client   AIClient
	taxonomy models.Taxonomy
	cfg      Config
	logger   logging.Logger
}

// NewGateway creates a gateway. A nil client means no credential is
// configured: every item then gets the default category without a call.
func NewGateway(client AIClient, taxonomy models.Taxonomy, cfg Config, logger logging.Logger) *Gateway {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.ConfidenceThreshold < 0 || cfg.ConfidenceThreshold > 1 {
		cfg.ConfidenceThreshold = def.ConfidenceThreshold
	}
	return &Gateway{
		client:   client,
		taxonomy: taxonomy,
		cfg:      cfg,
		logger:   logging.OrDefault(logger),
	}
}

// Taxonomy returns the taxonomy the gateway classifies into.
func (g *Gateway) Taxonomy() models.Taxonomy {
	return g.taxonomy
}

// DefaultCategory is the fallback label.
func (g *Gateway) DefaultCategory() string {
	if d := g.taxonomy.Default(); d != "" {
		return d
	}
	return models.DefaultCategory
}

// Enabled reports whether a classifier is configured.
func (g *Gateway) Enabled() bool {
	return g.client != nil
}

// Categorize returns one result per item, in item order. categories is the
// closed label set offered to the classifier; empty means the taxonomy names.
func (g *Gateway) Categorize(ctx context.Context, items []models.CategorizationItem, categories []string) []models.CategorizationResult {
	if len(items) == 0 {
		return []models.CategorizationResult{}
	}
	if len(categories) == 0 {
		categories = g.taxonomy.Names()
	}

	if g.client == nil {
		g.logger.Debug("No classifier configured, using default category",
			logging.Field{Key: logging.FieldCount, Value: len(items)})
		return g.fallback(items)
	}

	start := time.Now()
	results, err := g.classify(ctx, items, categories)
	if err != nil {
		g.logger.WithError(err).Warn("Categorization failed, using default category",
			logging.Field{Key: logging.FieldCount, Value: len(items)},
			logging.Field{Key: logging.FieldDuration, Value: time.Since(start).Milliseconds()})
		return g.fallback(items)
	}

	g.logger.Info("Categorized transactions",
		logging.Field{Key: logging.FieldCount, Value: len(items)},
		logging.Field{Key: logging.FieldDuration, Value: time.Since(start).Milliseconds()})
	return results
}

// classify performs the round-trip and reconciles the reply. Errors are
// *parsererror.CategorizationError; a panicking client is reported as a
// transport failure.
func (g *Gateway) classify(ctx context.Context, items []models.CategorizationItem, categories []string) (results []models.CategorizationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			results = nil
			err = &parsererror.CategorizationError{
				Kind: parsererror.CategorizationTransport,
				Err:  fmt.Errorf("classifier panicked: %v", r),
			}
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	prompt := BuildPrompt(items, categories, g.cfg.ConfidenceThreshold, g.DefaultCategory())
	reply, err := g.client.Complete(ctx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &parsererror.CategorizationError{Kind: parsererror.CategorizationTimeout, Err: err}
		}
		return nil, &parsererror.CategorizationError{Kind: parsererror.CategorizationTransport, Err: err}
	}

	byIndex, err := decodeReply(reply)
	if err != nil {
		return nil, &parsererror.CategorizationError{Kind: parsererror.CategorizationMalformedReply, Err: err}
	}

	return g.reconcile(items, categories, byIndex), nil
}

// reconcile maps decoded records back onto items by 1-based index.
func (g *Gateway) reconcile(items []models.CategorizationItem, categories []string, byIndex map[int]replyItem) []models.CategorizationResult {
	allowed := make(map[string]bool, len(categories))
	for _, c := range categories {
		allowed[c] = true
	}
	def := g.DefaultCategory()

	results := make([]models.CategorizationResult, len(items))
	for i, item := range items {
		rec, ok := byIndex[i+1]
		switch {
		case !ok:
			results[i] = models.FallbackResult(item.ID, def)
		case rec.Confidence < g.cfg.ConfidenceThreshold:
			results[i] = models.FallbackResult(item.ID, def)
		case g.cfg.StrictTaxonomy && !allowed[rec.Category]:
			g.logger.Debug("Classifier returned a category outside the taxonomy",
				logging.Field{Key: logging.FieldRowID, Value: item.ID},
				logging.Field{Key: logging.FieldCategory, Value: rec.Category})
			results[i] = models.FallbackResult(item.ID, def)
		default:
			results[i] = models.CategorizationResult{
				ID:         item.ID,
				Category:   rec.Category,
				Confidence: rec.Confidence,
			}
		}
	}
	return results
}

func (g *Gateway) fallback(items []models.CategorizationItem) []models.CategorizationResult {
	def := g.DefaultCategory()
	results := make([]models.CategorizationResult, len(items))
	for i, item := range items {
		results[i] = models.FallbackResult(item.ID, def)
	}
	return results
}

// Assignment is the outcome of AssignCategories.
type Assignment struct {
	// Categories maps every row id of the document to its category.
	Categories map[string]string `json:"categories"`
	// Results holds one result per row, in row order.
	Results []models.CategorizationResult `json:"results"`
}

// AssignCategories classifies the first BatchSize rows of doc by the text in
// descriptionColumn; all later rows get the default category directly.
func (g *Gateway) AssignCategories(ctx context.Context, doc *models.Document, descriptionColumn int) Assignment {
	out := Assignment{Categories: map[string]string{}, Results: []models.CategorizationResult{}}
	if doc == nil || len(doc.Rows) == 0 {
		return out
	}

	n := len(doc.Rows)
	if n > g.cfg.BatchSize {
		n = g.cfg.BatchSize
	}

	items := make([]models.CategorizationItem, n)
	for i := 0; i < n; i++ {
		row := doc.Rows[i]
		items[i] = models.CategorizationItem{
			ID:          row.ID,
			Description: parser.CellText(doc.Cell(row, descriptionColumn)),
		}
	}

	out.Results = append(out.Results, g.Categorize(ctx, items, g.taxonomy.Names())...)
	def := g.DefaultCategory()
	for _, row := range doc.Rows[n:] {
		out.Results = append(out.Results, models.FallbackResult(row.ID, def))
	}
	for _, r := range out.Results {
		out.Categories[r.ID] = r.Category
	}

	g.logger.Debug("Assigned categories",
		logging.Field{Key: logging.FieldRows, Value: len(doc.Rows)},
		logging.Field{Key: logging.FieldCount, Value: n})
	return out
}
