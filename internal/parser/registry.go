package parser

import (
	"sync"

	"github.com/Bublikus/groshify-sub000/internal/logging"
	"github.com/Bublikus/groshify-sub000/internal/models"
	"github.com/Bublikus/groshify-sub000/internal/parsererror"
)

// Registry holds parsers in registration order. The first parser whose
// CanParse accepts a file handles it.
type Registry struct {
	mu      sync.RWMutex
	parsers []Parser
	logger  logging.Logger
}

// NewRegistry returns a registry holding parsers in the given order.
func NewRegistry(logger logging.Logger, parsers ...Parser) *Registry {
	r := &Registry{logger: logging.OrDefault(logger)}
	for _, p := range parsers {
		r.Register(p)
	}
	return r
}

// Register appends p. Nil parsers are ignored.
func (r *Registry) Register(p Parser) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers = append(r.parsers, p)
	r.logger.Debug("Registered parser",
		logging.Field{Key: logging.FieldParser, Value: p.Name()},
		logging.Field{Key: logging.FieldExtension, Value: p.SupportedExtensions()})
}

// Parsers returns the registered parsers in order.
func (r *Registry) Parsers() []Parser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Parser(nil), r.parsers...)
}

// Find returns the first parser accepting file.
func (r *Registry) Find(file File) (Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.parsers {
		if p.CanParse(file) {
			return p, true
		}
	}
	return nil, false
}

// CanParse reports whether any registered parser accepts file.
func (r *Registry) CanParse(file File) bool {
	_, ok := r.Find(file)
	return ok
}

// SupportedExtensions returns the de-duplicated union of every parser's
// extensions, in registration order.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var exts []string
	for _, p := range r.parsers {
		for _, ext := range p.SupportedExtensions() {
			if seen[ext] {
				continue
			}
			seen[ext] = true
			exts = append(exts, ext)
		}
	}
	return exts
}

// Parse delegates to the first parser accepting file. When none does it
// fails with an unsupported-format error listing the known extensions.
func (r *Registry) Parse(file File, opts Options) (*models.Document, error) {
	p, ok := r.Find(file)
	if !ok {
		err := parsererror.Unsupported(file.Name, r.SupportedExtensions())
		r.logger.WithError(err).Warn("No parser accepts file",
			logging.Field{Key: logging.FieldFile, Value: file.Name},
			logging.Field{Key: logging.FieldExtension, Value: file.Ext()})
		return nil, err
	}

	r.logger.Debug("Dispatching file",
		logging.Field{Key: logging.FieldFile, Value: file.Name},
		logging.Field{Key: logging.FieldParser, Value: p.Name()})
	return p.Parse(file, opts)
}
