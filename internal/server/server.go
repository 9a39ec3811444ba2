// Package server exposes the analysis pipeline and the categorization
// gateway over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Bublikus/groshify-sub000/internal/categorizer"
	"github.com/Bublikus/groshify-sub000/internal/currencyutils"
	"github.com/Bublikus/groshify-sub000/internal/logging"
	"github.com/Bublikus/groshify-sub000/internal/parser"
	"github.com/Bublikus/groshify-sub000/internal/pipeline"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// DefaultMaxUploadBytes bounds multipart uploads.
const DefaultMaxUploadBytes = 32 << 20

const shutdownTimeout = 10 * time.Second

// Server holds the HTTP handlers' dependencies.
type Server struct {
	analyzer       *pipeline.Analyzer
	gateway        *categorizer.Gateway
	parseOptions   parser.Options
	formatOptions  currencyutils.FormatOptions
	MaxUploadBytes int64
	logger         logging.Logger
}

// New creates a Server.
func New(analyzer *pipeline.Analyzer, gateway *categorizer.Gateway, parseOptions parser.Options, formatOptions currencyutils.FormatOptions, logger logging.Logger) *Server {
	return &Server{
		analyzer:       analyzer,
		gateway:        gateway,
		parseOptions:   parseOptions,
		formatOptions:  formatOptions,
		MaxUploadBytes: DefaultMaxUploadBytes,
		logger:         logging.OrDefault(logger),
	}
}

// Routes returns the router with every API route mounted under /api.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Post("/categorize", s.Categorize)
		r.Post("/documents", s.AnalyzeDocument)
		r.Get("/categories", s.ListCategories)
		r.Get("/formats", s.ListFormats)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", logging.Field{Key: "address", Value: addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	}
}
