package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Bublikus/groshify-sub000/internal/currencyutils"
	"github.com/Bublikus/groshify-sub000/internal/logging"
	"github.com/Bublikus/groshify-sub000/internal/models"
	"github.com/Bublikus/groshify-sub000/internal/parser"
	"github.com/Bublikus/groshify-sub000/internal/parsererror"
	"github.com/Bublikus/groshify-sub000/internal/pipeline"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// MsgCategorizationFailed is the body of every 502 from /api/categorize.
const MsgCategorizationFailed = "categorization failed"

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// CategorizeRequest is the body of POST /api/categorize.
type CategorizeRequest struct {
	Transactions []models.CategorizationItem `json:"transactions"`
	Categories   []string                    `json:"categories"`
}

// Bind implements render.Binder.
func (c *CategorizeRequest) Bind(_ *http.Request) error {
	if c.Transactions == nil {
		return errors.New("transactions is required")
	}
	for i, t := range c.Transactions {
		if strings.TrimSpace(t.ID) == "" {
			return fmt.Errorf("transactions[%d].id is required", i)
		}
	}
	return nil
}

// CategorizedTransaction is one entry of a CategorizeResponse.
type CategorizedTransaction struct {
	ID       string `json:"id"`
	Category string `json:"category"`
}

// CategorizeResponse is the body returned by POST /api/categorize.
type CategorizeResponse struct {
	CategorizedTransactions []CategorizedTransaction `json:"categorizedTransactions"`
}

// MonthSummary is one month bucket without its rows.
type MonthSummary struct {
	Key       string                      `json:"key"`
	Label     string                      `json:"label"`
	RowCount  int                         `json:"rowCount"`
	Sums      models.Sums                 `json:"sums"`
	Formatted currencyutils.FormattedSums `json:"formatted"`
}

// AnalysisResponse is the body returned by POST /api/documents.
type AnalysisResponse struct {
	ID                string                        `json:"id"`
	FileName          string                        `json:"fileName"`
	Headers           []string                      `json:"headers"`
	Preview           models.Preview                `json:"preview"`
	Months            []MonthSummary                `json:"months"`
	Overall           models.Sums                   `json:"overall"`
	OverallFormatted  currencyutils.FormattedSums   `json:"overallFormatted"`
	UndatedRows       int                           `json:"undatedRows"`
	CategorySummaries []models.CategorySummary      `json:"categorySummaries"`
	Categories        map[string]string             `json:"categories"`
	Results           []models.CategorizationResult `json:"results"`
	Selection         *pipeline.Selection           `json:"selection,omitempty"`
}

// FormatsResponse lists the accepted file extensions.
type FormatsResponse struct {
	Extensions []string `json:"extensions"`
	Parsers    []string `json:"parsers"`
}

// Categorize handles POST /api/categorize. The gateway absorbs classifier
// failures itself; anything that still escapes becomes a 502.
func (s *Server) Categorize(w http.ResponseWriter, r *http.Request) {
	log := s.logger.WithField("request_id", middleware.GetReqID(r.Context()))

	var req CategorizeRequest
	if err := render.Bind(r, &req); err != nil {
		log.WithError(err).Debug("Rejected categorize request")
		s.fail(w, r, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("Categorization panicked", logging.Field{Key: logging.FieldError, Value: fmt.Sprint(rec)})
			s.fail(w, r, http.StatusBadGateway, ErrorResponse{Error: MsgCategorizationFailed})
		}
	}()

	results := s.gateway.Categorize(r.Context(), req.Transactions, req.Categories)

	resp := CategorizeResponse{CategorizedTransactions: make([]CategorizedTransaction, len(results))}
	for i, res := range results {
		resp.CategorizedTransactions[i] = CategorizedTransaction{ID: res.ID, Category: res.Category}
	}
	render.JSON(w, r, resp)
}

// AnalyzeDocument handles POST /api/documents with a multipart "file" field.
// Optional query parameters: sheet (0-based index) and month (label, key or
// "all") to include a selection.
func (s *Server) AnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	log := s.logger.WithField("request_id", middleware.GetReqID(r.Context()))

	opts := s.parseOptions
	if sheet := r.URL.Query().Get("sheet"); sheet != "" {
		n, err := strconv.Atoi(sheet)
		if err != nil || n < 0 {
			s.fail(w, r, http.StatusBadRequest, ErrorResponse{Error: "sheet must be a non-negative integer"})
			return
		}
		opts.SheetIndex = n
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadBytes)
	upload, header, err := r.FormFile("file")
	if err != nil {
		log.WithError(err).Debug("Rejected upload")
		s.fail(w, r, http.StatusBadRequest, ErrorResponse{Error: "multipart field 'file' is required"})
		return
	}
	defer func() { _ = upload.Close() }()

	analysis, err := s.analyzer.Analyze(r.Context(), parser.File{Name: header.Filename, Reader: upload}, opts)
	if err != nil {
		s.fail(w, r, http.StatusUnprocessableEntity, ErrorResponse{
			Error: err.Error(),
			Kind:  string(parsererror.KindOf(err)),
		})
		return
	}

	resp := s.analysisResponse(analysis)
	if month := r.URL.Query().Get("month"); month != "" {
		sel := analysis.Select(month)
		resp.Selection = &sel
	}
	render.JSON(w, r, resp)
}

func (s *Server) analysisResponse(a *pipeline.Analysis) AnalysisResponse {
	months := make([]MonthSummary, len(a.Months))
	for i, m := range a.Months {
		months[i] = MonthSummary{
			Key:       m.Key,
			Label:     m.Label,
			RowCount:  len(m.Rows),
			Sums:      m.Sums,
			Formatted: currencyutils.FormatSums(m.Sums, s.formatOptions),
		}
	}
	return AnalysisResponse{
		ID:                a.ID,
		FileName:          a.FileName,
		Headers:           a.Document.Headers,
		Preview:           a.Document.Preview,
		Months:            months,
		Overall:           a.Overall,
		OverallFormatted:  currencyutils.FormatSums(a.Overall, s.formatOptions),
		UndatedRows:       a.Undated,
		CategorySummaries: a.CategorySummaries,
		Categories:        a.Categories,
		Results:           a.Results,
	}
}

// ListCategories handles GET /api/categories.
func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"categories":      s.gateway.Taxonomy().Categories(),
		"defaultCategory": s.gateway.DefaultCategory(),
	})
}

// ListFormats handles GET /api/formats.
func (s *Server) ListFormats(w http.ResponseWriter, r *http.Request) {
	registry := s.analyzer.Registry()
	resp := FormatsResponse{Extensions: registry.SupportedExtensions()}
	for _, p := range registry.Parsers() {
		resp.Parsers = append(resp.Parsers, p.Name())
	}
	render.JSON(w, r, resp)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, body ErrorResponse) {
	render.Status(r, status)
	render.JSON(w, r, body)
}
