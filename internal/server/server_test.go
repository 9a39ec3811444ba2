package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Bublikus/groshify-sub000/internal/aggregation"
	"github.com/Bublikus/groshify-sub000/internal/categorizer"
	"github.com/Bublikus/groshify-sub000/internal/csvparser"
	"github.com/Bublikus/groshify-sub000/internal/currencyutils"
	"github.com/Bublikus/groshify-sub000/internal/logging"
	"github.com/Bublikus/groshify-sub000/internal/models"
	"github.com/Bublikus/groshify-sub000/internal/parser"
	"github.com/Bublikus/groshify-sub000/internal/parsererror"
	"github.com/Bublikus/groshify-sub000/internal/pipeline"
	"github.com/Bublikus/groshify-sub000/internal/xlsxparser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statement = "Date,Desc,Amount\n" +
	"01.01.2024 10:00:00,Coffee,-5\n" +
	"02.01.2024 12:00:00,Groceries,-20\n" +
	"01.02.2024 09:00:00,Salary,1000\n"

func newTestServer(client categorizer.AIClient) *Server {
	logger := logging.NewMockLogger()
	registry := parser.NewRegistry(logger, csvparser.New(logger), xlsxparser.New(logger))
	agg := aggregation.New(aggregation.DefaultColumns(), "en", logger)
	gw := categorizer.NewGateway(client, models.DefaultTaxonomy(), categorizer.DefaultConfig(), logger)
	opts := currencyutils.DefaultFormatOptions()
	opts.CurrencySymbol = "$"
	return New(pipeline.NewAnalyzer(registry, agg, gw, logger), gw, parser.DefaultOptions(), opts, logger)
}

func staticClient(reply string) categorizer.AIClient {
	return categorizer.AIClientFunc(func(ctx context.Context, prompt string) (string, error) {
		return reply, nil
	})
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func uploadRequest(t *testing.T, target, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestCategorize(t *testing.T) {
	s := newTestServer(staticClient(`[{"index":1,"category":"groceries","confidence":0.93},
		{"index":2,"category":"transport","confidence":0.4}]`))

	body := `{"transactions":[{"id":"a","description":"ATB Market"},{"id":"b","description":"Uber"}],
		"categories":["groceries","transport","other"]}`
	rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/categorize", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CategorizeResponse
	decode(t, rec, &resp)
	assert.Equal(t, []CategorizedTransaction{
		{ID: "a", Category: "groceries"},
		{ID: "b", Category: "other"},
	}, resp.CategorizedTransactions)
}

func TestCategorize_NoClientFallsBack(t *testing.T) {
	s := newTestServer(nil)

	body := `{"transactions":[{"id":"a","description":"ATB Market"}]}`
	rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/categorize", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CategorizeResponse
	decode(t, rec, &resp)
	assert.Equal(t, []CategorizedTransaction{{ID: "a", Category: models.DefaultCategory}}, resp.CategorizedTransactions)
}

func TestCategorize_TransportErrorFallsBack(t *testing.T) {
	s := newTestServer(categorizer.AIClientFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("connection refused")
	}))

	body := `{"transactions":[{"id":"a","description":"x"}],"categories":["groceries"]}`
	rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/categorize", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"category":"other"`)
}

func TestCategorize_EmptyTransactions(t *testing.T) {
	s := newTestServer(nil)
	rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/categorize", strings.NewReader(`{"transactions":[]}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CategorizeResponse
	decode(t, rec, &resp)
	assert.Empty(t, resp.CategorizedTransactions)
}

func TestCategorize_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"transactions":`},
		{"missing transactions", `{"categories":["a"]}`},
		{"missing id", `{"transactions":[{"description":"x"}]}`},
	}
	s := newTestServer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/categorize", strings.NewReader(tt.body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			decode(t, rec, &resp)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func panickingClient() categorizer.AIClient {
	return categorizer.AIClientFunc(func(ctx context.Context, prompt string) (string, error) {
		panic("client exploded")
	})
}

func TestCategorize_PanickingClientDegrades(t *testing.T) {
	s := newTestServer(panickingClient())

	body := `{"transactions":[{"id":"a","description":"x"}]}`
	rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/categorize", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CategorizeResponse
	decode(t, rec, &resp)
	require.Len(t, resp.CategorizedTransactions, 1)
	assert.Equal(t, models.DefaultCategory, resp.CategorizedTransactions[0].Category)
}

func TestCategorize_EscapedPanicBecomesBadGateway(t *testing.T) {
	s := newTestServer(nil)
	s.gateway = nil

	body := `{"transactions":[{"id":"a","description":"x"}]}`
	rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/categorize", strings.NewReader(body)))
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp ErrorResponse
	decode(t, rec, &resp)
	assert.Equal(t, MsgCategorizationFailed, resp.Error)
}

func TestAnalyzeDocument_PanickingClientDegrades(t *testing.T) {
	s := newTestServer(panickingClient())

	rec := do(t, s, uploadRequest(t, "/api/documents", "jan.csv", statement))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp AnalysisResponse
	decode(t, rec, &resp)
	require.Len(t, resp.Categories, 3)
	for _, category := range resp.Categories {
		assert.Equal(t, models.DefaultCategory, category)
	}
}

func TestAnalyzeDocument(t *testing.T) {
	s := newTestServer(staticClient(`[{"index":3,"category":"income","confidence":0.99}]`))

	rec := do(t, s, uploadRequest(t, "/api/documents?month=January%202024", "jan.csv", statement))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"overall":{"positiveSum":1000,"negativeSum":-25,"netSum":975}`)

	var resp struct {
		ID      string   `json:"id"`
		Headers []string `json:"headers"`
		Months  []struct {
			Key       string                      `json:"key"`
			Label     string                      `json:"label"`
			RowCount  int                         `json:"rowCount"`
			Formatted currencyutils.FormattedSums `json:"formatted"`
		} `json:"months"`
		OverallFormatted currencyutils.FormattedSums `json:"overallFormatted"`
		Categories       map[string]string           `json:"categories"`
		Selection        *struct {
			Label string            `json:"label"`
			Rows  []json.RawMessage `json:"rows"`
		} `json:"selection"`
	}
	decode(t, rec, &resp)

	assert.Len(t, resp.ID, 36)
	assert.Equal(t, []string{"Date", "Desc", "Amount"}, resp.Headers)
	require.Len(t, resp.Months, 2)
	assert.Equal(t, "2024-01", resp.Months[0].Key)
	assert.Equal(t, "January 2024", resp.Months[0].Label)
	assert.Equal(t, 2, resp.Months[0].RowCount)
	assert.Equal(t, "-$25.00", resp.Months[0].Formatted.Net)
	assert.Equal(t, "$1,000.00", resp.OverallFormatted.Positive)
	assert.Equal(t, "income", resp.Categories["row-3"])
	assert.Equal(t, models.DefaultCategory, resp.Categories["row-1"])

	require.NotNil(t, resp.Selection)
	assert.Equal(t, "January 2024", resp.Selection.Label)
	assert.Len(t, resp.Selection.Rows, 2)
}

func TestAnalyzeDocument_ParseErrors(t *testing.T) {
	s := newTestServer(nil)

	t.Run("unsupported extension", func(t *testing.T) {
		rec := do(t, s, uploadRequest(t, "/api/documents", "notes.txt", "hello"))
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var resp ErrorResponse
		decode(t, rec, &resp)
		assert.Equal(t, string(parsererror.KindUnsupportedFormat), resp.Kind)
		assert.Contains(t, resp.Error, parsererror.MsgNoParser)
	})

	t.Run("header only", func(t *testing.T) {
		rec := do(t, s, uploadRequest(t, "/api/documents", "empty.csv", "Date,Desc,Amount\n"))
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var resp ErrorResponse
		decode(t, rec, &resp)
		assert.Equal(t, string(parsererror.KindMalformedInput), resp.Kind)
		assert.Contains(t, resp.Error, parsererror.MsgNoDataRows)
	})
}

func TestAnalyzeDocument_BadRequest(t *testing.T) {
	s := newTestServer(nil)

	rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/documents", strings.NewReader("no form")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, uploadRequest(t, "/api/documents?sheet=-1", "jan.csv", statement))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListCategories(t *testing.T) {
	s := newTestServer(nil)
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Categories      []models.CategoryDefinition `json:"categories"`
		DefaultCategory string                      `json:"defaultCategory"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, models.DefaultTaxonomy().Names()[0], resp.Categories[0].Name)
	assert.Equal(t, models.DefaultCategory, resp.DefaultCategory)
}

func TestListFormats(t *testing.T) {
	s := newTestServer(nil)
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/formats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var resp FormatsResponse
	decode(t, rec, &resp)
	assert.Equal(t, []string{"csv", "xlsx"}, resp.Parsers)
	assert.Contains(t, resp.Extensions, ".csv")
	assert.Contains(t, resp.Extensions, ".xlsx")
	assert.Contains(t, resp.Extensions, ".xls")
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	s := newTestServer(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.ListenAndServe(ctx, "127.0.0.1:0"))
}
