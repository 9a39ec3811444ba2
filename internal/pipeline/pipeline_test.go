package pipeline

import (
	"context"
	"testing"

	"github.com/Bublikus/groshify-sub000/internal/aggregation"
	"github.com/Bublikus/groshify-sub000/internal/categorizer"
	"github.com/Bublikus/groshify-sub000/internal/csvparser"
	"github.com/Bublikus/groshify-sub000/internal/logging"
	"github.com/Bublikus/groshify-sub000/internal/models"
	"github.com/Bublikus/groshify-sub000/internal/parser"
	"github.com/Bublikus/groshify-sub000/internal/parsererror"
	"github.com/Bublikus/groshify-sub000/internal/xlsxparser"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statement = "Date,Desc,Amount\n" +
	"01.01.2024 10:00:00,Coffee,-5\n" +
	"02.01.2024 12:00:00,Groceries,-20\n" +
	"01.02.2024 09:00:00,Salary,1000\n" +
	",Bad,abc"

func newAnalyzer(client categorizer.AIClient) *Analyzer {
	logger := logging.NewMockLogger()
	registry := parser.NewRegistry(logger, csvparser.New(logger), xlsxparser.New(logger))
	agg := aggregation.New(aggregation.DefaultColumns(), "en", logger)
	gw := categorizer.NewGateway(client, models.DefaultTaxonomy(), categorizer.DefaultConfig(), logger)
	return NewAnalyzer(registry, agg, gw, logger)
}

func TestAnalyze(t *testing.T) {
	client := categorizer.AIClientFunc(func(ctx context.Context, prompt string) (string, error) {
		return `[{"index":1,"category":"restaurants","confidence":0.9},
			{"index":2,"category":"groceries","confidence":0.95},
			{"index":3,"category":"income","confidence":0.99},
			{"index":4,"category":"shopping","confidence":0.1}]`, nil
	})

	a, err := newAnalyzer(client).Analyze(context.Background(), parser.NewFile("jan.csv", []byte(statement)), parser.DefaultOptions())
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "jan.csv", a.FileName)
	assert.Equal(t, []string{"January 2024", "February 2024"}, a.MonthLabels())
	assert.Equal(t, 1, a.Undated)
	assert.True(t, decimal.NewFromInt(975).Equal(a.Overall.NetSum))

	assert.Equal(t, map[string]string{
		"row-1": "restaurants",
		"row-2": "groceries",
		"row-3": "income",
		"row-4": models.DefaultCategory,
	}, a.Categories)

	require.Len(t, a.CategorySummaries, 4)
	assert.Equal(t, "income", a.CategorySummaries[0].Category)

	jan := a.Select("January 2024")
	assert.Len(t, jan.Rows, 2)
	assert.True(t, decimal.NewFromInt(-25).Equal(jan.Sums.NetSum))
	require.Len(t, jan.CategorySummaries, 2)
	assert.Equal(t, "groceries", jan.CategorySummaries[0].Category)

	all := a.Select(models.AllMonths)
	assert.Len(t, all.Rows, 4)
	assert.Equal(t, a.Overall, all.Sums)

	none := a.Select("December 1999")
	assert.Empty(t, none.Rows)
	assert.Equal(t, models.Sums{}, none.Sums)
	assert.Empty(t, none.CategorySummaries)
}

func TestAnalyze_WithoutClassifier(t *testing.T) {
	a, err := newAnalyzer(nil).Analyze(context.Background(), parser.NewFile("jan.csv", []byte(statement)), parser.DefaultOptions())
	require.NoError(t, err)

	for _, r := range a.Results {
		assert.Equal(t, models.DefaultCategory, r.Category)
	}
	require.Len(t, a.CategorySummaries, 1)
	assert.Equal(t, 4, a.CategorySummaries[0].Count)
}

func TestAnalyze_ParseErrorsPropagate(t *testing.T) {
	_, err := newAnalyzer(nil).Analyze(context.Background(), parser.NewFile("notes.pdf", []byte("x")), parser.DefaultOptions())
	require.Error(t, err)
	assert.True(t, parsererror.IsUnsupportedFormat(err))

	_, err = newAnalyzer(nil).Analyze(context.Background(), parser.NewFile("empty.csv", []byte("Date\n")), parser.DefaultOptions())
	require.Error(t, err)
	assert.True(t, parsererror.IsMalformedInput(err))
}
