// Package analyze implements the analyze command
package analyze

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Bublikus/groshify-sub000/cmd/root"
	"github.com/Bublikus/groshify-sub000/internal/common"
	"github.com/Bublikus/groshify-sub000/internal/container"
	"github.com/Bublikus/groshify-sub000/internal/currencyutils"
	"github.com/Bublikus/groshify-sub000/internal/models"
	"github.com/Bublikus/groshify-sub000/internal/parser"
	"github.com/Bublikus/groshify-sub000/internal/pipeline"

	"github.com/spf13/cobra"
)

// Options are the analyze command's inputs.
type Options struct {
	Input  string
	Month  string
	Sheet  int
	Output string
}

var flags Options

// Cmd represents the analyze command
var Cmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one statement export",
	Long: `Analyze parses a CSV or Excel statement, groups its transactions by month,
categorizes them and prints the totals per month and per category.

Example:
  groshify analyze -i statement.xlsx --month "January 2024" -o summary.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		opts := flags
		opts.Input = root.SharedFlags.Input
		opts.Output = root.SharedFlags.Output
		return Run(cmd.Context(), c, opts, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVar(&flags.Month, "month", models.AllMonths, `Month label, "YYYY-MM" key or "all"`)
	Cmd.Flags().IntVar(&flags.Sheet, "sheet", -1, "Workbook sheet index (default from config)")
}

// Run analyzes opts.Input, prints a report to w and, when opts.Output is
// set, writes the summary CSV there.
func Run(ctx context.Context, c *container.Container, opts Options, w io.Writer) error {
	if opts.Input == "" {
		return fmt.Errorf("input file must be specified with --input")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	file, err := parser.OpenFile(opts.Input)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	cfg := c.GetConfig()
	parseOpts := cfg.ParserOptions()
	if opts.Sheet >= 0 {
		parseOpts.SheetIndex = opts.Sheet
	}

	analysis, err := c.GetAnalyzer().Analyze(ctx, file, parseOpts)
	if err != nil {
		return err
	}

	month := opts.Month
	if month == "" {
		month = models.AllMonths
	}
	if err := PrintReport(w, analysis, analysis.Select(month), cfg.FormatOptions()); err != nil {
		return err
	}

	if opts.Output == "" {
		return nil
	}
	records := common.BuildSummaryRecords(SummaryOf(analysis), cfg.Format.Decimals)
	if err := common.NewSummaryWriter(c.GetLogger()).WriteFile(opts.Output, records); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// SummaryOf converts an analysis to the CSV export input.
func SummaryOf(a *pipeline.Analysis) common.Summary {
	return common.Summary{
		Months:     a.Months,
		Overall:    a.Overall,
		TotalRows:  len(a.Document.Rows),
		Categories: a.CategorySummaries,
	}
}

// PrintReport writes the month table and the selection's category table.
func PrintReport(w io.Writer, a *pipeline.Analysis, sel pipeline.Selection, fo currencyutils.FormatOptions) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "File:\t%s\n", a.FileName)
	fmt.Fprintf(tw, "Rows:\t%d (%d undated)\n\n", len(a.Document.Rows), a.Undated)

	fmt.Fprintln(tw, "MONTH\tROWS\tINCOME\tEXPENSES\tNET")
	for _, m := range a.Months {
		f := currencyutils.FormatSums(m.Sums, fo)
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", m.Label, len(m.Rows), f.Positive, f.Negative, f.Net)
	}
	total := currencyutils.FormatSums(a.Overall, fo)
	fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n\n", "Total", len(a.Document.Rows), total.Positive, total.Negative, total.Net)

	fmt.Fprintf(tw, "Selection:\t%s (%d rows, net %s)\n\n", sel.Label, len(sel.Rows), currencyutils.FormatCurrency(sel.Sums.NetSum, fo))
	fmt.Fprintln(tw, "CATEGORY\tROWS\tTOTAL")
	for _, cs := range sel.CategorySummaries {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", cs.Category, cs.Count, currencyutils.FormatCurrency(cs.Total, fo))
	}
	return tw.Flush()
}
