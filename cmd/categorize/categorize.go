// Package categorize handles transaction categorization commands
package categorize

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/Bublikus/groshify-sub000/cmd/root"
	"github.com/Bublikus/groshify-sub000/internal/categorizer"
	"github.com/Bublikus/groshify-sub000/internal/models"

	"github.com/spf13/cobra"
)

var (
	descriptions []string
	categories   []string
)

// Cmd represents the categorize command
var Cmd = &cobra.Command{
	Use:   "categorize",
	Short: "Categorize transaction descriptions using the Gemini model",
	Long: `Categorize sends transaction descriptions to the AI classifier and prints the
category chosen for each one. Low-confidence answers fall back to the default category.

Example:
  groshify categorize --description "ATB Market" --description "Uklon ride"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return Run(cmd.Context(), c.GetGateway(), descriptions, categories, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringArrayVarP(&descriptions, "description", "d", nil, "Transaction description (repeatable)")
	Cmd.Flags().StringSliceVarP(&categories, "categories", "c", nil, "Restrict to these categories (default: the taxonomy)")
	_ = Cmd.MarkFlagRequired("description")
}

// Run classifies each description and prints one line per result.
func Run(ctx context.Context, gw *categorizer.Gateway, descs, cats []string, w io.Writer) error {
	if len(descs) == 0 {
		return fmt.Errorf("at least one --description is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	items := make([]models.CategorizationItem, len(descs))
	for i, d := range descs {
		items[i] = models.CategorizationItem{ID: strconv.Itoa(i + 1), Description: d}
	}

	results := gw.Categorize(ctx, items, cats)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DESCRIPTION\tCATEGORY\tCONFIDENCE")
	for i, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\n", descs[i], r.Category, r.Confidence)
	}
	return tw.Flush()
}
