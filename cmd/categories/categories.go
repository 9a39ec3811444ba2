// Package categories lists and exports the category taxonomy
package categories

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Bublikus/groshify-sub000/cmd/root"
	"github.com/Bublikus/groshify-sub000/internal/logging"
	"github.com/Bublikus/groshify-sub000/internal/models"
	"github.com/Bublikus/groshify-sub000/internal/store"

	"github.com/spf13/cobra"
)

// Options selects what Run prints or writes.
type Options struct {
	Show   string
	Export string
}

var opts Options

// Cmd represents the categories command
var Cmd = &cobra.Command{
	Use:   "categories",
	Short: "List the category taxonomy used for classification",
	Long: `Categories prints the loaded taxonomy. Use --show for the details of one
category and --export to write the taxonomy as a YAML file that can be edited
and passed back through categorization.taxonomy_file.

Example:
  groshify categories --show groceries
  groshify categories --export categories.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return Run(c.GetTaxonomy(), opts, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVar(&opts.Show, "show", "", "Print the details of one category")
	Cmd.Flags().StringVar(&opts.Export, "export", "", "Write the taxonomy to this YAML file")
}

// Run prints the taxonomy, or a single category with --show, and writes the
// export file when requested.
func Run(t models.Taxonomy, o Options, w io.Writer) error {
	if o.Show != "" {
		def, ok := t.Lookup(o.Show)
		if !ok {
			return fmt.Errorf("unknown category %q", o.Show)
		}
		printDefinition(w, def, def.Name == t.Default())
	} else if err := printTable(w, t); err != nil {
		return err
	}

	if o.Export != "" {
		if err := store.SaveTaxonomy(o.Export, t); err != nil {
			return err
		}
		root.Log.Info("Taxonomy exported", logging.Field{Key: logging.FieldFile, Value: o.Export})
	}
	return nil
}

func printTable(w io.Writer, t models.Taxonomy) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDESCRIPTION")
	for _, def := range t.Categories() {
		name := def.Name
		if name == t.Default() {
			name += " (default)"
		}
		fmt.Fprintf(tw, "%s\t%s\n", name, def.Description)
	}
	return tw.Flush()
}

func printDefinition(w io.Writer, def models.CategoryDefinition, isDefault bool) {
	fmt.Fprintf(w, "Name:          %s\n", def.Name)
	fmt.Fprintf(w, "Description:   %s\n", def.Description)
	if def.Icon != "" {
		fmt.Fprintf(w, "Icon:          %s\n", def.Icon)
	}
	if def.Color != "" {
		fmt.Fprintf(w, "Color:         %s\n", def.Color)
	}
	if len(def.Subcategories) > 0 {
		fmt.Fprintf(w, "Subcategories: %s\n", strings.Join(def.Subcategories, ", "))
	}
	if isDefault {
		fmt.Fprintln(w, "Default:       yes")
	}
}
