// Package batch handles batch processing of files
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Bublikus/groshify-sub000/cmd/analyze"
	"github.com/Bublikus/groshify-sub000/cmd/root"
	"github.com/Bublikus/groshify-sub000/internal/common"
	"github.com/Bublikus/groshify-sub000/internal/container"
	"github.com/Bublikus/groshify-sub000/internal/logging"
	"github.com/Bublikus/groshify-sub000/internal/parser"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the number of files analyzed concurrently.
const DefaultWorkers = 4

var workers int

// Cmd represents the batch command
var Cmd = &cobra.Command{
	Use:   "batch",
	Short: "Batch analyze files from a directory",
	Long: `Batch analyzes every supported file in the input directory and writes one
summary CSV per file to the output directory. Files that fail to parse are
reported and skipped.

Example:
  groshify batch -i statements/ -o summaries/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		res, err := Run(cmd.Context(), c, root.SharedFlags.Input, root.SharedFlags.Output, workers)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Processed %d file(s), %d failed, %d skipped\n",
			len(res.Written), len(res.Failed), len(res.Skipped))
		return nil
	},
}

func init() {
	Cmd.Flags().IntVarP(&workers, "workers", "w", DefaultWorkers, "Files analyzed concurrently")
}

// Result lists what happened to each input file, by base name.
type Result struct {
	Written []string
	Failed  map[string]error
	Skipped []string
}

// SummaryName is the output file name for input.
func SummaryName(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".summary.csv"
}

// Run analyzes every file in inputDir the registry accepts and writes the
// summaries into outputDir. Per-file parse failures are collected in the
// result; only I/O problems with the directories abort the run.
func Run(ctx context.Context, c *container.Container, inputDir, outputDir string, limit int) (*Result, error) {
	if inputDir == "" || outputDir == "" {
		return nil, fmt.Errorf("input and output directories must be specified")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if limit <= 0 {
		limit = DefaultWorkers
	}
	logger := c.GetLogger()

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	res := &Result{Failed: map[string]error{}}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	registry := c.GetRegistry()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !registry.CanParse(parser.File{Name: name}) {
			res.Skipped = append(res.Skipped, name)
			continue
		}

		g.Go(func() error {
			err := processFile(ctx, c, filepath.Join(inputDir, name), filepath.Join(outputDir, SummaryName(name)))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.WithError(err).Warn("Failed to process file", logging.Field{Key: logging.FieldFile, Value: name})
				res.Failed[name] = err
				return nil
			}
			res.Written = append(res.Written, name)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(res.Written)
	sort.Strings(res.Skipped)

	logger.Info("Batch completed",
		logging.Field{Key: logging.FieldCount, Value: len(res.Written)},
		logging.Field{Key: "failed", Value: len(res.Failed)},
		logging.Field{Key: "skipped", Value: len(res.Skipped)})
	return res, nil
}

func processFile(ctx context.Context, c *container.Container, input, output string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file, err := parser.OpenFile(input)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	cfg := c.GetConfig()
	analysis, err := c.GetAnalyzer().Analyze(ctx, file, cfg.ParserOptions())
	if err != nil {
		return err
	}

	records := common.BuildSummaryRecords(analyze.SummaryOf(analysis), cfg.Format.Decimals)
	return common.NewSummaryWriter(c.GetLogger()).WriteFile(output, records)
}
