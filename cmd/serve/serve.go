// Package serve implements the serve command
package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Bublikus/groshify-sub000/cmd/root"
	"github.com/Bublikus/groshify-sub000/internal/container"
	"github.com/Bublikus/groshify-sub000/internal/server"

	"github.com/spf13/cobra"
)

var addr string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis and categorization HTTP API",
	Long: `Serve starts the HTTP API:

  POST /api/documents   analyze an uploaded statement (multipart field "file")
  POST /api/categorize  categorize transaction descriptions
  GET  /api/categories  list the category taxonomy
  GET  /api/formats     list the accepted file extensions`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return Run(ctx, c, addr)
	},
}

func init() {
	Cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default server.address)")
}

// NewServer builds the HTTP server from the container.
func NewServer(c *container.Container) *server.Server {
	cfg := c.GetConfig()
	return server.New(c.GetAnalyzer(), c.GetGateway(), cfg.ParserOptions(), cfg.FormatOptions(), c.GetLogger())
}

// Run serves until ctx is cancelled. An empty listen address uses the
// configured one.
func Run(ctx context.Context, c *container.Container, listen string) error {
	if listen == "" {
		listen = c.GetConfig().Server.Address
	}
	return NewServer(c).ListenAndServe(ctx, listen)
}
