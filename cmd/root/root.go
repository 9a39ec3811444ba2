// Package root contains the root command for the application
package root

import (
	"fmt"

	"github.com/Bublikus/groshify-sub000/internal/config"
	"github.com/Bublikus/groshify-sub000/internal/container"
	"github.com/Bublikus/groshify-sub000/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input      string
	Output     string
	ConfigFile string
	LogLevel   string
}

var (
	// Log is the shared logger instance for commands
	Log = logging.Default()

	// AppContainer is wired by PersistentPreRunE before any subcommand runs.
	AppContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "groshify",
		Short: "Analyze bank and card statement exports by month and category.",
		Long: `groshify reads CSV and Excel statement exports, groups transactions by
calendar month, categorizes them with an AI classifier and reports signed
totals per month and per category.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to groshify!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return Initialize()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if AppContainer == nil {
				return
			}
			if err := AppContainer.Close(); err != nil {
				Log.WithError(err).Warn("Failed to close container")
			}
		},
	}

	// SharedFlags are accessible to all commands
	SharedFlags = CommonFlags{}
)

// Init registers the persistent flags on the root command.
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file or directory")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file or directory")
	Cmd.PersistentFlags().StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default searches $HOME/.groshify, .groshify and .)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Override log.level")
}

// Initialize loads .env and the configuration, then wires AppContainer.
func Initialize() error {
	config.LoadEnv()

	cfg, err := config.InitializeConfigFromFile(SharedFlags.ConfigFile)
	if err != nil {
		return err
	}
	if SharedFlags.LogLevel != "" {
		cfg.Log.Level = SharedFlags.LogLevel
	}

	Log = config.NewLogger(cfg)
	AppContainer, err = container.NewContainerWithLogger(cfg, Log)
	if err != nil {
		return err
	}
	return nil
}

// GetContainer returns the wired container or an error when the command ran
// without the root pre-run hook.
func GetContainer() (*container.Container, error) {
	if AppContainer == nil {
		return nil, fmt.Errorf("application container is not initialized")
	}
	return AppContainer, nil
}
