// Package cmd defines and implements the CLI commands for the bulletin-crawler executable.
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/bulletin-crawler/internal/app"
	"github.com/JakeFAU/bulletin-crawler/internal/config"
	"github.com/JakeFAU/bulletin-crawler/internal/logging"
	"github.com/JakeFAU/bulletin-crawler/internal/worker"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application interface that commands will use.
type App interface {
	Close()
	GetLogger() *zap.Logger
	Acquirer() (*worker.Acquirer, error)
	Processor() (*worker.Processor, error)
}

// newApp is the application factory. It is a variable so tests can inject
// options such as a fake fetcher or clock.
var newApp = func(ctx context.Context, cfg config.Config, logger *zap.Logger) (App, error) {
	return app.New(ctx, cfg, logger)
}

type rootOptions struct {
	configFile       string
	dsn              string
	database         string
	inputCollection  string
	outputCollection string
	driver           string
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "bulletin-crawler",
		Short: "Acquires daily assessment bulletins and derives clean narrative text.",
		Long: `bulletin-crawler walks a date range, guesses the address of each day's
published assessment from a fixed set of naming templates, stores the first page
that answers, and later derives cleaned narrative text from every stored page.`,
		SilenceUsage: true,

		// Runs after argument validation and before the subcommand's RunE, so an
		// invalid date range is rejected before any store is opened.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			logger, err := logging.New(logging.Config{
				Development: cfg.Logging.Development,
				Level:       cfg.Logging.Level,
			})
			if err != nil {
				return fmt.Errorf("logger init failed: %w", err)
			}
			appInstance, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				logger.Error("application services failed to start", zap.Error(err))
				_ = logger.Sync()
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (YAML); env vars use the BULLETIN_ prefix")
	flags.StringVar(&opts.driver, "driver", "", "store driver: postgres, sqlite or memory")
	flags.StringVar(&opts.dsn, "dsn", "", "store connection string (sqlite: database file path)")
	flags.StringVar(&opts.database, "database", "", "database name")
	flags.StringVar(&opts.inputCollection, "input-collection", "", "collection holding raw reports")
	flags.StringVar(&opts.outputCollection, "output-collection", "", "collection holding extracted texts")

	cmd.AddCommand(newRunCmd(), newAcquireCmd(), newExtractCmd(), newCandidatesCmd(opts))
	return cmd
}

// loadConfig reads file and environment settings, then applies explicitly set flags.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	flags := cmd.Flags()
	override := func(name string, dst *string, value string) {
		if flags.Changed(name) {
			*dst = value
		}
	}
	override("driver", &cfg.Store.Driver, opts.driver)
	override("dsn", &cfg.Store.DSN, opts.dsn)
	override("database", &cfg.Store.Database, opts.database)
	override("input-collection", &cfg.Store.InputCollection, opts.inputCollection)
	override("output-collection", &cfg.Store.OutputCollection, opts.outputCollection)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// Execute runs the root command with ctx and returns its error.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}
