// =============================================================================
// CSV Gratuity Report - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (gratuity)
//   ├── processCmd    (gratuity process)
//   ├── inspectCmd    (gratuity inspect)
//   ├── configCmd     (gratuity config)
//   │   └── configInitCmd (gratuity config init)
//   └── versionCmd    (gratuity version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads a .env file from the working directory, if present
//   2. Loads the configuration (file, then GRATUITY_* environment variables)
//   3. Applies --verbose and --log-format
//   4. Builds the logger
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/ginjaninja78/csv-gratuity-report/internal/cli"
	"github.com/ginjaninja78/csv-gratuity-report/internal/config"
	"github.com/ginjaninja78/csv-gratuity-report/internal/pipeline"
	"github.com/ginjaninja78/csv-gratuity-report/pkg/utils"
)

// annotationSkipConfig marks commands that run on the default configuration
// without reading the config file.
const annotationSkipConfig = "skip-config"

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// logFormat overrides logging.format ("console" or "json").
var logFormat string

// appConfig and logger are set up by initApp before a subcommand runs.
var (
	appConfig *config.Config
	logger    = zap.NewNop()
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "gratuity",
	Short: "CSV Gratuity Report - Total a CSV export and add a gratuity",
	Long: `CSV Gratuity Report reads a CSV export, finds the column labelled "Total",
sums it, applies a gratuity percentage and writes a spreadsheet report with the
original rows plus three summary rows (Grand Total, Gratuity, Final Total).

Example Usage:
  gratuity process receipts.csv                   # Ask for the gratuity, write receipts_processed.xlsx
  gratuity process receipts.csv --gratuity 18     # Non-interactive
  gratuity process --dir ./exports --gratuity 15  # Every CSV file in a directory
  gratuity inspect receipts_processed.xlsx        # Show the totals of a report
  gratuity config init                            # Write the default config.yaml`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initApp(cmd)
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		// Sync fails on terminals; nothing useful can be done about it.
		_ = logger.Sync()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(describeError(err)))
		os.Exit(1)
	}
}

// describeError renders an error for the operator. Pipeline errors lead
// with their operator-facing message.
func describeError(err error) string {
	var pErr *pipeline.Error
	if errors.As(err, &pErr) && pErr.Err != nil {
		return fmt.Sprintf("%s\n  %v", pErr.Message, pErr.Err)
	}
	return err.Error()
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)

	rootCmd.PersistentFlags().StringVar(
		&logFormat,
		"log-format",
		"",
		`Log format: "console" or "json" (overrides logging.format)`,
	)
}

// initApp loads the environment and configuration and builds the logger.
func initApp(cmd *cobra.Command) error {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg *config.Config
	if cmd.Annotations[annotationSkipConfig] == "true" {
		cfg = config.Default()
	} else {
		// The default config file is optional; an explicit one is not.
		loaded, err := config.Load(cfgFile, cmd.Flags().Changed("config"))
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if verbose {
		cfg.Logging.Level = "debug"
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	newLogger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logging.Level,
		OutputPath: cfg.Logging.OutputPath,
		Format:     cfg.Logging.Format,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	appConfig = cfg
	logger = newLogger
	logger.Debug("configuration loaded",
		zap.String("config", cfgFile),
		zap.String("cell_policy", cfg.Policies.Cell),
		zap.String("record_policy", cfg.Policies.Record),
	)

	return nil
}
