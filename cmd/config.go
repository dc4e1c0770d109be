package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/csv-gratuity-report/internal/cli"
	"github.com/ginjaninja78/csv-gratuity-report/internal/config"
)

// forceWrite overwrites an existing config file.
var forceWrite bool

// configCmd groups configuration subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

// configInitCmd writes the default configuration.
var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration as YAML",
	Long: `Write the built-in defaults to a YAML file (config.yaml unless a path is
given) as a starting point for customization. Values can also be overridden
with GRATUITY_* environment variables, e.g. GRATUITY_POLICIES_CELL=strict.`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{annotationSkipConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if len(args) == 1 {
			path = args[0]
		}

		if err := config.Write(config.Default(), path, forceWrite); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Wrote "+path))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().BoolVar(&forceWrite, "force", false, "Overwrite an existing file")
}
