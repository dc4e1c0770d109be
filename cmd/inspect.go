package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/csv-gratuity-report/internal/cli"
	"github.com/ginjaninja78/csv-gratuity-report/internal/report"
)

// inspectCmd prints the summary rows of an existing report.
var inspectCmd = &cobra.Command{
	Use:   "inspect <report.xlsx>",
	Short: "Show the totals of a produced report",
	Long: `Open a report written by 'process' and print its Grand Total, gratuity and
Final Total as stored in the workbook.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := report.ReadSummary(args[0])
		if err != nil {
			return err
		}

		lines := []string{
			cli.FormatLine("Report", summary.Path),
			cli.FormatLine("Data rows", fmt.Sprintf("%d", summary.DataRows)),
			"",
			cli.FormatLine(report.GrandTotalLabel, cli.FormatCurrency(summary.Subtotal)),
			cli.FormatLine(report.GratuityLabel(summary.Percentage), cli.FormatCurrency(summary.GratuityAmount)),
			cli.FormatLine(report.FinalTotalLabel, cli.FormatCurrency(summary.FinalTotal)),
		}

		fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(report.SheetName, strings.Join(lines, "\n")))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
