// =============================================================================
// CSV Gratuity Report - Process Command
// =============================================================================
//
// This file defines the 'process' command, which runs the report pipeline for
// one CSV file or for every CSV file in a directory.
//
// COMMAND USAGE:
//   gratuity process [file] [flags]
//
// FLAGS:
//   --file        : The CSV file to process (same as the positional argument)
//   --output      : Report path (default: <input dir>/<name>_processed.xlsx)
//   --gratuity    : Gratuity percentage; prompts when omitted
//   --open        : Open the report without asking
//   --dry-run     : Compute the totals without writing a report
//   --dir         : Process every *.csv file in a directory
//   --output-dir  : Directory for reports (default: next to each input)
//
// GRATUITY:
//   When --gratuity is given it is validated once and used as is. Otherwise
//   the operator is asked until a valid percentage is entered. In directory
//   mode the same percentage applies to every file.
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/csv-gratuity-report/internal/cli"
	"github.com/ginjaninja78/csv-gratuity-report/internal/pipeline"
	"github.com/ginjaninja78/csv-gratuity-report/internal/report"
	"github.com/ginjaninja78/csv-gratuity-report/internal/validation"
	"github.com/ginjaninja78/csv-gratuity-report/pkg/utils"
)

// openQuestion is asked after a report has been written.
const openQuestion = "File created successfully! Do you want to open it?"

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// filePath is the CSV file to process.
var filePath string

// outputPath is the report destination for a single file.
var outputPath string

// gratuityText is the --gratuity value as typed.
var gratuityText string

// openReport opens the report after writing it.
var openReport bool

// dryRun computes the totals without writing a report.
var dryRun bool

// inputDir enables directory mode.
var inputDir string

// outputDir is where reports go; empty means next to each input.
var outputDir string

// openFile is replaced in tests.
var openFile = cli.OpenFile

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process [file]",
	Short: "Total a CSV file and write the gratuity report",
	Long: `The process command reads a CSV file, finds the first row with a "Total"
column, sums that column below it (cells that are not numbers count as 0),
applies the gratuity percentage and writes an .xlsx report.

The report contains every input row unchanged on the "Processed Data" sheet,
followed by three bold summary rows in columns K and L:
  Grand Total, <pct>% Gratuity, Final Total

An existing report at the destination is replaced.`,

	Args: cobra.MaximumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd, args)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVarP(&filePath, "file", "f", "", "CSV file to process")
	processCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Report path (default <input dir>/<name>_processed.xlsx)")
	processCmd.Flags().StringVarP(&gratuityText, "gratuity", "g", "", "Gratuity percentage, e.g. 18 or 12.5 (prompts when omitted)")
	processCmd.Flags().BoolVar(&openReport, "open", false, "Open the report after writing it")
	processCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute the totals without writing a report")
	processCmd.Flags().StringVar(&inputDir, "dir", "", "Process every .csv file in this directory")
	processCmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for reports (default next to each input)")

	processCmd.MarkFlagsMutuallyExclusive("dir", "file")
	processCmd.MarkFlagsMutuallyExclusive("dir", "output")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess resolves the inputs and the gratuity source and runs the pipeline.
func runProcess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		if filePath != "" {
			return fmt.Errorf("give the CSV file either as an argument or with --file, not both")
		}
		filePath = args[0]
	}
	if inputDir != "" && len(args) == 1 {
		return fmt.Errorf("a file argument cannot be combined with --dir")
	}

	opts, err := pipeline.OptionsFromConfig(appConfig)
	if err != nil {
		return err
	}
	p := pipeline.New(opts, logger)

	prompter := cli.NewPrompter(cmd.InOrStdin(), out)

	var source pipeline.GratuitySource = prompter
	if cmd.Flags().Changed("gratuity") {
		value, err := validation.ParseGratuity(gratuityText)
		if err != nil {
			var vErr *validation.ValidationError
			if errors.As(err, &vErr) {
				return fmt.Errorf("%s (--gratuity %q)", vErr.Message, gratuityText)
			}
			return err
		}
		source = pipeline.FixedGratuity(value)
	}

	if inputDir != "" {
		return processDirectory(ctx, out, p, source)
	}

	return processSingle(ctx, out, p, source, prompter)
}

// processSingle runs one file and offers to open the report.
func processSingle(ctx context.Context, out io.Writer, p *pipeline.Pipeline, source pipeline.GratuitySource, prompter *cli.Prompter) error {
	dest := outputPath
	if dest == "" && outputDir != "" && filePath != "" {
		dest = utils.DefaultOutputPath(filePath, outputDir, appConfig.Output.Suffix)
	}
	if dest != "" && !dryRun {
		if err := utils.EnsureDir(filepath.Dir(dest)); err != nil {
			return err
		}
	}

	result, err := p.Run(ctx, pipeline.Request{
		InputPath:  filePath,
		OutputPath: dest,
		Gratuity:   source,
		DryRun:     dryRun,
	})
	if err != nil {
		return err
	}

	printResult(out, result)

	if dryRun {
		fmt.Fprintln(out, cli.FormatInfo("Dry run: no report was written."))
		return nil
	}

	open := openReport || appConfig.Output.OpenAfterWrite
	if !open {
		open, err = prompter.Confirm(ctx, openQuestion)
		if err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, cli.FormatSuccess("File created successfully!"))
	}

	if open {
		if err := openFile(result.OutputPath); err != nil {
			// The report exists; failing to open it is not a failed run.
			logger.Warn("failed to open report", zap.String("output", result.OutputPath), zap.Error(err))
			fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Could not open %s: %v", result.OutputPath, err)))
		}
	}

	return nil
}

// processDirectory runs every CSV file in inputDir, one after another. A
// failing file does not stop the others.
func processDirectory(ctx context.Context, out io.Writer, p *pipeline.Pipeline, source pipeline.GratuitySource) error {
	files, err := utils.DiscoverInputFiles(inputDir, ".csv")
	if err != nil {
		return err
	}

	if len(files) == 0 {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("No CSV files found in %s.", inputDir)))
		return nil
	}

	// Ask once for the whole batch.
	gratuity, err := source.Gratuity(ctx)
	if err != nil {
		return err
	}
	fixed := pipeline.FixedGratuity(gratuity)

	if outputDir != "" && !dryRun {
		if err := utils.EnsureDir(outputDir); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Processing %d file(s) with %s%% gratuity", len(files), report.FormatPercentage(gratuity))))

	summary := utils.NewProcessingSummary(time.Now())
	for _, file := range files {
		var dest string
		if !dryRun {
			dest = utils.DefaultOutputPath(file, outputDir, appConfig.Output.Suffix)
		}

		result, err := p.Run(ctx, pipeline.Request{
			InputPath:  file,
			OutputPath: dest,
			Gratuity:   fixed,
			DryRun:     dryRun,
		})
		if err != nil {
			var kind string
			var pErr *pipeline.Error
			if errors.As(err, &pErr) {
				kind = string(pErr.Kind)
			}
			summary.AddFailed(utils.FailedFileInfo{InputFile: file, ErrorMessage: describeError(err), ErrorType: kind})
			fmt.Fprintln(out, cli.FormatError(fmt.Sprintf("%s: %s", filepath.Base(file), describeError(err))))
			continue
		}

		summary.AddProcessed(utils.ProcessedFileInfo{
			InputFile:   file,
			OutputFile:  result.OutputPath,
			Rows:        result.Rows,
			FinalTotal:  result.Totals.FinalTotal,
			ProcessTime: result.Duration,
		})

		target := result.OutputPath
		if dryRun {
			target = "dry run"
		}
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%s -> %s (final total %s)",
			filepath.Base(file), target, cli.FormatCurrency(result.Totals.FinalTotal))))
	}
	summary.Finish(time.Now())

	printBatchSummary(out, summary)

	if n := len(summary.FailedFilesList); n > 0 {
		return fmt.Errorf("%d of %d file(s) failed", n, summary.TotalFiles())
	}
	return nil
}

// =============================================================================
// OUTPUT
// =============================================================================

// printResult renders the totals of a single run.
func printResult(out io.Writer, result *pipeline.Result) {
	lines := []string{
		cli.FormatLine("Input", result.InputPath),
	}
	if result.OutputPath != "" {
		lines = append(lines, cli.FormatLine("Report", result.OutputPath))
	}
	lines = append(lines,
		cli.FormatLine("Rows", fmt.Sprintf("%d", result.Rows)),
		cli.FormatLine("Rows summed", fmt.Sprintf("%d of %d", result.Aggregation.Parsed, result.Aggregation.Rows())),
		cli.FormatLine("Total column", fmt.Sprintf("row %d, column %d", result.Header.Row+1, result.Header.Column+1)),
		"",
		cli.FormatLine(report.GrandTotalLabel, cli.FormatCurrency(result.Totals.Subtotal)),
		cli.FormatLine(report.GratuityLabel(result.Gratuity), cli.FormatCurrency(result.Totals.GratuityAmount)),
		cli.FormatLine(report.FinalTotalLabel, cli.FormatCurrency(result.Totals.FinalTotal)),
	)

	fmt.Fprintln(out, cli.RenderBox("Gratuity Report", strings.Join(lines, "\n")))

	for _, w := range result.Warnings {
		fmt.Fprintln(out, cli.FormatWarning("Skipped unparseable record at "+w.String()))
	}
	if n := result.Aggregation.Malformed; n > 0 {
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d Total cell(s) were not numbers and counted as 0", n)))
	}
}

// printBatchSummary renders the outcome of a directory run.
func printBatchSummary(out io.Writer, summary *utils.ProcessingSummary) {
	lines := []string{
		cli.FormatLine("Total files", fmt.Sprintf("%d", summary.TotalFiles())),
		cli.FormatLine("Successful", fmt.Sprintf("%d", len(summary.ProcessedFiles))),
		cli.FormatLine("Failed", fmt.Sprintf("%d", len(summary.FailedFilesList))),
		cli.FormatLine("Time elapsed", summary.Duration().Round(time.Millisecond).String()),
	}
	fmt.Fprintln(out, cli.RenderBox("Processing Complete", strings.Join(lines, "\n")))
}
