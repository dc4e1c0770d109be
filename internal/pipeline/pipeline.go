// =============================================================================
// CSV Gratuity Report - Pipeline
// =============================================================================
//
// This module orchestrates a single report run, from CSV parsing to the
// written workbook.
//
// PROCESSING PIPELINE:
//   1. Check the input path                (IDLE -> FILE_SELECTED)
//   2. Parse the CSV file                  (-> PARSED)
//   3. Locate the "Total" column           (-> HEADER_LOCATED)
//   4. Sum the column, collect gratuity    (-> GRATUITY_COLLECTED)
//   5. Write the report                    (-> REPORT_WRITTEN)
//
// Any failure moves the run to ERROR and is returned as a *Error. A dry run
// stops after step 4.
//
// Runs share no state: every call to Run starts from IDLE and recomputes
// everything. Runs are synchronous and start no goroutines.
//
// =============================================================================

package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ginjaninja78/csv-gratuity-report/internal/aggregator"
	"github.com/ginjaninja78/csv-gratuity-report/internal/config"
	"github.com/ginjaninja78/csv-gratuity-report/internal/csvparser"
	"github.com/ginjaninja78/csv-gratuity-report/internal/locator"
	"github.com/ginjaninja78/csv-gratuity-report/internal/report"
	"github.com/ginjaninja78/csv-gratuity-report/internal/types"
	"github.com/ginjaninja78/csv-gratuity-report/internal/validation"
	"github.com/ginjaninja78/csv-gratuity-report/pkg/utils"
)

// Operator-facing messages.
const (
	msgNoFile        = "Please select a valid CSV file."
	msgReadFailed    = "The CSV file could not be read."
	msgNoTotal       = "The CSV file does not contain a 'Total' column."
	msgBadCell       = "The 'Total' column contains a value that is not a number."
	msgNoGratuity    = "No gratuity percentage was entered."
	msgWriteFailed   = "The report could not be written."
	msgInternalError = "An internal error occurred."
)

// =============================================================================
// OPTIONS, REQUEST AND RESULT
// =============================================================================

// Options configures a Pipeline.
type Options struct {
	// CSV holds the delimiter and quoting settings.
	CSV config.CSVSettings

	// CellPolicy decides how malformed Total cells are handled.
	CellPolicy aggregator.CellPolicy

	// RecordPolicy decides how unparseable records are handled.
	RecordPolicy csvparser.RecordPolicy

	// OutputSuffix builds the default report name when a request has no
	// output path.
	OutputSuffix string
}

// OptionsFromConfig builds Options from the application configuration.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	cellPolicy, err := aggregator.ParseCellPolicy(cfg.Policies.Cell)
	if err != nil {
		return Options{}, err
	}

	recordPolicy, err := csvparser.ParseRecordPolicy(cfg.Policies.Record)
	if err != nil {
		return Options{}, err
	}

	return Options{
		CSV:          cfg.CSV,
		CellPolicy:   cellPolicy,
		RecordPolicy: recordPolicy,
		OutputSuffix: cfg.Output.Suffix,
	}, nil
}

// Request describes a single run.
type Request struct {
	// InputPath is the CSV file to process.
	InputPath string

	// OutputPath is the report destination. When empty it is derived from
	// InputPath and Options.OutputSuffix.
	OutputPath string

	// Gratuity supplies the gratuity percentage.
	Gratuity GratuitySource

	// DryRun computes the totals without writing a report.
	DryRun bool
}

// Result represents the outcome of a run. Fields are filled in as far as the
// run got.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// Stage is the stage the run ended in.
	Stage Stage

	// History lists every stage the run passed through, starting with IDLE.
	History []Stage

	InputPath string

	// OutputPath is the report path. It is empty for a dry run.
	OutputPath string

	// Rows is the number of rows in the parsed table.
	Rows int

	Header      types.HeaderLocation
	Aggregation aggregator.Summary
	Gratuity    float64
	Totals      types.ReportTotals

	// Warnings lists the records skipped by the parser.
	Warnings []csvparser.Warning

	Duration time.Duration
}

// =============================================================================
// PIPELINE
// =============================================================================

// Pipeline runs report requests.
type Pipeline struct {
	opts   Options
	logger *zap.Logger
	writer *report.Writer
}

// New creates a Pipeline. A nil logger disables logging.
func New(opts Options, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.OutputSuffix == "" {
		opts.OutputSuffix = "_processed"
	}
	return &Pipeline{
		opts:   opts,
		logger: logger,
		writer: report.NewWriter(logger),
	}
}

// run carries the state of one Run call.
type run struct {
	result *Result
	stages *tracker
	logger *zap.Logger
}

// Run executes the pipeline for one request.
//
// RETURNS:
//   - The Result. It is never nil, even when the run fails.
//   - A *Error if the run ended in StageError, nil otherwise.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	startTime := time.Now()
	r := &run{
		result: &Result{RunID: uuid.New().String(), InputPath: req.InputPath},
		stages: newTracker(),
	}
	r.logger = p.logger.With(zap.String("run_id", r.result.RunID), zap.String("input", req.InputPath))

	err := p.execute(ctx, req, r)
	if err != nil {
		var pErr *Error
		if !errors.As(err, &pErr) {
			pErr = &Error{Kind: KindInput, Stage: r.stages.current, Message: msgInternalError, Err: err}
		}
		// ERROR is reachable from every non-terminal stage.
		_ = r.stages.advance(StageError)
		r.logger.Warn("run failed",
			zap.String("kind", string(pErr.Kind)),
			zap.String("stage", pErr.Stage.String()),
			zap.Error(pErr),
		)
		err = pErr
	}

	r.result.Stage = r.stages.current
	r.result.History = r.stages.history
	r.result.Duration = time.Since(startTime)

	return r.result, err
}

// fail builds a *Error for the current stage.
func (r *run) fail(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Stage: r.stages.current, Message: message, Err: err}
}

func (p *Pipeline) execute(ctx context.Context, req Request, r *run) error {
	// =========================================================================
	// STEP 1: FILE SELECTION
	// =========================================================================

	if req.InputPath == "" {
		return r.fail(KindInput, msgNoFile, nil)
	}
	if err := r.stages.advance(StageFileSelected); err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: PARSE INPUT CSV
	// =========================================================================

	parsed, err := csvparser.Parse(req.InputPath, p.opts.CSV, p.opts.RecordPolicy)
	if err != nil {
		return r.fail(KindInput, msgReadFailed, err)
	}

	table := parsed.Table
	r.result.Rows = table.Len()
	r.result.Warnings = parsed.Warnings
	for _, w := range parsed.Warnings {
		r.logger.Warn("skipped unparseable record", zap.Int("line", w.Line), zap.String("reason", w.Message))
	}

	if err := r.stages.advance(StageParsed); err != nil {
		return err
	}
	r.logger.Debug("parsed input", zap.Int("rows", table.Len()), zap.Int("warnings", len(parsed.Warnings)))

	// =========================================================================
	// STEP 3: LOCATE TOTAL COLUMN
	// =========================================================================

	loc, err := locator.LocateTotal(table)
	if err != nil {
		return r.fail(KindInput, msgNoTotal, err)
	}

	r.result.Header = loc
	if err := r.stages.advance(StageHeaderLocated); err != nil {
		return err
	}
	r.logger.Debug("located header", zap.Int("row", loc.Row), zap.Int("column", loc.Column))

	// =========================================================================
	// STEP 4: AGGREGATE AND COLLECT GRATUITY
	// =========================================================================

	summary, err := aggregator.Sum(table, loc, p.opts.CellPolicy)
	if err != nil {
		return r.fail(KindInput, msgBadCell, err)
	}
	r.result.Aggregation = summary
	r.logger.Debug("aggregated column",
		zap.Float64("subtotal", summary.Subtotal),
		zap.Int("parsed", summary.Parsed),
		zap.Int("malformed", summary.Malformed),
		zap.Int("blank", summary.Blank),
		zap.Int("short", summary.Short),
	)

	gratuity, err := p.collectGratuity(ctx, req.Gratuity)
	if err != nil {
		return r.fail(kindOf(err), messageOf(err), err)
	}

	r.result.Gratuity = gratuity
	r.result.Totals = report.ComputeTotals(summary.Subtotal, gratuity)
	if err := r.stages.advance(StageGratuityCollected); err != nil {
		return err
	}

	if req.DryRun {
		r.logger.Info("dry run complete", zap.Float64("final_total", r.result.Totals.FinalTotal))
		return nil
	}

	// =========================================================================
	// STEP 5: WRITE REPORT
	// =========================================================================

	outputPath := req.OutputPath
	if outputPath == "" {
		outputPath = utils.DefaultOutputPath(req.InputPath, "", p.opts.OutputSuffix)
	}

	if err := p.writer.Build(table, r.result.Totals, gratuity, outputPath); err != nil {
		return r.fail(KindOutput, msgWriteFailed, err)
	}

	r.result.OutputPath = outputPath
	if err := r.stages.advance(StageReportWritten); err != nil {
		return err
	}
	r.logger.Info("report written", zap.String("output", outputPath))

	return nil
}

// collectGratuity asks the source for a percentage and validates it.
func (p *Pipeline) collectGratuity(ctx context.Context, source GratuitySource) (float64, error) {
	if source == nil {
		return 0, ErrNoGratuitySource
	}

	value, err := source.Gratuity(ctx)
	if err != nil {
		return 0, err
	}

	if err := validation.CheckGratuity(value); err != nil {
		return 0, err
	}

	// Normalize negative zero.
	if value == 0 {
		value = 0
	}

	return value, nil
}

// kindOf classifies a gratuity collection error.
func kindOf(err error) Kind {
	var vErr *validation.ValidationError
	if errors.As(err, &vErr) {
		return KindValidation
	}
	return KindAborted
}

func messageOf(err error) string {
	var vErr *validation.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	return msgNoGratuity
}
