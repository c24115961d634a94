package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"go-worldstats/internal/countries"
	"go-worldstats/internal/facttable"
	"go-worldstats/internal/logging"
	"go-worldstats/internal/metrics"
	"go-worldstats/internal/model"
	"go-worldstats/internal/store"
	"go-worldstats/pkg/utils"
)

const defaultTimeout = 10 * time.Minute

// Runner executes cleaning runs. Only Resolver is required; a nil Ledger,
// Metrics or Logger disables that concern.
type Runner struct {
	Resolver *countries.Resolver
	Ledger   *store.Store
	Metrics  *metrics.Metrics
	Logger   *logging.ComponentLogger
	Verbose  bool // emoji progress lines on stdout
}

// sourceResult is the cleaned output of one raw file
type sourceResult struct {
	values  []model.LongValue
	summary model.SourceSummary
}

// ------------------- Pipeline Runner -------------------

// Run loads both raw files, reshapes and validates them in parallel, joins them
// and publishes a new fact table version. Dropped rows never fail a run;
// structural and write errors do, leaving the previous version in place.
func (r *Runner) Run(ctx context.Context, spec model.RunSpec) (summary *model.RunSummary, err error) {
	if r.Resolver == nil {
		return nil, errors.New("pipeline: country resolver is required")
	}
	logger := r.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	runID := uuid.NewString()
	start := time.Now()
	logger = logger.With("run_id", runID)
	if r.Verbose {
		fmt.Printf("🚀 Starting cleaning run: %s\n", runID)
	}

	if spec.Validation.MaxYear == 0 {
		spec.Validation = model.DefaultValidationRules()
	}
	if r.Ledger != nil {
		if err := r.Ledger.SaveRun(runID, spec); err != nil {
			logger.Warn().Err(err).Msg("Failed to record run in ledger")
		}
	}
	r.setStatus(runID, store.StatusRunning)

	// Defer function to handle status updates on completion/error
	defer func() {
		r.Metrics.RecordRun(time.Since(start), summary)
		if err != nil {
			r.setStatus(runID, store.StatusFailed)
			if r.Ledger != nil {
				r.Ledger.SaveRunError(runID, err)
			}
			logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("Cleaning run failed")
			if r.Verbose {
				fmt.Printf("❌ Cleaning run %s failed: %v\n", runID, err)
			}
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, utils.ParseDuration(spec.Timeout, defaultTimeout))
	defer cancel()

	tracker := NewRunTracker(runID, r.Ledger, r.Metrics, r.Verbose)

	// --- LOAD / RESHAPE / VALIDATE, one goroutine per source ---
	r.setStatus(runID, store.StatusCleaning)
	var popResult, gdpResult *sourceResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := r.cleanSource(gctx, spec.PopulationPath, model.MetricPopulation, spec, tracker, logger)
		popResult = res
		return err
	})
	g.Go(func() error {
		res, err := r.cleanSource(gctx, spec.GDPPath, model.MetricGDP, spec, tracker, logger)
		gdpResult = res
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// --- JOIN ---
	r.setStatus(runID, store.StatusJoining)
	tracker.StartStage("join", 1)
	records, stats := Join(popResult.values, gdpResult.values)
	tracker.EndStage("join", len(records))
	logger.Info().
		Int("records", stats.Records).
		Int("complete", stats.Complete).
		Int("population_only", stats.PopulationOnly).
		Int("gdp_only", stats.GDPOnly).
		Int("countries", stats.Countries).
		Msg("Joined population and GDP")

	// --- WRITE ---
	r.setStatus(runID, store.StatusWriting)
	tracker.StartStage("write", spec.Workers.Partition)
	writer, err := facttable.NewWriter(spec.OutputPath, facttable.Options{
		RetainVersions: spec.RetainVersions,
		MaxRowsPerFile: spec.MaxRowsPerFile,
		Workers:        spec.Workers.Partition,
		Compression:    spec.Compression,
	}, logger)
	if err != nil {
		tracker.FailStage("write")
		return nil, err
	}
	manifest, err := writer.Write(ctx, records)
	if err != nil {
		tracker.FailStage("write")
		return nil, err
	}
	tracker.EndStage("write", manifest.Records)

	summary = &model.RunSummary{
		RunID:          runID,
		Version:        manifest.Version,
		OutputPath:     spec.OutputPath,
		Sources:        []model.SourceSummary{popResult.summary, gdpResult.summary},
		RecordsWritten: manifest.Records,
		PartialRecords: stats.Partial(),
		Partitions:     len(manifest.Years()),
		Countries:      stats.Countries,
		StartedAt:      start.UTC(),
		Duration:       time.Since(start),
	}
	if r.Ledger != nil {
		if err := r.Ledger.CompleteRun(runID, *summary); err != nil {
			logger.Warn().Err(err).Msg("Failed to record run summary in ledger")
		}
	}
	logger.LogRunSummary(*summary)
	if r.Verbose {
		fmt.Printf("🏁 Cleaning run %s published version %s (%d records) in %v\n",
			runID, summary.Version, summary.RecordsWritten, summary.Duration)
	}
	return summary, nil
}

// cleanSource runs load, reshape and validate for one raw file
func (r *Runner) cleanSource(ctx context.Context, path string, metric model.Metric, spec model.RunSpec, tracker *RunTracker, logger *logging.ComponentLogger) (*sourceResult, error) {
	stage := func(name string) string { return name + "_" + string(metric) }

	tracker.StartStage(stage("load"), 1)
	table, loadDrops, err := LoadWideTable(ctx, path, metric)
	if err != nil {
		tracker.FailStage(stage("load"))
		return nil, err
	}
	tracker.EndStage(stage("load"), len(table.Rows))

	tracker.StartStage(stage("reshape"), spec.Workers.Reshape)
	values, reshapeDrops, err := ReshapeWideToLong(ctx, table, r.Resolver, spec.Workers.Reshape)
	if err != nil {
		tracker.FailStage(stage("reshape"))
		return nil, err
	}
	tracker.EndStage(stage("reshape"), len(values))

	tracker.StartStage(stage("validate"), 1)
	valid, validateDrops := ValidateLong(values, metric, spec.Validation, path)
	tracker.EndStage(stage("validate"), len(valid))

	drops := model.NewDropCounts()
	drops.Merge(loadDrops)
	drops.Merge(reshapeDrops)
	drops.Merge(validateDrops)

	summary := model.SourceSummary{
		Source:        path,
		Metric:        metric,
		Layout:        table.Layout,
		RowsRead:      len(table.Rows),
		YearColumns:   len(table.Years),
		ValuesEmitted: len(valid),
		Drops:         drops.Snapshot(),
		UnmappedNames: drops.UnmappedNames(),
	}
	for _, e := range drops.Samples() {
		logger.LogRowDrop(e)
	}
	logger.LogSourceSummary(summary)
	r.Metrics.RecordSource(summary)
	return &sourceResult{values: valid, summary: summary}, nil
}

func (r *Runner) setStatus(runID, status string) {
	if r.Ledger != nil {
		r.Ledger.UpdateRunStatus(runID, status)
	}
}
