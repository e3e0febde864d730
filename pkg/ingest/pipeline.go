// pkg/ingest/pipeline.go
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/transito-gt/tablero/pkg/model"
	"github.com/transito-gt/tablero/pkg/normalizer"
	"github.com/transito-gt/tablero/pkg/sink"
	"github.com/transito-gt/tablero/pkg/source"
)

const defaultWorkers = 4

// Pipeline runs the full preprocessing flow: fetch each raw table, normalize
// it under its rule set, and write the canonical records to every configured
// sink. A failure in one table never aborts the others.
type Pipeline struct {
	src     source.TableSource
	cache   *normalizer.Cache
	sinks   []sink.RecordSink
	catalog []model.RuleSet
	workers int
	logger  *zap.Logger
}

// NewPipeline creates a pipeline over the given source, normalizer cache,
// sinks, and rule-set catalog.
func NewPipeline(
	src source.TableSource,
	cache *normalizer.Cache,
	sinks []sink.RecordSink,
	catalog []model.RuleSet,
	workers int,
	logger *zap.Logger,
) (*Pipeline, error) {
	if src == nil {
		return nil, errors.New("table source is required")
	}
	if cache == nil {
		return nil, errors.New("normalizer cache is required")
	}
	if len(catalog) == 0 {
		return nil, errors.New("catalog must contain at least one rule set")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if workers <= 0 {
		workers = defaultWorkers
	}

	return &Pipeline{
		src:     src,
		cache:   cache,
		sinks:   sinks,
		catalog: catalog,
		workers: workers,
		logger:  logger.Named("pipeline"),
	}, nil
}

// Run processes every table in the catalog and returns a run summary.
// The returned error is non-nil only when the run could not start or the
// context was cancelled; per-table failures are reported in the summary.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	runID := uuid.New().String()
	metrics := NewMetrics(p.logger)

	p.logger.Info("Starting preprocessing run",
		zap.String("runId", runID),
		zap.Int("tables", len(p.catalog)),
		zap.Int("workers", p.workers))

	jobs := make(chan model.RuleSet, len(p.catalog))
	results := make(chan TableReport, len(p.catalog))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			p.runWorker(ctx, workerID, jobs, results)
		}(i)
	}

	for _, rules := range p.catalog {
		jobs <- rules
	}
	close(jobs)

	wg.Wait()
	close(results)

	for report := range results {
		metrics.RecordTable(report)
	}
	metrics.Complete()

	if err := ctx.Err(); err != nil {
		return metrics.GenerateSummary(runID), fmt.Errorf("run %s interrupted: %w", runID, err)
	}

	return metrics.GenerateSummary(runID), nil
}

// runWorker drains the job channel, processing one table at a time.
func (p *Pipeline) runWorker(ctx context.Context, workerID int, jobs <-chan model.RuleSet, results chan<- TableReport) {
	logger := p.logger.With(zap.Int("workerID", workerID))

	for {
		select {
		case <-ctx.Done():
			logger.Info("Worker stopping due to context cancellation")
			return
		case rules, ok := <-jobs:
			if !ok {
				return
			}
			results <- p.processTable(ctx, workerID, logger, rules)
		}
	}
}

// processTable runs one table through fetch, normalize, and sink stages.
func (p *Pipeline) processTable(ctx context.Context, workerID int, logger *zap.Logger, rules model.RuleSet) TableReport {
	start := time.Now()
	report := TableReport{
		Table:    rules.Table,
		Output:   rules.Output,
		WorkerID: workerID,
	}

	fail := func(err error) TableReport {
		report.Success = false
		report.Error = err.Error()
		report.Duration = time.Since(start)
		logger.Warn("Table processing failed",
			zap.String("table", rules.Table),
			zap.Error(err))
		return report
	}

	table, err := p.src.FetchTable(ctx, rules.Table)
	if err != nil {
		return fail(fmt.Errorf("fetch: %w", err))
	}

	result, err := p.cache.Normalize(table, &rules)
	if err != nil {
		return fail(fmt.Errorf("normalize: %w", err))
	}

	// Emission accounting: every kept cell either became a record or was
	// discarded with a reason. A mismatch means records were lost silently.
	expected := result.RowsKept * len(rules.ValueColumns)
	if got := len(result.Records) + len(result.Discards); got != expected {
		return fail(fmt.Errorf("accounting mismatch for %s: %d kept cells but %d records+discards",
			rules.Table, expected, got))
	}

	for _, s := range p.sinks {
		if err := s.WriteTable(ctx, &rules, result.Records); err != nil {
			return fail(fmt.Errorf("sink write: %w", err))
		}
	}

	report.Success = true
	report.RowsRead = result.RowsRead
	report.RowsKept = result.RowsKept
	report.RecordsEmitted = len(result.Records)
	report.CellsDiscarded = len(result.Discards)
	report.Duration = time.Since(start)
	return report
}
