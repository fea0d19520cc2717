package replication

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"catalog-post/pkg/domain"
)

// RunSource lists run records, newest first.
type RunSource interface {
	RecentRuns(ctx context.Context, limit int) ([]domain.RunRecord, error)
}

// RunSink stores a batch of run records, upserting by run id.
type RunSink interface {
	SaveRuns(ctx context.Context, records []domain.RunRecord) error
}

// Config wires the replication dependencies.
type Config struct {
	Source RunSource
	Sink   RunSink

	// BatchSize defaults to 100, Workers to 5.
	BatchSize int
	Workers   int
}

// Replicator copies the run history from one backend to another, typically
// Mongo to Postgres when moving the history store.
//
// This is a one-shot "copy everything" flow; re-running it is safe because
// the sink upserts.
type Replicator struct {
	source    RunSource
	sink      RunSink
	batchSize int
	workers   int
}

func NewReplicator(cfg Config) (*Replicator, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("source is required")
	}
	if cfg.Sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	r := &Replicator{
		source:    cfg.Source,
		sink:      cfg.Sink,
		batchSize: cfg.BatchSize,
		workers:   cfg.Workers,
	}
	if r.batchSize <= 0 {
		r.batchSize = 100
	}
	if r.workers <= 0 {
		r.workers = 5
	}
	return r, nil
}

// Replicate copies every run and returns how many were written.
func (r *Replicator) Replicate(ctx context.Context) (int, error) {
	runs, err := r.source.RecentRuns(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("read runs: %w", err)
	}

	slog.InfoContext(ctx, "replicating run history", "runs", len(runs))

	written, err := r.processBatches(ctx, runs)
	if err != nil {
		return written, err
	}

	slog.InfoContext(ctx, "replication complete", "written", written)
	return written, nil
}

type batchJob struct {
	batch []domain.RunRecord
	start int
	end   int
}

type batchResult struct {
	written int
	err     error
}

// processBatches writes all runs in batches in parallel. The first batch error
// cancels the remaining batches and is the error returned.
func (r *Replicator) processBatches(ctx context.Context, runs []domain.RunRecord) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	numBatches := (len(runs) + r.batchSize - 1) / r.batchSize
	jobs := make(chan batchJob, numBatches)
	results := make(chan batchResult, numBatches)

	for start := 0; start < len(runs); start += r.batchSize {
		end := min(start+r.batchSize, len(runs))
		jobs <- batchJob{batch: runs[start:end], start: start, end: end}
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if err := ctx.Err(); err != nil {
					results <- batchResult{err: err}
					continue
				}
				result := r.processBatch(ctx, job)
				// Sent before cancelling so the cause is queued ahead of
				// the batches skipped because of it.
				results <- result
				if result.err != nil {
					cancel()
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	total := 0
	var firstErr error
	for result := range results {
		if result.err != nil && firstErr == nil {
			firstErr = result.err
		}
		total += result.written
	}
	return total, firstErr
}

func (r *Replicator) processBatch(ctx context.Context, job batchJob) batchResult {
	if err := r.sink.SaveRuns(ctx, job.batch); err != nil {
		return batchResult{err: fmt.Errorf("write batch [%d:%d]: %w", job.start, job.end, err)}
	}
	slog.DebugContext(ctx, "wrote batch", "start", job.start, "end", job.end)
	return batchResult{written: len(job.batch)}
}
