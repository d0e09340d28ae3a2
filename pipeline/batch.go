package pipeline

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/ghanashyam9348/adeguard/core"
)

// BatchScheduler fans a batch of reports across a bounded worker pool.
// Results come back index-aligned with the input; one report's failure
// never touches its neighbors.
type BatchScheduler struct {
	orchestrator *Orchestrator
	pool         *ants.Pool
	logger       *slog.Logger
}

// BatchOption configures a BatchScheduler.
type BatchOption func(*BatchScheduler) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) BatchOption {
	return func(s *BatchScheduler) error {
		if size < 1 {
			size = 1
		}

		if s.pool != nil {
			s.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		s.pool = pool
		return nil
	}
}

// WithBatchLogger sets a custom logger.
// Default is slog.Default().
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(s *BatchScheduler) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "batch-scheduler")
		return nil
	}
}

// NewBatchScheduler creates a scheduler that runs each report through the
// given orchestrator.
func NewBatchScheduler(orchestrator *Orchestrator, opts ...BatchOption) (*BatchScheduler, error) {
	if orchestrator == nil {
		return nil, ErrOrchestratorRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	s := &BatchScheduler{
		orchestrator: orchestrator,
		pool:         pool,
		logger:       slog.Default().With("component", "batch-scheduler"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			s.Release()
			return nil, err
		}
	}

	return s, nil
}

// Submit processes the reports concurrently and returns an index-aligned
// batch result. Validation failures land in their slot's Err; stage
// failures are already folded into that slot's PipelineResult. The summary
// counts always sum to the batch size.
func (s *BatchScheduler) Submit(ctx context.Context, reports []core.Report) (*core.BatchResult, error) {
	items := make([]core.BatchItem, len(reports))

	var wg sync.WaitGroup
	for i, report := range reports {
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			result, err := s.orchestrator.Run(ctx, report)
			if err != nil {
				items[i] = core.BatchItem{Err: err}
				return
			}
			items[i] = core.BatchItem{Result: result}
		})
		if err != nil {
			// Pool rejected the task (released or overloaded); the slot
			// still has to be filled.
			items[i] = core.BatchItem{Err: err}
			wg.Done()
		}
	}
	wg.Wait()

	summary := core.BatchSummary{}
	for _, item := range items {
		switch {
		case item.Err != nil:
			summary.FailedCount++
		case item.Result.OverallStatus == core.OverallSuccess:
			summary.SucceededCount++
		case item.Result.OverallStatus == core.OverallPartial:
			summary.PartialCount++
		default:
			summary.FailedCount++
		}
	}

	s.logger.Info("batch complete",
		"total", len(reports),
		"succeeded", summary.SucceededCount,
		"partial", summary.PartialCount,
		"failed", summary.FailedCount)

	return &core.BatchResult{Items: items, Summary: summary}, nil
}

// Release releases the worker pool.
// The scheduler should not be used after calling Release.
func (s *BatchScheduler) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}
