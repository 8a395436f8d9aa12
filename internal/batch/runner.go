// Package batch computes PnL for many wallets over a bounded worker
// pool. Wallets share no mutable state, so runs parallelize without
// synchronization; one wallet's failure never aborts its siblings.
package batch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"polymarket-pnl/internal/domain"
	"polymarket-pnl/internal/engine"
	"polymarket-pnl/internal/observability"
	"polymarket-pnl/internal/storage"
)

// DefaultConcurrency bounds the worker pool when none is configured.
const DefaultConcurrency = 5

// Progress is invoked after each wallet finishes, successfully or not.
// Called from worker goroutines, serialized by the runner.
type Progress func(done, total int, wallet string, err error)

// WalletError records one wallet's failure within a batch.
type WalletError struct {
	Wallet string
	Err    error
}

// Result is the outcome of one batch run.
type Result struct {
	RunID    string
	Metrics  []*domain.WalletMetrics
	Failures []WalletError
	Duration time.Duration
}

// Options for creating a Runner.
type Options struct {
	Engine      *engine.Engine
	Concurrency int

	// Store, when set, persists each wallet's metrics as it completes.
	Store storage.WalletMetricsStore

	Logger zerolog.Logger
}

// Runner executes batch computations.
type Runner struct {
	engine      *engine.Engine
	concurrency int
	store       storage.WalletMetricsStore
	logger      zerolog.Logger
}

// NewRunner creates a Runner.
func NewRunner(opts Options) *Runner {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Runner{
		engine:      opts.Engine,
		concurrency: concurrency,
		store:       opts.Store,
		logger:      opts.Logger,
	}
}

// Run computes every wallet, collecting per-wallet failures instead of
// propagating them. Context cancellation stops dispatching further
// wallets; in-flight computations finish.
func (r *Runner) Run(ctx context.Context, wallets []string, onProgress Progress) (*Result, error) {
	started := time.Now()
	result := &Result{RunID: uuid.NewString()}

	r.logger.Info().
		Str("run_id", result.RunID).
		Int("wallets", len(wallets)).
		Int("concurrency", r.concurrency).
		Msg("batch run started")

	jobs := make(chan string)
	var (
		mu   sync.Mutex
		done int
		wg   sync.WaitGroup
	)

	for i := 0; i < r.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for wallet := range jobs {
				metrics, err := r.computeOne(ctx, wallet)

				mu.Lock()
				done++
				if err != nil {
					result.Failures = append(result.Failures, WalletError{Wallet: wallet, Err: err})
					observability.RecordBatchWallet("error")
				} else {
					result.Metrics = append(result.Metrics, metrics)
					observability.RecordBatchWallet("ok")
				}
				if onProgress != nil {
					onProgress(done, len(wallets), wallet, err)
				}
				mu.Unlock()
			}
		}()
	}

	for _, wallet := range wallets {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			result.Duration = time.Since(started)
			return result, ctx.Err()
		case jobs <- wallet:
		}
	}
	close(jobs)
	wg.Wait()

	result.Duration = time.Since(started)
	observability.DefaultMetrics.BatchDuration.Observe(result.Duration.Seconds())
	r.logger.Info().
		Str("run_id", result.RunID).
		Int("ok", len(result.Metrics)).
		Int("failed", len(result.Failures)).
		Dur("duration", result.Duration).
		Msg("batch run finished")

	return result, nil
}

// computeOne runs a single wallet and optionally persists the result.
func (r *Runner) computeOne(ctx context.Context, wallet string) (*domain.WalletMetrics, error) {
	metrics, err := r.engine.Compute(ctx, wallet)
	if err != nil {
		r.logger.Warn().Str("wallet", wallet).Err(err).Msg("wallet computation failed")
		return nil, err
	}

	if r.store != nil {
		if err := r.store.Upsert(ctx, metrics); err != nil {
			r.logger.Warn().Str("wallet", wallet).Err(err).Msg("persisting metrics failed")
			return nil, err
		}
	}
	return metrics, nil
}
