package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/marksheet-analytics/internal/config"
	"github.com/stemsi/marksheet-analytics/internal/metrics"
	"github.com/stemsi/marksheet-analytics/internal/model"
)

const (
	RunBatchSize    = 50
	RunBatchTimeout = 2 * time.Second
	RunPollTimeout  = 1 * time.Second
	// MaxRunAttempts is how many single-row inserts a run gets before it
	// moves to the dead-letter list.
	MaxRunAttempts = 3
)

// RunWriter persists analysis runs.
type RunWriter interface {
	BulkInsert(ctx context.Context, runs []model.AnalysisRun) (int64, error)
	Insert(ctx context.Context, run *model.AnalysisRun) error
}

// AnalysisRunWorker drains the analysis run queue into PostgreSQL in
// batches, flushing on size or age.
type AnalysisRunWorker struct {
	store   RunWriter
	rdb     *redis.Client
	push    func(ctx context.Context, key string, raw []byte) error
	log     zerolog.Logger
}

func NewAnalysisRunWorker(store RunWriter, rdb *redis.Client, log zerolog.Logger) *AnalysisRunWorker {
	w := &AnalysisRunWorker{
		store: store,
		rdb:   rdb,
		log:   log.With().Str("component", "analysis_run_worker").Logger(),
	}
	w.push = func(ctx context.Context, key string, raw []byte) error {
		return w.rdb.RPush(ctx, key, raw).Err()
	}
	return w
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

// Start blocks until ctx is cancelled, then flushes what is left and closes
// done when it is non-nil.
func (w *AnalysisRunWorker) Start(ctx context.Context, done chan<- struct{}) {
	if done != nil {
		defer close(done)
	}
	w.log.Info().Msg("AnalysisRunWorker started")

	batch := make([]model.AnalysisRun, 0, RunBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= RunBatchSize || time.Since(lastFlush) >= RunBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, RunPollTimeout, config.WorkerKey.PersistAnalysisRunsQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var run model.AnalysisRun
			if err := json.Unmarshal([]byte(item[1]), &run); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, run)
		}
	}
}

// ----------------------------------------------------------------
// Batch insert with single-row fallback
// ----------------------------------------------------------------

func (w *AnalysisRunWorker) flushSafe(ctx context.Context, batch []model.AnalysisRun) {
	if len(batch) == 0 {
		return
	}

	n, err := w.store.BulkInsert(ctx, batch)
	if err == nil {
		metrics.ObserveRunsPersisted("bulk", int(n))
		return
	}
	w.log.Warn().Err(err).Int("batch", len(batch)).Msg("bulk run insert failed, using fallback")

	for i := range batch {
		run := batch[i]
		if err := w.store.Insert(ctx, &run); err != nil {
			w.retry(ctx, run, err)
			continue
		}
		metrics.ObserveRunsPersisted("single", 1)
	}
}

// retry requeues a run that failed to insert, or parks it on the
// dead-letter list once it has used MaxRunAttempts.
func (w *AnalysisRunWorker) retry(ctx context.Context, run model.AnalysisRun, cause error) {
	run.Attempts++
	key, path := config.WorkerKey.PersistAnalysisRunsQueue, "requeued"
	if run.Attempts >= MaxRunAttempts {
		key, path = config.WorkerKey.AnalysisRunsDeadLetter, "dead_letter"
	}
	w.log.Error().Err(cause).
		Str("dataset_id", run.DatasetID).
		Int("attempts", run.Attempts).
		Str("to", key).
		Msg("single insert failed")

	raw, err := json.Marshal(run)
	if err == nil {
		err = w.push(ctx, key, raw)
	}
	if err != nil {
		w.log.Error().Err(err).Str("to", key).Msg("push failed, run dropped")
		return
	}
	metrics.ObserveRunsPersisted(path, 1)
}
