package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/marksheet-analytics/internal/apperror"
	"github.com/stemsi/marksheet-analytics/internal/analysis"
	"github.com/stemsi/marksheet-analytics/internal/config"
	"github.com/stemsi/marksheet-analytics/internal/dataset"
	"github.com/stemsi/marksheet-analytics/internal/metrics"
	"github.com/stemsi/marksheet-analytics/internal/model"
	"github.com/stemsi/marksheet-analytics/internal/performance"
)

// DatasetLoader returns a validated dataset by id.
type DatasetLoader interface {
	Load(ctx context.Context, id string) (*dataset.Dataset, error)
}

// RunRecorder accepts analysis audit records.
type RunRecorder interface {
	Record(ctx context.Context, run model.AnalysisRun) error
}

// AnalysisService runs the engines against cached datasets and records
// every request in the audit log.
type AnalysisService struct {
	datasets    DatasetLoader
	runs        RunRecorder
	opts        config.Analysis
	parallelism int
	log         zerolog.Logger
}

func NewAnalysisService(datasets DatasetLoader, runs RunRecorder, opts config.Analysis, cfg *config.Config, log zerolog.Logger) *AnalysisService {
	return &AnalysisService{
		datasets:    datasets,
		runs:        runs,
		opts:        opts,
		parallelism: cfg.AnalysisParallelism,
		log:         log.With().Str("component", "analysis_service").Logger(),
	}
}

// Teachers scores teacher effectiveness for the requested subjects.
func (s *AnalysisService) Teachers(ctx context.Context, id string, subjects []string) (analysis.TeacherReport, error) {
	var rep analysis.TeacherReport
	err := s.track(ctx, model.AnalysisRun{DatasetID: id, Kind: model.AnalysisTeachers, Subjects: subjects}, func(ds *dataset.Dataset) error {
		var err error
		rep, err = analysis.Teachers(ctx, ds, subjects, s.opts, s.parallelism)
		return err
	})
	return rep, err
}

// Bias runs bias detection for the requested subjects.
func (s *AnalysisService) Bias(ctx context.Context, id string, req model.BiasRequest) ([]analysis.BiasOutcome, error) {
	var out []analysis.BiasOutcome
	run := model.AnalysisRun{DatasetID: id, Kind: model.AnalysisBias, Subjects: req.Subjects, Category: req.Category}
	err := s.track(ctx, run, func(ds *dataset.Dataset) error {
		var err error
		out, err = analysis.Bias(ctx, ds, req.Subjects, req.Category, s.opts, s.parallelism)
		return err
	})
	return out, err
}

// Subjects builds the cross-subject performance report.
func (s *AnalysisService) Subjects(ctx context.Context, id string, subjects []string) (performance.Report, error) {
	var rep performance.Report
	err := s.track(ctx, model.AnalysisRun{DatasetID: id, Kind: model.AnalysisSubjects, Subjects: subjects}, func(ds *dataset.Dataset) error {
		var err error
		rep, err = analysis.Subjects(ctx, ds, subjects)
		return err
	})
	return rep, err
}

// track loads the dataset, runs fn and records the outcome. Audit failures
// are logged and never fail the request.
func (s *AnalysisService) track(ctx context.Context, run model.AnalysisRun, fn func(ds *dataset.Dataset) error) error {
	start := time.Now()

	ds, err := s.datasets.Load(ctx, run.DatasetID)
	if err == nil {
		err = fn(ds)
	}

	elapsed := time.Since(start)
	outcome := metrics.OutcomeOK
	if err != nil {
		_, code := apperror.Classify(err)
		outcome = string(code)
	}
	metrics.ObserveAnalysis(string(run.Kind), outcome, elapsed)

	run.Outcome = outcome
	run.DurationMs = elapsed.Milliseconds()
	run.CreatedAt = start.UTC()
	if recErr := s.runs.Record(ctx, run); recErr != nil {
		s.log.Warn().Err(recErr).Str("dataset_id", run.DatasetID).Msg("Failed to record analysis run")
	}

	if err != nil {
		s.log.Debug().Err(err).Str("kind", string(run.Kind)).Str("dataset_id", run.DatasetID).Msg("Analysis failed")
	}
	return err
}

// RedisRunQueue pushes audit records onto the queue drained by
// worker.AnalysisRunWorker.
type RedisRunQueue struct {
	rdb *redis.Client
}

func NewRedisRunQueue(rdb *redis.Client) *RedisRunQueue {
	return &RedisRunQueue{rdb: rdb}
}

func (q *RedisRunQueue) Record(ctx context.Context, run model.AnalysisRun) error {
	raw, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}
	return q.rdb.RPush(ctx, config.WorkerKey.PersistAnalysisRunsQueue, raw).Err()
}
