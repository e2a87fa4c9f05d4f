package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/marksheet-analytics/internal/model"
)

type AnalysisRunRepository struct {
	pool *pgxpool.Pool
}

func NewAnalysisRunRepository(pool *pgxpool.Pool) *AnalysisRunRepository {
	return &AnalysisRunRepository{pool: pool}
}

var analysisRunColumns = []string{"dataset_id", "kind", "subjects", "category", "outcome", "duration_ms", "created_at"}

// BulkInsert writes a batch of runs with COPY.
func (r *AnalysisRunRepository) BulkInsert(ctx context.Context, runs []model.AnalysisRun) (int64, error) {
	ids := make([]uuid.UUID, len(runs))
	for i, run := range runs {
		id, err := uuid.Parse(run.DatasetID)
		if err != nil {
			return 0, err
		}
		ids[i] = id
	}

	return r.pool.CopyFrom(ctx,
		pgx.Identifier{"analysis_runs"},
		analysisRunColumns,
		pgx.CopyFromSlice(len(runs), func(i int) ([]any, error) {
			run := runs[i]
			return []any{ids[i], string(run.Kind), subjectsOrEmpty(run.Subjects), run.Category, run.Outcome, run.DurationMs, run.CreatedAt}, nil
		}),
	)
}

// Insert writes a single run. Used when a bulk copy fails.
func (r *AnalysisRunRepository) Insert(ctx context.Context, run *model.AnalysisRun) error {
	id, err := uuid.Parse(run.DatasetID)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO analysis_runs (dataset_id, kind, subjects, category, outcome, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		id, string(run.Kind), subjectsOrEmpty(run.Subjects), run.Category, run.Outcome, run.DurationMs, run.CreatedAt,
	).Scan(&run.ID)
}

// List returns one page of runs, newest first, optionally restricted to
// one dataset, along with the total number of matching runs.
func (r *AnalysisRunRepository) List(ctx context.Context, q model.ListRunsQuery) ([]model.AnalysisRun, int, error) {
	where := ""
	filter := []any{}
	if q.DatasetID != "" {
		where = ` WHERE dataset_id = $1`
		filter = append(filter, q.DatasetID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM analysis_runs`+where, filter...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(filter)
	query := fmt.Sprintf(`SELECT id, dataset_id, kind, subjects, category, outcome, duration_ms, created_at
		FROM analysis_runs%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, where, n+1, n+2)

	rows, err := r.pool.Query(ctx, query, append(filter, q.PerPage, q.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var runs []model.AnalysisRun
	for rows.Next() {
		var (
			run  model.AnalysisRun
			id   uuid.UUID
			kind string
		)
		if err := rows.Scan(&run.ID, &id, &kind, &run.Subjects, &run.Category, &run.Outcome, &run.DurationMs, &run.CreatedAt); err != nil {
			return nil, 0, err
		}
		run.DatasetID = id.String()
		run.Kind = model.AnalysisKind(kind)
		runs = append(runs, run)
	}
	return runs, total, rows.Err()
}

func subjectsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
