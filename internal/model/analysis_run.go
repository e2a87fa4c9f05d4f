package model

import "time"

// AnalysisKind names the analysis that was run against a dataset.
type AnalysisKind string

const (
	AnalysisTeachers AnalysisKind = "teachers"
	AnalysisBias     AnalysisKind = "bias"
	AnalysisSubjects AnalysisKind = "subjects"
)

// AnalysisRun is one audit record of an analysis request. Runs are queued
// in Redis and persisted in batches by the analysis run worker.
type AnalysisRun struct {
	ID         int64        `json:"id"`
	DatasetID  string       `json:"dataset_id"`
	Kind       AnalysisKind `json:"kind"`
	Subjects   []string     `json:"subjects"`
	Category   string       `json:"category,omitempty"`
	Outcome    string       `json:"outcome"`
	DurationMs int64        `json:"duration_ms"`
	CreatedAt  time.Time    `json:"created_at"`
	// Attempts counts failed persist attempts while the run is queued.
	Attempts int `json:"attempts,omitempty"`
}

// ListRunsQuery holds the query parameters for the admin run listing.
type ListRunsQuery struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PerPage   int    `form:"per_page" binding:"omitempty,min=1,max=200"`
	DatasetID string `form:"dataset_id" binding:"omitempty,uuid"`
}

// Offset returns the row offset of the requested page.
func (q ListRunsQuery) Offset() int {
	return (q.Page - 1) * q.PerPage
}
