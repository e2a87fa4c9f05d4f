package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/marksheet-analytics/internal/config"
	"github.com/stemsi/marksheet-analytics/internal/dataset"
	"github.com/stemsi/marksheet-analytics/internal/model"
)

type fakeLoader struct {
	datasets map[string]*dataset.Dataset
}

func (f *fakeLoader) Load(_ context.Context, id string) (*dataset.Dataset, error) {
	ds, ok := f.datasets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dataset.ErrNotFound, id)
	}
	return ds, nil
}

type fakeRecorder struct {
	mu   sync.Mutex
	runs []model.AnalysisRun
	err  error
}

func (f *fakeRecorder) Record(_ context.Context, run model.AnalysisRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, run)
	return f.err
}

const testDatasetID = "0b8a4a5e-3a43-4b5f-9a40-0c4d6f1e8e21"

func marksheet(t *testing.T) *dataset.Dataset {
	t.Helper()
	marks := []string{"80", "85", "90", "82", "88", "40", "45", "50", "42", "48"}
	tbl := &dataset.Table{Columns: []string{"Roll No", "Gender", "Math Marks", "Math Attendance", "Math Teacher"}}
	for i, m := range marks {
		gender, teacher := "Female", "A"
		if i%2 == 1 {
			gender = "Male"
		}
		if i >= 5 {
			teacher = "B"
		}
		tbl.Rows = append(tbl.Rows, []string{strconv.Itoa(i + 1), gender, m, strconv.Itoa(70 + i), teacher})
	}
	ds, err := dataset.Validate(tbl)
	require.NoError(t, err)
	return ds
}

func newAnalysisService(t *testing.T, rec *fakeRecorder) *AnalysisService {
	loader := &fakeLoader{datasets: map[string]*dataset.Dataset{testDatasetID: marksheet(t)}}
	cfg := &config.Config{AnalysisParallelism: 2}
	return NewAnalysisService(loader, rec, config.DefaultAnalysis(), cfg, zerolog.Nop())
}

func TestAnalysisServiceTeachersRecordsRun(t *testing.T) {
	rec := &fakeRecorder{}
	svc := newAnalysisService(t, rec)

	rep, err := svc.Teachers(context.Background(), testDatasetID, nil)
	require.NoError(t, err)
	require.Len(t, rep.Reports, 1)
	assert.True(t, rep.Reports[0].Scored())

	require.Len(t, rec.runs, 1)
	run := rec.runs[0]
	assert.Equal(t, testDatasetID, run.DatasetID)
	assert.Equal(t, model.AnalysisTeachers, run.Kind)
	assert.Equal(t, "ok", run.Outcome)
	assert.False(t, run.CreatedAt.IsZero())
}

func TestAnalysisServiceUnknownDataset(t *testing.T) {
	rec := &fakeRecorder{}
	svc := newAnalysisService(t, rec)

	_, err := svc.Subjects(context.Background(), "missing", nil)
	require.ErrorIs(t, err, dataset.ErrNotFound)

	require.Len(t, rec.runs, 1)
	assert.Equal(t, "DATASET_NOT_FOUND", rec.runs[0].Outcome)
	assert.Equal(t, model.AnalysisSubjects, rec.runs[0].Kind)
}

func TestAnalysisServiceIgnoresRecorderFailure(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("redis down")}
	svc := newAnalysisService(t, rec)

	rep, err := svc.Subjects(context.Background(), testDatasetID, []string{"Math"})
	require.NoError(t, err)
	assert.Nil(t, rep.Correlation)
	assert.Len(t, rep.Trends, 1)
}

func TestAnalysisServiceBiasRecordsCategory(t *testing.T) {
	rec := &fakeRecorder{}
	svc := newAnalysisService(t, rec)

	_, err := svc.Bias(context.Background(), testDatasetID, model.BiasRequest{Category: "Gender", Subjects: []string{"Math"}})
	// Each teacher has five students, so nothing is left after filtering.
	require.Error(t, err)

	require.Len(t, rec.runs, 1)
	assert.Equal(t, "Gender", rec.runs[0].Category)
	assert.Equal(t, []string{"Math"}, rec.runs[0].Subjects)
	assert.Equal(t, "INSUFFICIENT_SAMPLE_SIZE", rec.runs[0].Outcome)
}
