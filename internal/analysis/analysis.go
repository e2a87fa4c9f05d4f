// Package analysis runs the engines over several subjects of one dataset.
// Each subject is analysed in its own goroutine; the dataset is shared
// read-only.
package analysis

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/stemsi/marksheet-analytics/internal/bias"
	"github.com/stemsi/marksheet-analytics/internal/config"
	"github.com/stemsi/marksheet-analytics/internal/dataset"
	"github.com/stemsi/marksheet-analytics/internal/effectiveness"
	"github.com/stemsi/marksheet-analytics/internal/performance"
)

// DefaultParallelism is used when a caller passes a limit below 1.
const DefaultParallelism = 4

// TeacherReport is the teacher effectiveness result for several subjects.
type TeacherReport struct {
	Reports []effectiveness.Report    `json:"reports"`
	Matrix  []effectiveness.MatrixRow `json:"matrix"`
}

// BiasOutcome is the bias result of one subject. A subject the detector
// rejects (no usable category, too few students) carries Skipped instead
// of a result so the other subjects still report.
type BiasOutcome struct {
	Subject    string             `json:"subject"`
	Result     *bias.Result       `json:"result,omitempty"`
	Positive   []bias.Attribution `json:"positive,omitempty"`
	Negative   []bias.Attribution `json:"negative,omitempty"`
	Annotation string             `json:"annotation,omitempty"`
	Skipped    string             `json:"skipped,omitempty"`
}

// Teachers scores every requested subject, or every subject with a
// teacher column when none are given.
func Teachers(ctx context.Context, ds *dataset.Dataset, subjects []string, opts config.Analysis, limit int) (TeacherReport, error) {
	if len(subjects) == 0 {
		subjects = ds.TeacherSubjects()
	}

	reports := make([]effectiveness.Report, len(subjects))
	err := fanOut(ctx, len(subjects), limit, func(i int) error {
		r, err := effectiveness.Analyze(ds, subjects[i], opts.Effectiveness)
		if err != nil {
			return err
		}
		reports[i] = r
		return nil
	})
	if err != nil {
		return TeacherReport{}, err
	}

	return TeacherReport{
		Reports: reports,
		Matrix:  effectiveness.Matrix(reports),
	}, nil
}

// Bias runs bias detection on every requested subject, or every subject
// when none are given. With a single subject, detector errors are returned
// as errors; with several they are recorded per subject.
func Bias(ctx context.Context, ds *dataset.Dataset, subjects []string, category string, opts config.Analysis, limit int) ([]BiasOutcome, error) {
	if category != "" && !ds.HasColumn(category) {
		return nil, fmt.Errorf("%w: %q", bias.ErrMissingCategoricalColumn, category)
	}
	if len(subjects) == 0 {
		subjects = ds.Subjects()
	}
	tolerate := len(subjects) > 1

	out := make([]BiasOutcome, len(subjects))
	err := fanOut(ctx, len(subjects), limit, func(i int) error {
		subject := subjects[i]
		out[i].Subject = subject

		s, err := bias.SliceFor(ds, subject, category)
		if err == nil {
			var res bias.Result
			res, err = bias.Detect(s, opts.Bias)
			if err == nil {
				out[i].Result = &res
				out[i].Positive, out[i].Negative = res.Partition()
				out[i].Annotation = bias.Annotation
				return nil
			}
		}

		if tolerate && Skippable(err) {
			out[i].Skipped = err.Error()
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Skippable reports whether a bias error describes the data of one subject
// rather than a bad request.
func Skippable(err error) bool {
	return errors.Is(err, bias.ErrMissingCategoricalColumn) ||
		errors.Is(err, bias.ErrTooManyCategories) ||
		errors.Is(err, bias.ErrInsufficientSampleSize)
}

// Subjects builds the cross-subject performance report.
func Subjects(ctx context.Context, ds *dataset.Dataset, subjects []string) (performance.Report, error) {
	if err := ctx.Err(); err != nil {
		return performance.Report{}, err
	}
	return performance.Analyze(ds, subjects...)
}

// fanOut calls fn for 0..n-1 with at most limit calls in flight. The first
// error cancels the calls that have not started yet.
func fanOut(ctx context.Context, n, limit int, fn func(i int) error) error {
	if limit < 1 {
		limit = DefaultParallelism
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := range n {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			return fn(i)
		})
	}
	return g.Wait()
}
