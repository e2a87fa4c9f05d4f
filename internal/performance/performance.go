// Package performance summarizes marks across subjects: how subjects
// correlate, how attendance tracks marks, and how marks are spread.
package performance

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/stemsi/marksheet-analytics/internal/dataset"
	"github.com/stemsi/marksheet-analytics/internal/stats"
)

var ErrUnknownSubject = errors.New("subject not found in dataset")

// Correlation is a symmetric Pearson matrix over subjects' marks. A nil
// entry is undefined (fewer than two shared rows or a constant column).
type Correlation struct {
	Subjects []string     `json:"subjects"`
	Values   [][]*float64 `json:"values"`
}

// At returns the coefficient between subjects i and j.
func (c *Correlation) At(i, j int) (float64, bool) {
	v := c.Values[i][j]
	if v == nil {
		return 0, false
	}
	return *v, true
}

// Trend is the least-squares line Marks = Slope*Attendance + Intercept.
type Trend struct {
	Subject   string  `json:"subject"`
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	Rows      int     `json:"rows"`
	Fitted    bool    `json:"fitted"`
}

// Equation renders the line for chart annotations.
func (t Trend) Equation() string {
	return fmt.Sprintf("Marks = %.2f × Attendance + %.2f", t.Slope, t.Intercept)
}

// Distribution is the box-plot data of one subject's marks.
type Distribution struct {
	Subject string        `json:"subject"`
	Marks   stats.Summary `json:"marks"`
}

// Report is the cross-subject summary. Correlation is nil for a single
// subject.
type Report struct {
	Correlation   *Correlation   `json:"correlation"`
	Trends        []Trend        `json:"trends"`
	Distributions []Distribution `json:"distributions"`
}

// Analyze builds the report for the named subjects, or for every subject
// when none are named.
func Analyze(ds *dataset.Dataset, subjects ...string) (Report, error) {
	if len(subjects) == 0 {
		subjects = ds.Subjects()
	}

	marks := make([][]float64, len(subjects))
	var rep Report
	for i, s := range subjects {
		m, ok := ds.Marks(s)
		if !ok {
			return Report{}, fmt.Errorf("%w: %q", ErrUnknownSubject, s)
		}
		att, _ := ds.Attendance(s)
		marks[i] = m

		rep.Trends = append(rep.Trends, trend(s, att, m))
		rep.Distributions = append(rep.Distributions, Distribution{Subject: s, Marks: stats.Summarize(m)})
	}

	if len(subjects) > 1 {
		rep.Correlation = correlate(subjects, marks)
	}
	return rep, nil
}

func trend(subject string, att, marks []float64) Trend {
	x, y := complete(att, marks)
	t := Trend{Subject: subject, Rows: len(x)}
	if len(x) < 2 {
		return t
	}
	alpha, beta := stat.LinearRegression(x, y, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) || math.IsInf(beta, 0) {
		return t
	}
	t.Slope, t.Intercept, t.Fitted = beta, alpha, true
	return t
}

func correlate(subjects []string, marks [][]float64) *Correlation {
	k := len(subjects)
	c := &Correlation{
		Subjects: append([]string(nil), subjects...),
		Values:   make([][]*float64, k),
	}
	for i := range c.Values {
		c.Values[i] = make([]*float64, k)
	}
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			x, y := complete(marks[i], marks[j])
			if len(x) < 2 {
				continue
			}
			r := stat.Correlation(x, y, nil)
			if math.IsNaN(r) || math.IsInf(r, 0) {
				continue
			}
			r = math.Max(-1, math.Min(1, r))
			c.Values[i][j] = &r
			c.Values[j][i] = &r
		}
	}
	return c
}

// complete returns the pairs where neither value is missing.
func complete(a, b []float64) (x, y []float64) {
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		x = append(x, a[i])
		y = append(y, b[i])
	}
	return x, y
}
