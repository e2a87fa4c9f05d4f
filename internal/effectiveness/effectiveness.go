// Package effectiveness scores teachers of a subject from their students'
// marks and attendance.
//
// A metric is only scored when a one-way ANOVA finds that teacher identity
// explains the variance (p below Options.Alpha). Otherwise the result is
// Empty: not enough evidence, which is not an error.
package effectiveness

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/stemsi/marksheet-analytics/internal/dataset"
	"github.com/stemsi/marksheet-analytics/internal/stats"
)

var (
	ErrMalformedTable  = errors.New("metric table must hold one teacher column and one numeric column")
	ErrNoTeacherColumn = errors.New("subject has no teacher column")
	ErrUnknownSubject  = errors.New("subject not found in dataset")
)

// Metric names the per-subject column being scored.
type Metric string

const (
	MetricMarks      Metric = "Marks"
	MetricAttendance Metric = "Attendance"
)

// Metrics lists the scored metrics in report order.
var Metrics = []Metric{MetricMarks, MetricAttendance}

func (m Metric) valid() bool {
	return m == MetricMarks || m == MetricAttendance
}

// Options tunes the engine. DefaultOptions holds the production values.
type Options struct {
	Alpha        float64 `yaml:"alpha"`
	MeanWeight   float64 `yaml:"mean_weight"`
	SpreadWeight float64 `yaml:"spread_weight"`
	MinGroupSize int     `yaml:"min_group_size"`
}

// DefaultOptions returns the significance gate of 0.10, the 0.6/0.4
// mean/IQR weighting and a minimum of 3 students per teacher.
func DefaultOptions() Options {
	return Options{
		Alpha:        0.10,
		MeanWeight:   0.6,
		SpreadWeight: 0.4,
		MinGroupSize: 3,
	}
}

// MetricTable is the two-column input of Score: a teacher identity and a
// metric value per row.
type MetricTable struct {
	Metric   Metric
	Teachers []string
	Values   []float64
}

// Outcome tags a Result.
type Outcome string

const (
	// OutcomeEmpty means the significance gate failed or fewer than two
	// teachers qualified.
	OutcomeEmpty  Outcome = "empty"
	OutcomeScored Outcome = "scored"
)

// Result is the score of one metric. Scores is set only for OutcomeScored.
type Result struct {
	Metric  Metric             `json:"metric"`
	Outcome Outcome            `json:"outcome"`
	Groups  int                `json:"groups"`
	PValue  *float64           `json:"p_value,omitempty"`
	Scores  map[string]float64 `json:"scores,omitempty"`
}

// Empty reports whether no scores were produced.
func (r Result) Empty() bool { return r.Outcome != OutcomeScored }

// TeacherScore is one entry of a ranking.
type TeacherScore struct {
	Teacher string  `json:"teacher"`
	Score   float64 `json:"score"`
}

// Ranking returns the scores from best to worst, ties broken by name.
func (r Result) Ranking() []TeacherScore {
	out := make([]TeacherScore, 0, len(r.Scores))
	for t, s := range r.Scores {
		out = append(out, TeacherScore{Teacher: t, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Teacher < out[j].Teacher
	})
	return out
}

// Score runs the significance gate and, when it passes, computes each
// teacher's weighted score:
//
//	round2(MeanWeight*mean/maxMean*100 + SpreadWeight*iqr/maxIQR*100)
//
// A wider spread raises the score; the term is not a consistency bonus.
func Score(t MetricTable, opts Options) (Result, error) {
	if !t.Metric.valid() {
		return Result{}, fmt.Errorf("%w: unknown metric %q", ErrMalformedTable, t.Metric)
	}
	if len(t.Teachers) != len(t.Values) {
		return Result{}, fmt.Errorf("%w: %d teachers for %d values", ErrMalformedTable, len(t.Teachers), len(t.Values))
	}

	groups := make(map[string][]float64)
	for i, teacher := range t.Teachers {
		v := t.Values[i]
		if teacher == "" {
			return Result{}, fmt.Errorf("%w: missing teacher at row %d", ErrMalformedTable, i)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Result{}, fmt.Errorf("%w: %s value at row %d is not numeric", ErrMalformedTable, t.Metric, i)
		}
		groups[teacher] = append(groups[teacher], v)
	}

	res := Result{Metric: t.Metric, Outcome: OutcomeEmpty, Groups: len(groups)}
	if len(groups) < 2 {
		return res, nil
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	samples := make([][]float64, len(names))
	for i, name := range names {
		samples[i] = groups[name]
	}

	anova, ok := stats.OneWayANOVA(samples)
	if !ok {
		return res, nil
	}
	if !math.IsNaN(anova.PValue) {
		p := anova.PValue
		res.PValue = &p
	}
	if !(anova.PValue < opts.Alpha) {
		return res, nil
	}

	means := make(map[string]float64, len(names))
	iqrs := make(map[string]float64, len(names))
	for _, name := range names {
		means[name] = stats.Mean(groups[name])
		iqrs[name] = stats.IQR(groups[name])
	}

	res.Outcome = OutcomeScored
	res.Scores = weightedScores(means, iqrs, opts)
	return res, nil
}

func weightedScores(means, iqrs map[string]float64, opts Options) map[string]float64 {
	maxMean := maxOrOne(means)
	maxIQR := maxOrOne(iqrs)

	scores := make(map[string]float64, len(means))
	for teacher, mean := range means {
		normMean := mean / maxMean * 100
		normIQR := iqrs[teacher] / maxIQR * 100
		scores[teacher] = dataset.Round2(opts.MeanWeight*normMean + opts.SpreadWeight*normIQR)
	}
	return scores
}

// maxOrOne returns the largest value, or 1 when there is none or it is not
// positive, so it can always divide.
func maxOrOne(m map[string]float64) float64 {
	best := math.Inf(-1)
	for _, v := range m {
		if v > best {
			best = v
		}
	}
	if best <= 0 {
		return 1
	}
	return best
}
