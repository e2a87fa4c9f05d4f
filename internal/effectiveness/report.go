package effectiveness

import (
	"fmt"
	"math"
	"sort"

	"github.com/stemsi/marksheet-analytics/internal/dataset"
	"github.com/stemsi/marksheet-analytics/internal/stats"
)

// Distribution is the box-plot data of one teacher's students.
type Distribution struct {
	Teacher    string        `json:"teacher"`
	Marks      stats.Summary `json:"marks"`
	Attendance stats.Summary `json:"attendance"`
}

// Report is the effectiveness analysis of one subject.
type Report struct {
	Subject       string         `json:"subject"`
	Marks         Result         `json:"marks"`
	Attendance    Result         `json:"attendance"`
	Distributions []Distribution `json:"distributions"`
}

// Scored reports whether at least one metric produced scores.
func (r Report) Scored() bool {
	return !r.Marks.Empty() || !r.Attendance.Empty()
}

// Result returns the result for metric m.
func (r Report) Result(m Metric) Result {
	if m == MetricAttendance {
		return r.Attendance
	}
	return r.Marks
}

func checkSubject(ds *dataset.Dataset, subject string) error {
	if _, ok := ds.Marks(subject); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSubject, subject)
	}
	if !ds.HasTeacher(subject) {
		return fmt.Errorf("%w: %q", ErrNoTeacherColumn, subject)
	}
	return nil
}

// PrepareMetric builds the MetricTable for one subject and metric. Rows with
// a missing teacher or value are dropped, then teachers with fewer than
// opts.MinGroupSize remaining rows.
func PrepareMetric(ds *dataset.Dataset, subject string, metric Metric, opts Options) (MetricTable, error) {
	if !metric.valid() {
		return MetricTable{}, fmt.Errorf("%w: unknown metric %q", ErrMalformedTable, metric)
	}
	if err := checkSubject(ds, subject); err != nil {
		return MetricTable{}, err
	}
	teachers, _ := ds.Teachers(subject)
	values, _ := ds.Numeric(subject + " " + string(metric))
	return prepare(metric, teachers, values, opts), nil
}

// prepare keeps rows with a teacher and a value, then drops teachers below
// opts.MinGroupSize.
func prepare(metric Metric, teachers []string, values []float64, opts Options) MetricTable {
	usable := func(i int) bool {
		return teachers[i] != "" && !math.IsNaN(values[i])
	}

	counts := make(map[string]int)
	for i, t := range teachers {
		if usable(i) {
			counts[t]++
		}
	}

	out := MetricTable{Metric: metric}
	for i, t := range teachers {
		if !usable(i) || counts[t] < opts.MinGroupSize {
			continue
		}
		out.Teachers = append(out.Teachers, t)
		out.Values = append(out.Values, values[i])
	}
	return out
}

// Analyze scores both metrics of a subject. Each metric is filtered on its
// own column, so a student missing attendance still counts for marks.
func Analyze(ds *dataset.Dataset, subject string, opts Options) (Report, error) {
	if err := checkSubject(ds, subject); err != nil {
		return Report{}, err
	}

	rep := Report{Subject: subject}
	for _, m := range Metrics {
		table, err := PrepareMetric(ds, subject, m, opts)
		if err != nil {
			return Report{}, err
		}
		res, err := Score(table, opts)
		if err != nil {
			return Report{}, fmt.Errorf("score %s %s: %w", subject, m, err)
		}
		if m == MetricMarks {
			rep.Marks = res
		} else {
			rep.Attendance = res
		}
	}

	teachers, _ := ds.Teachers(subject)
	marks, _ := ds.Marks(subject)
	att, _ := ds.Attendance(subject)
	rep.Distributions = distributions(teachers, marks, att)
	return rep, nil
}

// distributions summarizes each teacher's marks and attendance separately;
// missing values are skipped per metric.
func distributions(teachers []string, marks, att []float64) []Distribution {
	type pair struct{ marks, att []float64 }
	byTeacher := make(map[string]*pair)
	for i, t := range teachers {
		if t == "" || (math.IsNaN(marks[i]) && math.IsNaN(att[i])) {
			continue
		}
		p, ok := byTeacher[t]
		if !ok {
			p = &pair{}
			byTeacher[t] = p
		}
		p.marks = append(p.marks, marks[i])
		p.att = append(p.att, att[i])
	}

	out := make([]Distribution, 0, len(byTeacher))
	for t, p := range byTeacher {
		out = append(out, Distribution{
			Teacher:    t,
			Marks:      stats.Summarize(p.marks),
			Attendance: stats.Summarize(p.att),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Teacher < out[j].Teacher })
	return out
}

// MatrixRow is one teacher's scores for a subject. A nil score means the
// metric was not significant for that subject.
type MatrixRow struct {
	Subject    string   `json:"subject"`
	Teacher    string   `json:"teacher"`
	Marks      *float64 `json:"marks"`
	Attendance *float64 `json:"attendance"`
}

// Matrix flattens reports into one row per (subject, teacher) that was
// scored on at least one metric.
func Matrix(reports []Report) []MatrixRow {
	var rows []MatrixRow
	for _, rep := range reports {
		byTeacher := make(map[string]*MatrixRow)
		get := func(t string) *MatrixRow {
			row, ok := byTeacher[t]
			if !ok {
				row = &MatrixRow{Subject: rep.Subject, Teacher: t}
				byTeacher[t] = row
			}
			return row
		}
		for t, s := range rep.Marks.Scores {
			get(t).Marks = &s
		}
		for t, s := range rep.Attendance.Scores {
			get(t).Attendance = &s
		}

		names := make([]string, 0, len(byTeacher))
		for t := range byTeacher {
			names = append(names, t)
		}
		sort.Strings(names)
		for _, t := range names {
			rows = append(rows, *byTeacher[t])
		}
	}
	return rows
}
