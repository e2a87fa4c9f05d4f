// Package bias estimates how much a demographic category (Gender,
// Religion) moves a subject's marks once attendance and teacher quality
// are controlled for.
//
// Marks are regressed by ordinary least squares on a constant, attendance,
// a teacher-quality covariate and every level of the category (no baseline
// level is dropped). Each regressor's Shapley attribution is then averaged
// over the rows used for fitting.
package bias

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/stemsi/marksheet-analytics/internal/shapley"
	"github.com/stemsi/marksheet-analytics/internal/stats"
)

var (
	ErrMissingColumns           = errors.New("slice needs an attendance and a marks column")
	ErrMalformedSlice           = errors.New("slice columns have different lengths")
	ErrMissingCategoricalColumn = errors.New("no categorical column with few enough distinct values")
	ErrTooManyCategories        = errors.New("categorical column has too many distinct values")
	ErrInsufficientSampleSize   = errors.New("not enough students for teacher-quality control")
)

// Feature names that do not come from a dataset column.
const (
	FeatureConstant = "const"
	FeatureTeacher  = "Teacher"
)

// Options tunes the engine. DefaultOptions holds the production values.
type Options struct {
	MaxCategories      int    `yaml:"max_categories"`
	MinTeacherStudents int    `yaml:"min_teacher_students"`
	MaxBackground      int    `yaml:"max_background"`
	Seed               uint64 `yaml:"seed"`
}

// DefaultOptions allows up to 4 category levels and keeps only teachers with
// more than 5 students.
func DefaultOptions() Options {
	return Options{
		MaxCategories:      4,
		MinTeacherStudents: 5,
		MaxBackground:      shapley.DefaultMaxBackground,
		Seed:               1,
	}
}

// Column is a named text column.
type Column struct {
	Name   string
	Values []string
}

// Slice is the per-subject input of Detect. Teachers is nil when the
// subject has no teacher column. Candidates are searched in order for the
// demographic category.
type Slice struct {
	Subject        string
	AttendanceName string
	Marks          []float64
	Attendance     []float64
	Teachers       []string
	Candidates     []Column
}

// Result is the outcome of Detect. Attributions covers every regressor
// except the constant.
type Result struct {
	Subject      string             `json:"subject"`
	Category     string             `json:"category"`
	Levels       []string           `json:"levels"`
	Features     []string           `json:"features"`
	Coefficients map[string]float64 `json:"coefficients"`
	Attributions map[string]float64 `json:"attributions"`
	RSquared     float64            `json:"r_squared"`
	Rows         int                `json:"rows"`
}

// Detect runs the bias analysis on one subject slice.
func Detect(s Slice, opts Options) (Result, error) {
	if s.Marks == nil || s.Attendance == nil {
		return Result{}, ErrMissingColumns
	}
	n := len(s.Marks)
	if len(s.Attendance) != n || (s.Teachers != nil && len(s.Teachers) != n) {
		return Result{}, fmt.Errorf("%w: marks %d, attendance %d, teachers %d",
			ErrMalformedSlice, n, len(s.Attendance), len(s.Teachers))
	}
	for _, c := range s.Candidates {
		if len(c.Values) != n {
			return Result{}, fmt.Errorf("%w: %q has %d values, want %d", ErrMalformedSlice, c.Name, len(c.Values), n)
		}
	}

	category, err := pickCategory(s.Candidates, opts.MaxCategories)
	if err != nil {
		return Result{}, err
	}

	rows := completeRows(s, category)
	covariate, rows, err := teacherQuality(s, rows, opts.MinTeacherStudents)
	if err != nil {
		return Result{}, err
	}

	levels := distinctLevels(category.Values, rows)
	features := make([]string, 0, 3+len(levels))
	features = append(features, FeatureConstant, attendanceName(s), FeatureTeacher)
	for _, l := range levels {
		features = append(features, category.Name+"_"+l)
	}

	x := make([][]float64, len(rows))
	y := make([]float64, len(rows))
	for i, r := range rows {
		row := make([]float64, len(features))
		row[0] = 1
		row[1] = s.Attendance[r]
		row[2] = covariate[i]
		for j, l := range levels {
			if category.Values[r] == l {
				row[3+j] = 1
			}
		}
		x[i] = row
		y[i] = s.Marks[r]
	}

	fit, err := fitOLS(x, y)
	if err != nil {
		return Result{}, fmt.Errorf("fit %s: %w", s.Subject, err)
	}

	explainer, err := shapley.NewExplainer(fit, x,
		shapley.WithMaxBackground(opts.MaxBackground),
		shapley.WithSeed(opts.Seed),
	)
	if err != nil {
		return Result{}, fmt.Errorf("explain %s: %w", s.Subject, err)
	}
	mean, err := explainer.MeanAttribution(x)
	if err != nil {
		return Result{}, fmt.Errorf("explain %s: %w", s.Subject, err)
	}

	res := Result{
		Subject:      s.Subject,
		Category:     category.Name,
		Levels:       levels,
		Features:     features[1:],
		Coefficients: make(map[string]float64, len(features)),
		Attributions: make(map[string]float64, len(features)-1),
		RSquared:     fit.rSquared(x, y),
		Rows:         len(rows),
	}
	for j, f := range features {
		res.Coefficients[f] = fit.coef[j]
		if f != FeatureConstant {
			res.Attributions[f] = mean[j]
		}
	}
	return res, nil
}

func attendanceName(s Slice) string {
	if s.AttendanceName != "" {
		return s.AttendanceName
	}
	return "Attendance"
}

// pickCategory returns the first candidate with between 1 and limit distinct
// non-empty values.
func pickCategory(candidates []Column, limit int) (Column, error) {
	if len(candidates) == 0 {
		return Column{}, ErrMissingCategoricalColumn
	}
	var widest Column
	var widestN int
	for _, c := range candidates {
		n := countDistinct(c.Values)
		if n >= 1 && n <= limit {
			return c, nil
		}
		if n > widestN {
			widest, widestN = c, n
		}
	}
	if widestN > limit {
		return Column{}, fmt.Errorf("%w: '%s' has %d, at most %d are supported", ErrTooManyCategories, widest.Name, widestN, limit)
	}
	return Column{}, ErrMissingCategoricalColumn
}

func countDistinct(values []string) int {
	seen := make(map[string]struct{})
	for _, v := range values {
		if v != "" {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}

// completeRows returns the indexes of rows with marks, attendance, category
// and, when present, teacher all set.
func completeRows(s Slice, category Column) []int {
	var rows []int
	for i := range s.Marks {
		if math.IsNaN(s.Marks[i]) || math.IsNaN(s.Attendance[i]) || category.Values[i] == "" {
			continue
		}
		if s.Teachers != nil && s.Teachers[i] == "" {
			continue
		}
		rows = append(rows, i)
	}
	return rows
}

// teacherQuality filters rows to teachers with more than minStudents
// students and returns, per kept row, that teacher's mean marks. Without
// a teacher column every row gets the overall mean marks.
func teacherQuality(s Slice, rows []int, minStudents int) ([]float64, []int, error) {
	if s.Teachers == nil {
		if len(rows) <= minStudents {
			return nil, nil, fmt.Errorf("%w: %d students, need more than %d", ErrInsufficientSampleSize, len(rows), minStudents)
		}
		marks := make([]float64, len(rows))
		for i, r := range rows {
			marks[i] = s.Marks[r]
		}
		mean := stats.Mean(marks)
		covariate := make([]float64, len(rows))
		for i := range covariate {
			covariate[i] = mean
		}
		return covariate, rows, nil
	}

	byTeacher := make(map[string][]float64)
	for _, r := range rows {
		byTeacher[s.Teachers[r]] = append(byTeacher[s.Teachers[r]], s.Marks[r])
	}
	means := make(map[string]float64)
	for t, marks := range byTeacher {
		if len(marks) > minStudents {
			means[t] = stats.Mean(marks)
		}
	}
	if len(means) == 0 {
		return nil, nil, fmt.Errorf("%w: no teacher has more than %d students", ErrInsufficientSampleSize, minStudents)
	}

	var kept []int
	var covariate []float64
	for _, r := range rows {
		if m, ok := means[s.Teachers[r]]; ok {
			kept = append(kept, r)
			covariate = append(covariate, m)
		}
	}
	return covariate, kept, nil
}

func distinctLevels(values []string, rows []int) []string {
	seen := make(map[string]bool)
	var levels []string
	for _, r := range rows {
		if v := values[r]; !seen[v] {
			seen[v] = true
			levels = append(levels, v)
		}
	}
	sort.Strings(levels)
	return levels
}
