package bias

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/marksheet-analytics/internal/dataset"
)

// genderSlice builds n rows where marks = 20 + 0.5*attendance + 10*male.
func genderSlice(n int, teachers []string) Slice {
	s := Slice{Subject: "Math", AttendanceName: "Math Attendance", Teachers: teachers}
	gender := Column{Name: "Gender"}
	for i := 0; i < n; i++ {
		att := 60 + 3*float64(i)
		male := 0.0
		g := "Female"
		if i%3 != 0 {
			male, g = 1, "Male"
		}
		s.Attendance = append(s.Attendance, att)
		s.Marks = append(s.Marks, 20+0.5*att+10*male)
		gender.Values = append(gender.Values, g)
	}
	s.Candidates = []Column{gender}
	return s
}

func TestDetectWithoutTeacherColumn(t *testing.T) {
	res, err := Detect(genderSlice(12, nil), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "Gender", res.Category)
	assert.Equal(t, []string{"Female", "Male"}, res.Levels)
	assert.Equal(t, []string{"Math Attendance", "Teacher", "Gender_Female", "Gender_Male"}, res.Features)
	assert.Equal(t, 12, res.Rows)

	require.Len(t, res.Attributions, 4)
	assert.NotContains(t, res.Attributions, FeatureConstant)
	for _, f := range res.Features {
		assert.Contains(t, res.Attributions, f)
	}
	assert.InDelta(t, 0, res.Attributions["Teacher"], 1e-9, "constant covariate carries no attribution")

	assert.InDelta(t, 1, res.RSquared, 1e-9)
	assert.InDelta(t, 0.5, res.Coefficients["Math Attendance"], 1e-6)
	assert.InDelta(t, 10, res.Coefficients["Gender_Male"]-res.Coefficients["Gender_Female"], 1e-6)
}

func TestDetectMeanAttributionIsSignedAndNearZeroOverFullBackground(t *testing.T) {
	res, err := Detect(genderSlice(30, nil), DefaultOptions())
	require.NoError(t, err)
	for f, v := range res.Attributions {
		assert.InDelta(t, 0, v, 1e-6, f)
	}
}

func TestDetectWithTeacherColumn(t *testing.T) {
	teachers := make([]string, 15)
	for i := range teachers {
		switch {
		case i < 6:
			teachers[i] = "A"
		case i < 12:
			teachers[i] = "B"
		default:
			teachers[i] = "C"
		}
	}
	res, err := Detect(genderSlice(15, teachers), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 12, res.Rows, "teacher C has too few students")
	assert.Contains(t, res.Attributions, FeatureTeacher)
}

func TestDetectDropsIncompleteRows(t *testing.T) {
	s := genderSlice(8, nil)
	s.Marks[0] = math.NaN()
	s.Attendance[1] = math.NaN()
	s.Candidates[0].Values[2] = ""

	_, err := Detect(s, DefaultOptions())
	require.ErrorIs(t, err, ErrInsufficientSampleSize)
}

func TestDetectInsufficientSampleSize(t *testing.T) {
	_, err := Detect(genderSlice(5, nil), DefaultOptions())
	require.ErrorIs(t, err, ErrInsufficientSampleSize)

	teachers := []string{"A", "A", "A", "A", "A", "B", "B", "B", "B", "B"}
	_, err = Detect(genderSlice(10, teachers), DefaultOptions())
	require.ErrorIs(t, err, ErrInsufficientSampleSize, "five students is not more than five")
}

func TestDetectCategoryErrors(t *testing.T) {
	s := genderSlice(10, nil)
	religions := []string{"Hindu", "Islam", "Christian", "Sikh", "Jain"}
	wide := Column{Name: "Religion"}
	for i := range s.Marks {
		wide.Values = append(wide.Values, religions[i%len(religions)])
	}

	s.Candidates = []Column{wide}
	_, err := Detect(s, DefaultOptions())
	require.ErrorIs(t, err, ErrTooManyCategories)
	assert.Contains(t, err.Error(), "Religion")

	s.Candidates = nil
	_, err = Detect(s, DefaultOptions())
	require.ErrorIs(t, err, ErrMissingCategoricalColumn)

	s.Candidates = []Column{{Name: "Gender", Values: make([]string, len(s.Marks))}}
	_, err = Detect(s, DefaultOptions())
	require.ErrorIs(t, err, ErrMissingCategoricalColumn, "an empty column is not a category")
}

func TestDetectPicksFirstNarrowCandidate(t *testing.T) {
	s := genderSlice(10, nil)
	wide := Column{Name: "Religion"}
	for i := range s.Marks {
		wide.Values = append(wide.Values, strconv.Itoa(i))
	}
	s.Candidates = append([]Column{wide}, s.Candidates...)

	res, err := Detect(s, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "Gender", res.Category)
}

func TestDetectShapeErrors(t *testing.T) {
	_, err := Detect(Slice{Marks: []float64{1}}, DefaultOptions())
	require.ErrorIs(t, err, ErrMissingColumns)

	s := genderSlice(8, nil)
	s.Attendance = s.Attendance[:7]
	_, err = Detect(s, DefaultOptions())
	require.ErrorIs(t, err, ErrMalformedSlice)
}

func TestSeverityOf(t *testing.T) {
	tests := []struct {
		v    float64
		want Severity
	}{
		{0, SeverityNegligible},
		{0.049, SeverityNegligible},
		{0.05, SeverityMild},
		{-0.1, SeverityMild},
		{0.15, SeverityModerate},
		{0.30, SeverityModerate},
		{-0.31, SeveritySevere},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SeverityOf(tt.v), "v=%v", tt.v)
	}
}

func TestPartition(t *testing.T) {
	res := Result{
		Features:     []string{"a", "b", "c"},
		Attributions: map[string]float64{"a": 0.2, "b": -0.4, "c": 0},
	}
	pos, neg := res.Partition()

	require.Len(t, pos, 2)
	assert.Equal(t, "a", pos[0].Feature)
	assert.Equal(t, SeverityModerate, pos[0].Severity)
	assert.Equal(t, "c", pos[1].Feature)

	require.Len(t, neg, 1)
	assert.Equal(t, Attribution{Feature: "b", Value: -0.4, Severity: SeveritySevere}, neg[0])
}

func TestSliceFor(t *testing.T) {
	ds, err := dataset.Validate(&dataset.Table{
		Columns: []string{"Roll No", "Name", "Religion", "Math Marks", "Math Attendance", "Math Teacher", "Gender"},
		Rows: [][]string{
			{"1", "Amit", "Hindu", "80", "90", "A", "Male"},
			{"2", "Sara", "Islam", "70", "80", "B", "Female"},
		},
	})
	require.NoError(t, err)

	s, err := SliceFor(ds, "Math", "")
	require.NoError(t, err)
	assert.Equal(t, "Math Attendance", s.AttendanceName)
	assert.Equal(t, []string{"A", "B"}, s.Teachers)
	require.Len(t, s.Candidates, 2)
	assert.Equal(t, "Religion", s.Candidates[0].Name)
	assert.Equal(t, "Gender", s.Candidates[1].Name)

	s, err = SliceFor(ds, "Math", "Gender")
	require.NoError(t, err)
	require.Len(t, s.Candidates, 1)
	assert.Equal(t, []string{"Male", "Female"}, s.Candidates[0].Values)

	_, err = SliceFor(ds, "Math", "Name")
	require.ErrorIs(t, err, ErrMissingCategoricalColumn)

	_, err = SliceFor(ds, "Physics", "")
	require.ErrorIs(t, err, ErrMissingColumns)
}
