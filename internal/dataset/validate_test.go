package dataset

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table(columns []string, rows ...[]string) *Table {
	return &Table{Columns: columns, Rows: rows}
}

func TestValidateDetectsSubjects(t *testing.T) {
	tbl := table(
		[]string{"Roll No", "Name", "Math Marks", "Math Attendance", "Math Teacher", "Science Attendance", "Science Marks", "Gender"},
		[]string{"1", "Amit", "85", "90", "A", "80", "75", "Male"},
		[]string{"2", "Neha", "78.456", "85", "B", "92", "88", "Female"},
	)

	ds, err := Validate(tbl)
	require.NoError(t, err)

	assert.Equal(t, []string{"Math", "Science"}, ds.Subjects())
	assert.Equal(t, 2, ds.Len())
	assert.True(t, ds.HasTeacher("Math"))
	assert.False(t, ds.HasTeacher("Science"))
	assert.Equal(t, []string{"Math"}, ds.TeacherSubjects())

	marks, ok := ds.Marks("Math")
	require.True(t, ok)
	assert.Equal(t, []float64{85, 78.46}, marks)

	gender, ok := ds.Text("Gender")
	require.True(t, ok)
	assert.Equal(t, []string{"Male", "Female"}, gender)
}

func TestValidateDoesNotMutateInput(t *testing.T) {
	tbl := table(
		[]string{"Roll No", "Math Marks", "Math Attendance"},
		[]string{"1", "85.129", "90"},
	)
	_, err := Validate(tbl)
	require.NoError(t, err)
	assert.Equal(t, "85.129", tbl.Rows[0][1])
}

func TestValidateStructuralErrors(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		want    error
		detail  string
	}{
		{
			name:    "attendance without marks",
			columns: []string{"Roll No", "Math Marks", "Math Attendance", "Physics Attendance"},
			want:    ErrInvalidDataStructure,
			detail:  "Physics Marks",
		},
		{
			name:    "marks without attendance",
			columns: []string{"Roll No", "Math Marks"},
			want:    ErrInvalidDataStructure,
			detail:  "Math Attendance",
		},
		{
			name:    "teacher without marks and attendance",
			columns: []string{"Roll No", "Math Marks", "Math Attendance", "Art Teacher"},
			want:    ErrInvalidDataStructure,
			detail:  "Art Teacher",
		},
		{
			name:    "unknown column",
			columns: []string{"Roll No", "Math Marks", "Math Attendance", "Shoe Size"},
			want:    ErrUnknownColumn,
			detail:  "Shoe Size",
		},
		{
			name:    "bare suffix is unknown",
			columns: []string{"Roll No", "Math Marks", "Math Attendance", "Marks"},
			want:    ErrUnknownColumn,
		},
		{
			name:    "no subjects",
			columns: []string{"Roll No", "Name"},
			want:    ErrInvalidDataStructure,
			detail:  "at least one subject",
		},
		{
			name:    "missing roll no column",
			columns: []string{"Name", "Math Marks", "Math Attendance"},
			want:    ErrInvalidDataStructure,
			detail:  "Roll No",
		},
		{
			name:    "duplicate header",
			columns: []string{"Roll No", "Math Marks", "Math Attendance", "Math Marks"},
			want:    ErrInvalidDataStructure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := make([]string, len(tt.columns))
			for i := range row {
				row[i] = "1"
			}
			_, err := Validate(table(tt.columns, row))
			require.ErrorIs(t, err, tt.want)
			if tt.detail != "" {
				assert.Contains(t, err.Error(), tt.detail)
			}
		})
	}
}

func TestValidateRollNo(t *testing.T) {
	cols := []string{"Roll No", "Math Marks", "Math Attendance"}

	_, err := Validate(table(cols,
		[]string{"1", "50", "50"},
		[]string{"2", "50", "50"},
		[]string{"1", "50", "50"},
	))
	require.ErrorIs(t, err, ErrDuplicateKey)
	assert.Contains(t, err.Error(), "rows 2 and 4")

	_, err = Validate(table(cols,
		[]string{"1", "50", "50"},
		[]string{"1.0", "50", "50"},
	))
	require.ErrorIs(t, err, ErrDuplicateKey, "numeric roll numbers compare by value")

	_, err = Validate(table(cols,
		[]string{"01", "50", "50"},
		[]string{"1", "50", "50"},
	))
	require.ErrorIs(t, err, ErrDuplicateKey)

	ds, err := Validate(table(cols,
		[]string{"", "50", "50"},
		[]string{"A-1", "50", "50"},
	))
	require.NoError(t, err, "a single blank roll number is accepted")
	assert.Equal(t, []string{"", "A-1"}, ds.RollNos())

	_, err = Validate(table(cols,
		[]string{"", "50", "50"},
		[]string{"NA", "50", "50"},
	))
	require.ErrorIs(t, err, ErrDuplicateKey, "two blank roll numbers collide")

	ds, err = Validate(table([]string{"RollNo", "Math Marks", "Math Attendance"}, []string{"7", "50", "50"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Roll No", "Math Marks", "Math Attendance"}, ds.Columns())
	assert.Equal(t, []string{"7"}, ds.RollNos())
}

func TestValidateNumericColumns(t *testing.T) {
	cols := []string{"Roll No", "Math Marks", "Math Attendance"}

	tests := []struct {
		name  string
		marks []string
		want  error
	}{
		{"non numeric", []string{"50", "abc"}, ErrNonNumeric},
		{"above range", []string{"50", "100.01"}, ErrOutOfRange},
		{"below range", []string{"-1", "20"}, ErrOutOfRange},
		{"non numeric wins over range", []string{"150", "x"}, ErrNonNumeric},
		{"infinity", []string{"Inf", "20"}, ErrOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([][]string, len(tt.marks))
			for i, m := range tt.marks {
				rows[i] = []string{string(rune('1' + i)), m, "50"}
			}
			_, err := Validate(table(cols, rows...))
			require.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "Math Marks")
		})
	}
}

func TestValidateMissingScoresAreNaN(t *testing.T) {
	ds, err := Validate(table(
		[]string{"Roll No", "Math Marks", "Math Attendance", "Math Teacher"},
		[]string{"1", "", "NA", ""},
		[]string{"2", "100", "0", "A"},
	))
	require.NoError(t, err)

	marks, _ := ds.Marks("Math")
	att, _ := ds.Attendance("Math")
	teachers, _ := ds.Teachers("Math")
	assert.True(t, math.IsNaN(marks[0]))
	assert.True(t, math.IsNaN(att[0]))
	assert.Equal(t, []string{"", "A"}, teachers)
	assert.Equal(t, 100.0, marks[1])
}

func TestValidateValuesInRangeWithTwoDecimals(t *testing.T) {
	raw := []string{"0", "0.005", "33.3333", "66.666", "99.999", "100", "12.345"}
	rows := make([][]string, len(raw))
	for i, v := range raw {
		rows[i] = []string{strings.Repeat("r", i+1), v, v}
	}
	ds, err := Validate(table([]string{"Roll No", "Bio Marks", "Bio Attendance"}, rows...))
	require.NoError(t, err)

	for _, col := range []string{"Bio Marks", "Bio Attendance"} {
		values, ok := ds.Numeric(col)
		require.True(t, ok)
		for _, v := range values {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 100.0)
			assert.InDelta(t, v, Round2(v), 1e-12)
		}
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	first, err := Validate(table(
		[]string{"Roll No", "Name", "Math Marks", "Math Attendance", "Math Teacher", "Religion"},
		[]string{"1", "Amit", "85.555", "90.1", "A", "Hindu"},
		[]string{"2", "", "", "85", "B", ""},
		[]string{"3", "Rohan", "92", "95.999", "", "Islam"},
	))
	require.NoError(t, err)

	second, err := Validate(first.Table())
	require.NoError(t, err)

	assert.Equal(t, first.Subjects(), second.Subjects())
	assert.Equal(t, first.Table(), second.Table())
}

func TestDatasetAccessorsReturnCopies(t *testing.T) {
	ds, err := Validate(table(
		[]string{"Roll No", "Math Marks", "Math Attendance"},
		[]string{"1", "40", "50"},
	))
	require.NoError(t, err)

	marks, _ := ds.Marks("Math")
	marks[0] = 99
	again, _ := ds.Marks("Math")
	assert.Equal(t, 40.0, again[0])
}
