package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

type columnKind int

const (
	kindUnknown columnKind = iota
	kindFixed
	kindMarks
	kindAttendance
	kindTeacher
)

// subjectColumns records which columns of a subject were seen in pass 1.
type subjectColumns struct {
	marks      bool
	attendance bool
	teacher    bool
}

var fixedColumns = map[string]bool{
	ColumnRollNo:   true,
	ColumnName:     true,
	ColumnGender:   true,
	ColumnReligion: true,
}

// classify maps a (normalized) column name to its kind and subject.
func classify(col string) (columnKind, string) {
	if fixedColumns[col] {
		return kindFixed, ""
	}
	for _, c := range []struct {
		suffix string
		kind   columnKind
	}{
		{suffixMarks, kindMarks},
		{suffixAttendance, kindAttendance},
		{suffixTeacher, kindTeacher},
	} {
		if subject, ok := strings.CutSuffix(col, c.suffix); ok && strings.TrimSpace(subject) != "" {
			return c.kind, subject
		}
	}
	return kindUnknown, ""
}

// Validate checks a raw table against the marksheet schema and returns a
// new, normalized Dataset. The input table is never modified.
//
// Row numbers in error messages are spreadsheet rows (the header is row 1).
func Validate(t *Table) (*Dataset, error) {
	if t == nil || len(t.Columns) == 0 {
		return nil, fmt.Errorf("%w: the file has no header row", ErrInvalidDataStructure)
	}

	columns := make([]string, len(t.Columns))
	seen := make(map[string]bool, len(t.Columns))
	for i, c := range t.Columns {
		c = strings.TrimSpace(c)
		if rollNoAliases[c] {
			c = ColumnRollNo
		}
		if seen[c] {
			return nil, fmt.Errorf("%w: column %q appears more than once", ErrInvalidDataStructure, c)
		}
		seen[c] = true
		columns[i] = c
	}

	// Pass 1: classify every column and collect per-subject flags.
	kinds := make([]columnKind, len(columns))
	bySubject := make(map[string]*subjectColumns)
	var order []string
	for i, c := range columns {
		kind, subject := classify(c)
		kinds[i] = kind
		if subject == "" {
			continue
		}
		sc, ok := bySubject[subject]
		if !ok {
			sc = &subjectColumns{}
			bySubject[subject] = sc
			order = append(order, subject)
		}
		switch kind {
		case kindMarks:
			sc.marks = true
		case kindAttendance:
			sc.attendance = true
		case kindTeacher:
			sc.teacher = true
		}
	}

	// Pass 2: structural completeness.
	for _, s := range order {
		sc := bySubject[s]
		switch {
		case sc.marks && !sc.attendance:
			return nil, fmt.Errorf("%w: missing '%s' for '%s'", ErrInvalidDataStructure, AttendanceColumn(s), MarksColumn(s))
		case sc.attendance && !sc.marks:
			return nil, fmt.Errorf("%w: missing '%s' for '%s'", ErrInvalidDataStructure, MarksColumn(s), AttendanceColumn(s))
		case sc.teacher && !(sc.marks && sc.attendance):
			return nil, fmt.Errorf("%w: '%s' column is present but '%s' or '%s' is missing",
				ErrInvalidDataStructure, TeacherColumn(s), MarksColumn(s), AttendanceColumn(s))
		}
	}
	for i, c := range columns {
		if kinds[i] == kindUnknown {
			return nil, fmt.Errorf("%w: '%s'", ErrUnknownColumn, c)
		}
	}

	subjects := make([]string, 0, len(order))
	teachers := make(map[string]bool)
	for _, s := range order {
		subjects = append(subjects, s)
		if bySubject[s].teacher {
			teachers[s] = true
		}
	}
	if len(subjects) == 0 {
		return nil, fmt.Errorf("%w: at least one subject (with Marks and Attendance) is required", ErrInvalidDataStructure)
	}
	sort.Strings(subjects)

	ds := &Dataset{
		columns:  columns,
		numeric:  make(map[string][]float64),
		text:     make(map[string][]string),
		subjects: subjects,
		teachers: teachers,
	}

	rollIdx := -1
	for i, c := range columns {
		if c == ColumnRollNo {
			rollIdx = i
		}
	}
	if rollIdx < 0 {
		return nil, fmt.Errorf("%w: missing '%s' column", ErrInvalidDataStructure, ColumnRollNo)
	}
	rolls, err := validateRollNos(t, rollIdx)
	if err != nil {
		return nil, err
	}
	ds.rollNos = rolls

	for i, c := range columns {
		switch kinds[i] {
		case kindMarks, kindAttendance:
			values, err := parseScores(t, i, c)
			if err != nil {
				return nil, err
			}
			ds.numeric[c] = values
		case kindFixed:
			if c != ColumnRollNo {
				ds.text[c] = readText(t, i)
			}
		case kindTeacher:
			ds.text[c] = readText(t, i)
		}
	}

	return ds, nil
}

// validateRollNos checks roll numbers for duplicates. Numeric values are
// compared by value, so "1", "01" and "1.0" collide. A missing roll number
// is allowed once; a second one is a duplicate.
func validateRollNos(t *Table, col int) ([]string, error) {
	out := make([]string, len(t.Rows))
	firstSeen := make(map[string]int, len(t.Rows))
	for r := range t.Rows {
		v := t.Cell(r, col)
		if IsMissing(v) {
			v = ""
		}
		key := rollNoKey(v)
		if prev, dup := firstSeen[key]; dup {
			return nil, fmt.Errorf("%w: %q appears at rows %d and %d", ErrDuplicateKey, v, prev+2, r+2)
		}
		firstSeen[key] = r
		out[r] = v
	}
	return out, nil
}

func rollNoKey(v string) string {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "s:" + v
	}
	return "n:" + strconv.FormatFloat(f, 'f', -1, 64)
}

// parseScores reads a Marks/Attendance column. Type is checked across the
// whole column before range, so a column with both problems reports
// ErrNonNumeric.
func parseScores(t *Table, col int, name string) ([]float64, error) {
	values := make([]float64, len(t.Rows))
	for r := range t.Rows {
		raw := t.Cell(r, col)
		if IsMissing(raw) {
			values[r] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: '%s' has %q at row %d", ErrNonNumeric, name, raw, r+2)
		}
		values[r] = v
	}
	for r, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if v < 0 || v > 100 {
			return nil, fmt.Errorf("%w: '%s' has %v at row %d", ErrOutOfRange, name, v, r+2)
		}
		values[r] = Round2(v)
	}
	return values, nil
}

func readText(t *Table, col int) []string {
	out := make([]string, len(t.Rows))
	for r := range t.Rows {
		if v := t.Cell(r, col); !IsMissing(v) {
			out[r] = v
		}
	}
	return out
}
