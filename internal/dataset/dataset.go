package dataset

import (
	"math"
	"strconv"
)

// Dataset is a validated marksheet. It is immutable once built: every
// accessor returns a copy, so a Dataset may be shared freely between
// concurrent analyses.
type Dataset struct {
	columns  []string
	rollNos  []string
	numeric  map[string][]float64 // Marks/Attendance, NaN = missing
	text     map[string][]string  // everything else, "" = missing
	subjects []string
	teachers map[string]bool
}

// Len returns the number of student rows.
func (d *Dataset) Len() int { return len(d.rollNos) }

// Columns returns the column names in file order.
func (d *Dataset) Columns() []string { return append([]string(nil), d.columns...) }

// Subjects returns the detected subjects in lexical order.
func (d *Dataset) Subjects() []string { return append([]string(nil), d.subjects...) }

// HasColumn reports whether the dataset carries the named column.
func (d *Dataset) HasColumn(name string) bool {
	if name == ColumnRollNo {
		return true
	}
	_, num := d.numeric[name]
	_, txt := d.text[name]
	return num || txt
}

// HasTeacher reports whether a Teacher column exists for the subject.
func (d *Dataset) HasTeacher(subject string) bool { return d.teachers[subject] }

// TeacherSubjects returns the subjects that carry a Teacher column.
func (d *Dataset) TeacherSubjects() []string {
	var out []string
	for _, s := range d.subjects {
		if d.teachers[s] {
			out = append(out, s)
		}
	}
	return out
}

// RollNos returns the student keys in row order.
func (d *Dataset) RollNos() []string { return append([]string(nil), d.rollNos...) }

// Numeric returns a copy of a Marks or Attendance column.
func (d *Dataset) Numeric(column string) ([]float64, bool) {
	v, ok := d.numeric[column]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), v...), true
}

// Text returns a copy of a non-numeric column (Name, Gender, Religion or a
// Teacher column).
func (d *Dataset) Text(column string) ([]string, bool) {
	if column == ColumnRollNo {
		return d.RollNos(), true
	}
	v, ok := d.text[column]
	if !ok {
		return nil, false
	}
	return append([]string(nil), v...), true
}

// Marks returns the marks column of a subject.
func (d *Dataset) Marks(subject string) ([]float64, bool) {
	return d.Numeric(MarksColumn(subject))
}

// Attendance returns the attendance column of a subject.
func (d *Dataset) Attendance(subject string) ([]float64, bool) {
	return d.Numeric(AttendanceColumn(subject))
}

// Teachers returns the teacher column of a subject.
func (d *Dataset) Teachers(subject string) ([]string, bool) {
	return d.Text(TeacherColumn(subject))
}

// Table renders the dataset back into a raw Table. Validating the result
// yields an identical Dataset.
func (d *Dataset) Table() *Table {
	t := &Table{
		Columns: d.Columns(),
		Rows:    make([][]string, d.Len()),
	}
	for i := range t.Rows {
		row := make([]string, len(d.columns))
		for j, col := range d.columns {
			switch {
			case col == ColumnRollNo:
				row[j] = d.rollNos[i]
			case d.numeric[col] != nil:
				row[j] = formatNumber(d.numeric[col][i])
			default:
				row[j] = d.text[col][i]
			}
		}
		t.Rows[i] = row
	}
	return t
}

func formatNumber(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Round2 rounds half-to-even at two decimal places.
func Round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
