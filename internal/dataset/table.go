package dataset

import "strings"

// Fixed column names accepted alongside subject columns.
const (
	ColumnRollNo   = "Roll No"
	ColumnName     = "Name"
	ColumnGender   = "Gender"
	ColumnReligion = "Religion"
)

// rollNoAliases are header spellings normalized to ColumnRollNo.
var rollNoAliases = map[string]bool{
	"Roll No": true,
	"RollNo":  true,
}

// Subject column suffixes.
const (
	suffixMarks      = " Marks"
	suffixAttendance = " Attendance"
	suffixTeacher    = " Teacher"
)

// MarksColumn returns the marks column name for a subject.
func MarksColumn(subject string) string { return subject + suffixMarks }

// AttendanceColumn returns the attendance column name for a subject.
func AttendanceColumn(subject string) string { return subject + suffixAttendance }

// TeacherColumn returns the teacher column name for a subject.
func TeacherColumn(subject string) string { return subject + suffixTeacher }

// Table is an unvalidated rectangular table of string cells, as produced by
// a file reader. Rows shorter than the header are treated as padded with
// empty cells.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Cell returns the trimmed cell at (row, col), or "" when the row is short.
func (t *Table) Cell(row, col int) string {
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// missingTokens are cell values read as missing, mirroring the usual NA
// spellings found in exported spreadsheets.
var missingTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"NaN":  true,
	"nan":  true,
	"null": true,
	"NULL": true,
	"None": true,
}

// IsMissing reports whether a raw cell value denotes a missing value.
func IsMissing(v string) bool {
	return missingTokens[strings.TrimSpace(v)]
}
