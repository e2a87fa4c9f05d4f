package bias

import (
	"fmt"

	"github.com/stemsi/marksheet-analytics/internal/dataset"
)

// demographicColumns are searched, in file order, when no category is
// named.
var demographicColumns = map[string]bool{
	dataset.ColumnGender:   true,
	dataset.ColumnReligion: true,
}

// SliceFor builds the Detect input for one subject. An empty category
// offers every demographic column of the dataset as a candidate.
func SliceFor(ds *dataset.Dataset, subject, category string) (Slice, error) {
	marks, ok := ds.Marks(subject)
	if !ok {
		return Slice{}, fmt.Errorf("%w: subject %q", ErrMissingColumns, subject)
	}
	att, _ := ds.Attendance(subject)

	s := Slice{
		Subject:        subject,
		AttendanceName: dataset.AttendanceColumn(subject),
		Marks:          marks,
		Attendance:     att,
	}
	if ds.HasTeacher(subject) {
		s.Teachers, _ = ds.Teachers(subject)
	}

	if category != "" {
		if !demographicColumns[category] {
			return Slice{}, fmt.Errorf("%w: '%s' is not a demographic column", ErrMissingCategoricalColumn, category)
		}
		values, ok := ds.Text(category)
		if !ok {
			return Slice{}, fmt.Errorf("%w: '%s' not in dataset", ErrMissingCategoricalColumn, category)
		}
		s.Candidates = []Column{{Name: category, Values: values}}
		return s, nil
	}

	for _, col := range ds.Columns() {
		if !demographicColumns[col] {
			continue
		}
		values, _ := ds.Text(col)
		s.Candidates = append(s.Candidates, Column{Name: col, Values: values})
	}
	return s, nil
}
