// Package sample generates synthetic marksheets for demos and load tests.
package sample

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/stemsi/marksheet-analytics/internal/dataset"
)

var (
	genders   = []string{"Male", "Female"}
	religions = []string{"Hindu", "Islam", "Christian", "Sikh"}
	surnames  = []string{"Sharma", "Verma", "Iyer", "Khan", "Das", "Nair", "Gupta", "Singh", "Rao", "Bose"}
)

// Options controls the generated marksheet.
type Options struct {
	Students           int
	Subjects           []string
	TeachersPerSubject int
	// MissingRate is the share of marks/attendance cells left blank.
	MissingRate float64
	// GenderGap is added to the marks of male students.
	GenderGap float64
	Seed      uint64
}

// DefaultOptions generates 120 students across three subjects.
func DefaultOptions() Options {
	return Options{
		Students:           120,
		Subjects:           []string{"Math", "Science", "English"},
		TeachersPerSubject: 3,
		MissingRate:        0.02,
		GenderGap:          0,
		Seed:               1,
	}
}

// Generate builds a marksheet table that passes dataset.Validate. Each
// teacher gets a fixed offset so the effectiveness engine has a signal.
func Generate(opts Options) *dataset.Table {
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	teachers := max(opts.TeachersPerSubject, 1)

	cols := []string{dataset.ColumnRollNo, dataset.ColumnName, dataset.ColumnGender, dataset.ColumnReligion}
	for _, s := range opts.Subjects {
		cols = append(cols, dataset.MarksColumn(s), dataset.AttendanceColumn(s), dataset.TeacherColumn(s))
	}

	offsets := make(map[string]float64)
	for _, s := range opts.Subjects {
		for k := range teachers {
			offsets[teacherName(s, k)] = rng.NormFloat64() * 8
		}
	}

	t := &dataset.Table{Columns: cols}
	for i := range opts.Students {
		gender := genders[rng.IntN(len(genders))]
		row := []string{
			strconv.Itoa(i + 1),
			fmt.Sprintf("Student %s", surnames[rng.IntN(len(surnames))]),
			gender,
			religions[rng.IntN(len(religions))],
		}
		for _, s := range opts.Subjects {
			teacher := teacherName(s, rng.IntN(teachers))
			att := clamp(75 + rng.NormFloat64()*12)
			marks := 55 + offsets[teacher] + 0.3*(att-75) + rng.NormFloat64()*8
			if gender == "Male" {
				marks += opts.GenderGap
			}
			row = append(row, cell(rng, clamp(marks), opts.MissingRate), cell(rng, att, opts.MissingRate), teacher)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func teacherName(subject string, k int) string {
	return fmt.Sprintf("%s Teacher %c", subject, 'A'+k)
}

func cell(rng *rand.Rand, v, missingRate float64) string {
	if rng.Float64() < missingRate {
		return ""
	}
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
