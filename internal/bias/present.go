package bias

import (
	"math"
	"sort"
)

// Annotation is the reading guide shown next to attribution charts.
const Annotation = "Bias > 0.15 is considered significant. Bias > 0.30 is severe."

// Severity is an advisory band for the magnitude of an attribution.
type Severity string

const (
	SeverityNegligible Severity = "negligible"
	SeverityMild       Severity = "mild"
	SeverityModerate   Severity = "moderate"
	SeveritySevere     Severity = "severe"
)

// SeverityOf bands |v|: below 0.05 negligible, below 0.15 mild, up to 0.30
// moderate, above that severe.
func SeverityOf(v float64) Severity {
	a := math.Abs(v)
	switch {
	case a < 0.05:
		return SeverityNegligible
	case a < 0.15:
		return SeverityMild
	case a <= 0.30:
		return SeverityModerate
	default:
		return SeveritySevere
	}
}

// Attribution is one feature's signed mean attribution.
type Attribution struct {
	Feature  string   `json:"feature"`
	Value    float64  `json:"value"`
	Severity Severity `json:"severity"`
}

// Partition splits the attributions by sign for charting: Positive holds
// values >= 0, Negative the rest. Both follow the feature order of the
// result.
func (r Result) Partition() (positive, negative []Attribution) {
	for _, f := range r.orderedFeatures() {
		v := r.Attributions[f]
		a := Attribution{Feature: f, Value: v, Severity: SeverityOf(v)}
		if v >= 0 {
			positive = append(positive, a)
		} else {
			negative = append(negative, a)
		}
	}
	return positive, negative
}

func (r Result) orderedFeatures() []string {
	if len(r.Features) == len(r.Attributions) {
		return r.Features
	}
	names := make([]string, 0, len(r.Attributions))
	for f := range r.Attributions {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}
