package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stemsi/marksheet-analytics/internal/bias"
	"github.com/stemsi/marksheet-analytics/internal/effectiveness"
)

// Analysis holds the engine thresholds. Fields missing from the YAML file
// keep their defaults.
//
//	effectiveness:
//	  alpha: 0.05
//	bias:
//	  max_categories: 4
type Analysis struct {
	Effectiveness effectiveness.Options `yaml:"effectiveness"`
	Bias          bias.Options          `yaml:"bias"`
}

// DefaultAnalysis returns the production thresholds.
func DefaultAnalysis() Analysis {
	return Analysis{
		Effectiveness: effectiveness.DefaultOptions(),
		Bias:          bias.DefaultOptions(),
	}
}

// LoadAnalysis overlays the YAML file at path onto DefaultAnalysis. An
// empty path returns the defaults.
func LoadAnalysis(path string) (Analysis, error) {
	a := DefaultAnalysis()
	if path == "" {
		return a, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return a, fmt.Errorf("read analysis config: %w", err)
	}
	if err := yaml.Unmarshal(data, &a); err != nil {
		return a, fmt.Errorf("parse analysis config: %w", err)
	}
	if err := a.validate(); err != nil {
		return a, fmt.Errorf("analysis config %s: %w", path, err)
	}
	return a, nil
}

func (a Analysis) validate() error {
	e := a.Effectiveness
	switch {
	case e.Alpha <= 0 || e.Alpha >= 1:
		return fmt.Errorf("effectiveness.alpha must be in (0,1), got %v", e.Alpha)
	case e.MeanWeight < 0 || e.SpreadWeight < 0:
		return fmt.Errorf("effectiveness weights must not be negative")
	case e.MinGroupSize < 1:
		return fmt.Errorf("effectiveness.min_group_size must be at least 1")
	case a.Bias.MaxCategories < 1:
		return fmt.Errorf("bias.max_categories must be at least 1")
	case a.Bias.MinTeacherStudents < 0:
		return fmt.Errorf("bias.min_teacher_students must not be negative")
	}
	return nil
}
