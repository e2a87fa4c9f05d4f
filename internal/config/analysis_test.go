package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "analysis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAnalysisDefaults(t *testing.T) {
	a, err := LoadAnalysis("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAnalysis(), a)
}

func TestLoadAnalysisOverlay(t *testing.T) {
	path := writeYAML(t, "effectiveness:\n  alpha: 0.05\nbias:\n  max_categories: 3\n")

	a, err := LoadAnalysis(path)
	require.NoError(t, err)

	def := DefaultAnalysis()
	assert.Equal(t, 0.05, a.Effectiveness.Alpha)
	assert.Equal(t, 3, a.Bias.MaxCategories)
	assert.Equal(t, def.Effectiveness.MeanWeight, a.Effectiveness.MeanWeight, "unset fields keep defaults")
	assert.Equal(t, def.Bias.MinTeacherStudents, a.Bias.MinTeacherStudents)
}

func TestLoadAnalysisErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.yaml")},
		{"bad yaml", writeYAML(t, "effectiveness: [")},
		{"alpha out of range", writeYAML(t, "effectiveness:\n  alpha: 1.5\n")},
		{"no categories", writeYAML(t, "bias:\n  max_categories: 0\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadAnalysis(tt.path)
			assert.Error(t, err)
		})
	}
}

func TestParseOrigins(t *testing.T) {
	assert.Nil(t, parseOrigins(""))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, parseOrigins(" https://a.example, ,https://b.example "))
}
