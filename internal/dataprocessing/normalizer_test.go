package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jordway1/homelessness/internal/errors"
	"github.com/jordway1/homelessness/pkg/contracts/domain"
)

const testSuffixPattern = `\s*,\s*[0-9]{4}$`

func TestNormalizeColumn(t *testing.T) {
	rules, err := NewRuleSet(testSuffixPattern)
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"year suffix stripped", "Overall Homeless, 2019", "Overall_Homeless"},
		{"different year same result", "Overall Homeless, 2018", "Overall_Homeless"},
		{"multi word count column", "Sheltered Total Homeless, 2012", "Sheltered_Total_Homeless"},
		{"no suffix passes through", "CoC Number", "CoC_Number"},
		{"already normalized", "CoC_Number", "CoC_Number"},
		{"surrounding whitespace trimmed", "  CoC Name  ", "CoC_Name"},
		{"internal runs collapse", "Overall   Homeless", "Overall_Homeless"},
		{"year not at end kept", "2019 Overall Homeless", "2019_Overall_Homeless"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.NormalizeColumn(tt.in))
		})
	}
}

// Applying the rule set twice must be a no-op relative to applying it once.
func TestNormalizeColumnIdempotent(t *testing.T) {
	rules, err := NewRuleSet(testSuffixPattern)
	require.NoError(t, err)

	inputs := []string{
		"Overall Homeless, 2019",
		"CoC Number",
		"Sheltered Total Homeless, 2007",
		"Unsheltered Homeless",
	}
	for _, in := range inputs {
		once := rules.NormalizeColumn(in)
		twice := rules.NormalizeColumn(once)
		assert.Equal(t, once, twice, "normalizing %q twice diverged", in)
	}
}

func TestNormalizeSheet(t *testing.T) {
	rules, err := NewRuleSet(testSuffixPattern)
	require.NoError(t, err)

	sheet := domain.YearlySheet{
		Year:    "2019",
		Columns: []string{"CoC Number", "CoC Name", "Overall Homeless, 2019"},
		Rows:    [][]string{{"MA-500", "Boston CoC", "6203"}},
	}

	got := rules.NormalizeSheet(sheet)
	assert.Equal(t, []string{"CoC_Number", "CoC_Name", "Overall_Homeless"}, got.Columns)
	assert.Equal(t, sheet.Rows, got.Rows)
	// Input sheet is untouched.
	assert.Equal(t, "CoC Number", sheet.Columns[0])
}

func TestNewRuleSetInvalidPattern(t *testing.T) {
	_, err := NewRuleSet(`[unclosed`)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}
