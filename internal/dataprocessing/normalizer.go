package dataprocessing

import (
	"regexp"
	"strings"

	apperrors "github.com/jordway1/homelessness/internal/errors"
	"github.com/jordway1/homelessness/pkg/contracts/domain"
)

// Rule is one declarative column-rename step: every match of Pattern is
// replaced with Replacement.
type Rule struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// RuleSet normalizes column names so heterogeneous yearly sheets can be
// unioned. Rules apply in order, per column, best-effort: a column matching no
// rule passes through unchanged. Application is idempotent.
type RuleSet []Rule

// NewRuleSet builds the standard normalization rules: strip the trailing
// year suffix (e.g. "Overall Homeless, 2019" -> "Overall Homeless"), then
// collapse internal whitespace runs to a single underscore.
func NewRuleSet(yearSuffixPattern string) (RuleSet, error) {
	suffix, err := regexp.Compile(yearSuffixPattern)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid year suffix pattern", err).
			WithContext("pattern", yearSuffixPattern)
	}
	return RuleSet{
		{Pattern: suffix, Replacement: ""},
		{Pattern: regexp.MustCompile(`\s+`), Replacement: "_"},
	}, nil
}

// NormalizeColumn applies every rule to a single column name.
func (rs RuleSet) NormalizeColumn(name string) string {
	out := strings.TrimSpace(name)
	for _, rule := range rs {
		out = rule.Pattern.ReplaceAllString(out, rule.Replacement)
	}
	return out
}

// NormalizeSheet returns a copy of the sheet with every column name
// normalized. Row data is shared, not copied; stages treat tables as
// immutable once produced.
func (rs RuleSet) NormalizeSheet(sheet domain.YearlySheet) domain.YearlySheet {
	columns := make([]string, len(sheet.Columns))
	for i, c := range sheet.Columns {
		columns[i] = rs.NormalizeColumn(c)
	}
	return domain.YearlySheet{
		Year:    sheet.Year,
		Columns: columns,
		Rows:    sheet.Rows,
	}
}
