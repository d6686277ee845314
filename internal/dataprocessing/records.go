package dataprocessing

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/jordway1/homelessness/internal/errors"
	"github.com/jordway1/homelessness/pkg/contracts/domain"
)

// BindRecords converts the unioned table into typed longitudinal records.
// Year, CoC number, CoC name and the overall count column must exist after
// normalization; their absence is a schema error since every downstream
// aggregation depends on them. Count cells that are null, empty or
// unparseable bind as nil rather than zero.
func BindRecords(t *Table) ([]domain.LongitudinalRecord, error) {
	for _, col := range []string{ColYear, ColCoCNumber, ColCoCName, ColOverall} {
		if t.ColumnIndex(col) < 0 {
			return nil, apperrors.NewSchemaError(
				fmt.Sprintf("required column %q missing after normalization", col), nil).
				WithContext("columns", t.Columns)
		}
	}

	records := make([]domain.LongitudinalRecord, 0, t.RowCount())
	for i := range t.Rows {
		rec := domain.LongitudinalRecord{
			Year:                cellString(t, i, ColYear),
			CoCNumber:           cellString(t, i, ColCoCNumber),
			CoCName:             cellString(t, i, ColCoCName),
			Category:            cellText(t, i, ColCategory),
			OverallHomeless:     cellFloat(t, i, ColOverall),
			ShelteredHomeless:   cellFloat(t, i, ColSheltered),
			UnshelteredHomeless: cellFloat(t, i, ColUnsheltered),
		}
		if rec.CoCNumber == "" && rec.CoCName == "" {
			// Blank spacer rows appear at the bottom of some sheets.
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func cellString(t *Table, row int, column string) string {
	if v := t.Cell(row, column); v != nil {
		return strings.TrimSpace(*v)
	}
	return ""
}

// cellText returns a trimmed non-empty cell value, or nil.
func cellText(t *Table, row int, column string) *string {
	v := t.Cell(row, column)
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}

// cellFloat parses a numeric cell, tolerating thousands separators.
func cellFloat(t *Table, row int, column string) *float64 {
	v := t.Cell(row, column)
	if v == nil {
		return nil
	}
	s := strings.ReplaceAll(strings.TrimSpace(*v), ",", "")
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
