package dataprocessing

import (
	"log/slog"

	"github.com/jordway1/homelessness/pkg/contracts/domain"
)

// Canonical column names after normalization. The published workbook carries
// many more count columns; these are the ones the report consumes.
const (
	ColYear        = "Year"
	ColCoCNumber   = "CoC_Number"
	ColCoCName     = "CoC_Name"
	ColCategory    = "CoC_Category"
	ColOverall     = "Overall_Homeless"
	ColSheltered   = "Sheltered_Total_Homeless"
	ColUnsheltered = "Unsheltered_Homeless"
)

// UnionStats reports row accounting for the union stage.
type UnionStats struct {
	RowsIn           int
	RowsOut          int
	TotalRowsDropped int
}

// Union concatenates normalized per-year sheets into one longitudinal table,
// prepending a Year column populated from each sheet's tag. Column sets need
// not match across years: the result carries the union of all columns in
// first-seen order, with nil cells where a sheet lacked a column. Rows whose
// CoC name equals the sentinel are pre-aggregated totals and are dropped to
// avoid double counting.
func Union(sheets []domain.YearlySheet, sentinel string) (*Table, UnionStats) {
	var stats UnionStats

	columns := []string{ColYear}
	colIdx := map[string]int{ColYear: 0}
	for _, sheet := range sheets {
		for _, c := range sheet.Columns {
			if _, ok := colIdx[c]; !ok {
				colIdx[c] = len(columns)
				columns = append(columns, c)
			}
		}
	}

	out := &Table{Columns: columns}
	for _, sheet := range sheets {
		nameIdx := -1
		for i, c := range sheet.Columns {
			if c == ColCoCName {
				nameIdx = i
				break
			}
		}

		for _, row := range sheet.Rows {
			stats.RowsIn++
			if nameIdx >= 0 && nameIdx < len(row) && row[nameIdx] == sentinel {
				stats.TotalRowsDropped++
				continue
			}

			cells := make([]*string, len(columns))
			cells[0] = strPtr(sheet.Year)
			for i, c := range sheet.Columns {
				if i >= len(row) {
					break
				}
				cells[colIdx[c]] = strPtr(row[i])
			}
			out.Rows = append(out.Rows, cells)
		}
	}

	stats.RowsOut = len(out.Rows)
	slog.Debug("Unioned yearly sheets",
		slog.Int("sheets", len(sheets)),
		slog.Int("rows_in", stats.RowsIn),
		slog.Int("rows_out", stats.RowsOut),
		slog.Int("total_rows_dropped", stats.TotalRowsDropped))
	return out, stats
}
