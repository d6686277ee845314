package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/jordway1/homelessness/internal/errors"
	"github.com/jordway1/homelessness/pkg/contracts/domain"
)

// LoadWorkbook reads the PIT workbook and extracts one raw sheet per requested
// year, preserving column order as authored. Sheet names in the published
// workbook are the four-digit years, occasionally padded with stray spaces.
func LoadWorkbook(filePath string, years []string) ([]domain.YearlySheet, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, apperrors.NewRetrievalError("failed to open workbook", err).
			WithContext("path", filePath)
	}
	defer f.Close()

	sheetByName := make(map[string]string)
	for _, name := range f.GetSheetList() {
		sheetByName[strings.TrimSpace(name)] = name
	}

	sheets := make([]domain.YearlySheet, 0, len(years))
	for _, year := range years {
		name, ok := sheetByName[year]
		if !ok {
			return nil, apperrors.NewSchemaError(
				fmt.Sprintf("workbook has no sheet for year %s", year), nil).
				WithContext("sheets", f.GetSheetList())
		}

		rows, err := f.GetRows(name)
		if err != nil {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("failed to read sheet %s", name), err)
		}
		if len(rows) < 2 {
			return nil, apperrors.NewSchemaError(
				fmt.Sprintf("sheet %s has no data rows", name), nil)
		}

		sheet := domain.YearlySheet{
			Year:    year,
			Columns: rows[0],
			Rows:    padRows(rows[1:], len(rows[0])),
		}
		slog.Debug("Loaded sheet",
			slog.String("year", year),
			slog.Int("columns", len(sheet.Columns)),
			slog.Int("rows", len(sheet.Rows)))
		sheets = append(sheets, sheet)
	}

	return sheets, nil
}

// padRows right-pads short rows so every row has one cell per header column.
// excelize drops trailing empty cells when reading.
func padRows(rows [][]string, width int) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) >= width {
			out[i] = row[:width]
			continue
		}
		padded := make([]string, width)
		copy(padded, row)
		out[i] = padded
	}
	return out
}

// LoadCovidCSV parses the cumulative state-level COVID series and keeps only
// the rows matching the snapshot date. Expected columns: date, state, cases,
// deaths (the published series also carries fips, which is ignored).
func LoadCovidCSV(r io.Reader, snapshot time.Time) ([]domain.CovidRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewRetrievalError("failed to read COVID CSV header", err)
	}

	cols, err := requireColumns(header, "date", "state", "cases", "deaths")
	if err != nil {
		return nil, err
	}

	want := snapshot.Format("2006-01-02")
	var records []domain.CovidRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("malformed COVID CSV row at line %d", line), err)
		}
		if len(row) < len(header) {
			continue
		}
		if row[cols["date"]] != want {
			continue
		}

		cases, err := strconv.ParseInt(strings.TrimSpace(row[cols["cases"]]), 10, 64)
		if err != nil {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("invalid case count at line %d", line), err)
		}
		deaths, err := strconv.ParseInt(strings.TrimSpace(row[cols["deaths"]]), 10, 64)
		if err != nil {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("invalid death count at line %d", line), err)
		}

		records = append(records, domain.CovidRecord{
			Date:      snapshot,
			StateName: strings.TrimSpace(row[cols["state"]]),
			Cases:     cases,
			Deaths:    deaths,
		})
	}

	slog.Debug("Loaded COVID snapshot",
		slog.String("date", want),
		slog.Int("states", len(records)))
	return records, nil
}

// LoadPopulationCSV parses the Census population estimates. Expected columns:
// NAME and POPESTIMATE2019. When a SUMLEV column is present, only state-level
// rows (040) are kept; the full dataset also carries national and regional
// aggregates.
func LoadPopulationCSV(r io.Reader) ([]domain.PopulationRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewRetrievalError("failed to read population CSV header", err)
	}

	cols, err := requireColumns(header, "NAME", "POPESTIMATE2019")
	if err != nil {
		return nil, err
	}
	sumlevIdx := -1
	for i, h := range header {
		if strings.TrimSpace(h) == "SUMLEV" {
			sumlevIdx = i
		}
	}

	var records []domain.PopulationRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("malformed population CSV row at line %d", line), err)
		}
		if len(row) < len(header) {
			continue
		}
		if sumlevIdx >= 0 && strings.TrimSpace(row[sumlevIdx]) != "040" {
			continue
		}

		pop, err := strconv.ParseInt(strings.TrimSpace(row[cols["POPESTIMATE2019"]]), 10, 64)
		if err != nil {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("invalid population estimate at line %d", line), err)
		}

		records = append(records, domain.PopulationRecord{
			StateName:  strings.TrimSpace(row[cols["NAME"]]),
			Population: pop,
		})
	}

	slog.Debug("Loaded population estimates", slog.Int("states", len(records)))
	return records, nil
}

// requireColumns maps required header names to their positions, failing with a
// schema error when any is absent.
func requireColumns(header []string, names ...string) (map[string]int, error) {
	cols := make(map[string]int, len(names))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	out := make(map[string]int, len(names))
	for _, name := range names {
		idx, ok := cols[name]
		if !ok {
			return nil, apperrors.NewSchemaError(
				fmt.Sprintf("required column %q missing", name), nil).
				WithContext("header", header)
		}
		out[name] = idx
	}
	return out, nil
}
