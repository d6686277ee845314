package domain

import (
	"time"
)

// YearlySheet holds the raw tabular contents of one reporting year's worksheet
// exactly as authored, before any column normalization.
type YearlySheet struct {
	Year    string     `json:"year"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// LongitudinalRecord is one CoC-year observation after union and backfill.
// (Year, CoCNumber) is unique once aggregate "Total" rows are removed.
// Category is nil for any CoC whose number/name pair does not appear in the
// most recent year's sheet.
type LongitudinalRecord struct {
	Year                string   `json:"year"`
	CoCNumber           string   `json:"coc_number"`
	CoCName             string   `json:"coc_name"`
	Category            *string  `json:"category,omitempty"`
	OverallHomeless     *float64 `json:"overall_homeless,omitempty"`
	ShelteredHomeless   *float64 `json:"sheltered_homeless,omitempty"`
	UnshelteredHomeless *float64 `json:"unsheltered_homeless,omitempty"`
}

// StateCode returns the two-letter state prefix of the CoC number
// (e.g. "MA-500" -> "MA"). Empty when the number is too short to carry one.
func (r LongitudinalRecord) StateCode() string {
	if len(r.CoCNumber) < 2 {
		return ""
	}
	return r.CoCNumber[:2]
}

// PopulationRecord is a static population estimate for one state or territory.
type PopulationRecord struct {
	StateName  string `json:"state_name"`
	Population int64  `json:"population"`
}

// CovidRecord is a cumulative case/death snapshot for one state at a fixed date.
type CovidRecord struct {
	Date      time.Time `json:"date"`
	StateName string    `json:"state_name"`
	Cases     int64     `json:"cases"`
	Deaths    int64     `json:"deaths"`
}

// EnrichedRecord is a single-year LongitudinalRecord joined to population and
// COVID data on the derived state name, with per-10,000-resident rates.
// Rate fields are nil whenever the state could not be resolved or its
// population is missing or zero; such rows keep their raw counts but are
// excluded from rate-based rankings.
type EnrichedRecord struct {
	LongitudinalRecord

	StateName    *string  `json:"state_name,omitempty"`
	Population   *int64   `json:"population,omitempty"`
	CovidCases   *int64   `json:"covid_cases,omitempty"`
	CovidDeaths  *int64   `json:"covid_deaths,omitempty"`
	HomelessRate *float64 `json:"homeless_rate_per_10k,omitempty"`
	CaseRate     *float64 `json:"case_rate_per_10k,omitempty"`
	DeathRate    *float64 `json:"death_rate_per_10k,omitempty"`
}

// HasRates reports whether the record's per-10k rates are usable for ranking.
func (r EnrichedRecord) HasRates() bool {
	return r.HomelessRate != nil
}

// YearTotal is a national aggregate for one reporting year.
type YearTotal struct {
	Year                string  `json:"year"`
	OverallHomeless     float64 `json:"overall_homeless"`
	ShelteredHomeless   float64 `json:"sheltered_homeless"`
	UnshelteredHomeless float64 `json:"unsheltered_homeless"`
	CoCCount            int     `json:"coc_count"`
}

// CategoryTotal aggregates target-year counts by CoC category.
type CategoryTotal struct {
	Category        string  `json:"category"`
	OverallHomeless float64 `json:"overall_homeless"`
	CoCCount        int     `json:"coc_count"`
}

// RankedRow is one entry of a top-N ranking table.
type RankedRow struct {
	Rank      int     `json:"rank"`
	CoCNumber string  `json:"coc_number"`
	CoCName   string  `json:"coc_name"`
	Value     float64 `json:"value"`
}

// RunStats summarizes data-quality counters collected across a pipeline run.
// Unresolved keys are surfaced, not fatal (rows are retained with null
// enrichment and skipped by rate rankings).
type RunStats struct {
	RunID            string        `json:"run_id"`
	StartedAt        time.Time     `json:"started_at"`
	Duration         time.Duration `json:"duration"`
	SheetsLoaded     int           `json:"sheets_loaded"`
	RowsUnioned      int           `json:"rows_unioned"`
	TotalRowsDropped int           `json:"total_rows_dropped"`
	BackfillMisses   int           `json:"backfill_misses"`
	UnresolvedStates int           `json:"unresolved_states"`
	MissingPop       int           `json:"missing_population"`
}
