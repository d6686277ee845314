// Package report is the presentation layer: it aggregates, ranks and renders
// the pipeline output into CSV tables and a Markdown summary. It only reads
// the run result; every transformation lives upstream in dataprocessing.
package report

import (
	"log/slog"
	"sort"

	"github.com/jordway1/homelessness/pkg/contracts/domain"
)

// Generator derives the report tables from a pipeline result.
type Generator struct {
	logger      *slog.Logger
	rankingSize int
}

// NewGenerator creates a report generator producing top-N rankings of the
// given size.
func NewGenerator(logger *slog.Logger, rankingSize int) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	if rankingSize <= 0 {
		rankingSize = 10
	}
	return &Generator{logger: logger, rankingSize: rankingSize}
}

// YearTotals aggregates national totals per reporting year, in year order.
func (g *Generator) YearTotals(records []domain.LongitudinalRecord) []domain.YearTotal {
	byYear := make(map[string]*domain.YearTotal)
	for _, rec := range records {
		total, ok := byYear[rec.Year]
		if !ok {
			total = &domain.YearTotal{Year: rec.Year}
			byYear[rec.Year] = total
		}
		total.CoCCount++
		if rec.OverallHomeless != nil {
			total.OverallHomeless += *rec.OverallHomeless
		}
		if rec.ShelteredHomeless != nil {
			total.ShelteredHomeless += *rec.ShelteredHomeless
		}
		if rec.UnshelteredHomeless != nil {
			total.UnshelteredHomeless += *rec.UnshelteredHomeless
		}
	}

	totals := make([]domain.YearTotal, 0, len(byYear))
	for _, t := range byYear {
		totals = append(totals, *t)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Year < totals[j].Year })
	return totals
}

// CategoryTotals aggregates target-year counts by backfilled CoC category.
// Records with no category are grouped under "Uncategorized".
func (g *Generator) CategoryTotals(enriched []domain.EnrichedRecord) []domain.CategoryTotal {
	byCategory := make(map[string]*domain.CategoryTotal)
	for _, rec := range enriched {
		name := "Uncategorized"
		if rec.Category != nil {
			name = *rec.Category
		}
		total, ok := byCategory[name]
		if !ok {
			total = &domain.CategoryTotal{Category: name}
			byCategory[name] = total
		}
		total.CoCCount++
		if rec.OverallHomeless != nil {
			total.OverallHomeless += *rec.OverallHomeless
		}
	}

	totals := make([]domain.CategoryTotal, 0, len(byCategory))
	for _, t := range byCategory {
		totals = append(totals, *t)
	}
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].OverallHomeless > totals[j].OverallHomeless
	})
	return totals
}

// TopByCount ranks CoCs by raw overall homeless count, descending.
func (g *Generator) TopByCount(enriched []domain.EnrichedRecord) []domain.RankedRow {
	return g.rank(enriched, func(r domain.EnrichedRecord) *float64 {
		return r.OverallHomeless
	})
}

// TopByRate ranks CoCs by homeless residents per 10,000 state population,
// descending. Rows without a usable rate (unresolved state, missing or zero
// population) never enter the ranking.
func (g *Generator) TopByRate(enriched []domain.EnrichedRecord) []domain.RankedRow {
	return g.rank(enriched, func(r domain.EnrichedRecord) *float64 {
		return r.HomelessRate
	})
}

func (g *Generator) rank(enriched []domain.EnrichedRecord, value func(domain.EnrichedRecord) *float64) []domain.RankedRow {
	type candidate struct {
		rec   domain.EnrichedRecord
		value float64
	}

	candidates := make([]candidate, 0, len(enriched))
	for _, rec := range enriched {
		v := value(rec)
		if v == nil {
			continue
		}
		candidates = append(candidates, candidate{rec: rec, value: *v})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].value != candidates[j].value {
			return candidates[i].value > candidates[j].value
		}
		return candidates[i].rec.CoCNumber < candidates[j].rec.CoCNumber
	})

	n := g.rankingSize
	if n > len(candidates) {
		n = len(candidates)
	}
	rows := make([]domain.RankedRow, n)
	for i := 0; i < n; i++ {
		rows[i] = domain.RankedRow{
			Rank:      i + 1,
			CoCNumber: candidates[i].rec.CoCNumber,
			CoCName:   candidates[i].rec.CoCName,
			Value:     candidates[i].value,
		}
	}
	return rows
}
