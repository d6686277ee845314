package dataprocessing

import (
	"log/slog"

	"github.com/jordway1/homelessness/pkg/contracts/domain"
)

// JoinStats reports key-resolution accounting for the enrichment stage.
// Unresolved keys are a data-quality signal, not an error: affected rows keep
// their raw counts and simply carry no rates.
type JoinStats struct {
	RowsIn           int
	UnresolvedStates int
	MissingPop       int
	MissingCovid     int
}

// ratePer is the population denominator unit for derived rates.
const ratePer = 10000

// Enrich filters the backfilled records to the target year and left-joins
// population and COVID data on the state name derived from each CoC number's
// two-letter prefix. For rows with a known positive population it computes
// per-10,000-resident rates for the overall homeless count and the COVID case
// and death counts. Zero or missing population yields nil rates, never zero
// and never a division error.
func Enrich(records []domain.LongitudinalRecord, targetYear string,
	population []domain.PopulationRecord, covid []domain.CovidRecord) ([]domain.EnrichedRecord, JoinStats) {

	var stats JoinStats

	popByState := make(map[string]int64, len(population))
	for _, p := range population {
		popByState[p.StateName] = p.Population
	}
	covidByState := make(map[string]domain.CovidRecord, len(covid))
	for _, c := range covid {
		covidByState[c.StateName] = c
	}

	var out []domain.EnrichedRecord
	for _, rec := range records {
		if rec.Year != targetYear {
			continue
		}
		stats.RowsIn++

		enriched := domain.EnrichedRecord{LongitudinalRecord: rec}

		stateName, ok := StateName(rec.StateCode())
		if !ok {
			stats.UnresolvedStates++
			slog.Warn("Unresolved state prefix, row retained without enrichment",
				slog.String("coc_number", rec.CoCNumber),
				slog.String("coc_name", rec.CoCName))
			out = append(out, enriched)
			continue
		}
		enriched.StateName = &stateName

		pop, ok := popByState[stateName]
		if ok {
			p := pop
			enriched.Population = &p
		} else {
			stats.MissingPop++
			slog.Warn("No population estimate for state, rates unavailable",
				slog.String("state", stateName),
				slog.String("coc_number", rec.CoCNumber))
		}

		if c, ok := covidByState[stateName]; ok {
			cases, deaths := c.Cases, c.Deaths
			enriched.CovidCases = &cases
			enriched.CovidDeaths = &deaths
		} else {
			stats.MissingCovid++
			slog.Warn("No COVID snapshot row for state",
				slog.String("state", stateName),
				slog.String("coc_number", rec.CoCNumber))
		}

		enriched.HomelessRate = ratePerCapita(rec.OverallHomeless, enriched.Population)
		enriched.CaseRate = ratePerCapita(floatOf(enriched.CovidCases), enriched.Population)
		enriched.DeathRate = ratePerCapita(floatOf(enriched.CovidDeaths), enriched.Population)

		out = append(out, enriched)
	}

	if stats.RowsIn > 0 && len(out) > 0 && stats.MissingPop == stats.RowsIn {
		// Every row failed the population join; the dataset pairing is
		// almost certainly wrong even though the pipeline carries on.
		slog.Warn("Population join matched zero rows",
			slog.Int("rows", stats.RowsIn))
	}

	slog.Debug("Enriched target-year records",
		slog.String("target_year", targetYear),
		slog.Int("rows", stats.RowsIn),
		slog.Int("unresolved_states", stats.UnresolvedStates),
		slog.Int("missing_population", stats.MissingPop),
		slog.Int("missing_covid", stats.MissingCovid))
	return out, stats
}

// ratePerCapita computes count * 10000 / population, or nil when either side
// is missing or the population is not positive.
func ratePerCapita(count *float64, population *int64) *float64 {
	if count == nil || population == nil || *population <= 0 {
		return nil
	}
	rate := *count * ratePer / float64(*population)
	return &rate
}

func floatOf(v *int64) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}
