package dataprocessing

import (
	"log/slog"

	"github.com/jordway1/homelessness/pkg/contracts/domain"
)

// BackfillStats reports key accounting for the backfill stage.
type BackfillStats struct {
	LatestKeys int
	Backfilled int
	Misses     int
}

// backfillKey is the composite join key for category propagation. The CoC
// category must be keyed on name AND number together: names repeat across
// providers and numbers have been reused, so either alone can collide.
type backfillKey struct {
	name   string
	number string
}

// BackfillCategory propagates the CoC category, which the workbook only
// populates in the most recent year, backward onto every other year's rows.
// It projects (number, name, category) from latestYear and replaces each
// record's own (stale or empty) category with the projection value for its
// composite key. Records whose key is absent from the latest year receive a
// nil category.
func BackfillCategory(records []domain.LongitudinalRecord, latestYear string) ([]domain.LongitudinalRecord, BackfillStats) {
	var stats BackfillStats

	latest := make(map[backfillKey]*string)
	for _, rec := range records {
		if rec.Year != latestYear {
			continue
		}
		latest[backfillKey{name: rec.CoCName, number: rec.CoCNumber}] = rec.Category
	}
	stats.LatestKeys = len(latest)

	out := make([]domain.LongitudinalRecord, len(records))
	for i, rec := range records {
		category, ok := latest[backfillKey{name: rec.CoCName, number: rec.CoCNumber}]
		if !ok {
			stats.Misses++
			rec.Category = nil
			out[i] = rec
			continue
		}
		if category != nil {
			// Copy so later stages cannot alias the projection's value.
			c := *category
			rec.Category = &c
			stats.Backfilled++
		} else {
			rec.Category = nil
		}
		out[i] = rec
	}

	slog.Debug("Backfilled CoC categories",
		slog.String("latest_year", latestYear),
		slog.Int("latest_keys", stats.LatestKeys),
		slog.Int("backfilled", stats.Backfilled),
		slog.Int("misses", stats.Misses))
	return out, stats
}
