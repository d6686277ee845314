package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordway1/homelessness/pkg/contracts/domain"
)

func countRec(year, number, name string, overall float64) domain.LongitudinalRecord {
	return domain.LongitudinalRecord{
		Year:            year,
		CoCNumber:       number,
		CoCName:         name,
		OverallHomeless: &overall,
	}
}

func snapshotDate() time.Time {
	return time.Date(2021, 1, 16, 0, 0, 0, 0, time.UTC)
}

func TestEnrichComputesRates(t *testing.T) {
	records := []domain.LongitudinalRecord{
		countRec("2019", "MA-500", "Boston CoC", 6203),
		// Non-target years never reach the enriched output.
		countRec("2018", "MA-500", "Boston CoC", 6188),
	}
	population := []domain.PopulationRecord{
		{StateName: "Massachusetts", Population: 6892503},
	}
	covid := []domain.CovidRecord{
		{Date: snapshotDate(), StateName: "Massachusetts", Cases: 487518, Deaths: 13547},
	}

	enriched, stats := Enrich(records, "2019", population, covid)

	require.Len(t, enriched, 1)
	assert.Equal(t, 1, stats.RowsIn)

	row := enriched[0]
	require.NotNil(t, row.StateName)
	assert.Equal(t, "Massachusetts", *row.StateName)

	require.NotNil(t, row.HomelessRate)
	assert.InDelta(t, 6203*10000.0/6892503.0, *row.HomelessRate, 1e-12)
	require.NotNil(t, row.CaseRate)
	assert.InDelta(t, 487518*10000.0/6892503.0, *row.CaseRate, 1e-12)
	require.NotNil(t, row.DeathRate)
	assert.InDelta(t, 13547*10000.0/6892503.0, *row.DeathRate, 1e-12)
}

// A region absent from the population table keeps its raw counts but carries
// no rates, so rate rankings skip it.
func TestEnrichMissingPopulation(t *testing.T) {
	records := []domain.LongitudinalRecord{
		countRec("2019", "PR-502", "Puerto Rico Balance of Commonwealth CoC", 1597),
	}
	covid := []domain.CovidRecord{
		{Date: snapshotDate(), StateName: "Puerto Rico", Cases: 83103, Deaths: 1604},
	}

	enriched, stats := Enrich(records, "2019", nil, covid)

	require.Len(t, enriched, 1)
	row := enriched[0]
	require.NotNil(t, row.StateName)
	assert.Equal(t, "Puerto Rico", *row.StateName)
	require.NotNil(t, row.OverallHomeless)
	assert.Equal(t, 1597.0, *row.OverallHomeless)

	assert.Nil(t, row.Population)
	assert.Nil(t, row.HomelessRate)
	assert.Nil(t, row.CaseRate)
	assert.False(t, row.HasRates())
	assert.Equal(t, 1, stats.MissingPop)
}

func TestEnrichZeroPopulation(t *testing.T) {
	records := []domain.LongitudinalRecord{
		countRec("2019", "GU-500", "Guam CoC", 890),
	}
	population := []domain.PopulationRecord{
		{StateName: "Guam", Population: 0},
	}

	enriched, _ := Enrich(records, "2019", population, nil)

	require.Len(t, enriched, 1)
	assert.Nil(t, enriched[0].HomelessRate, "zero population must yield a nil rate, not Inf")
}

func TestEnrichUnresolvedStatePrefix(t *testing.T) {
	records := []domain.LongitudinalRecord{
		countRec("2019", "ZZ-999", "Unknown Region CoC", 10),
	}

	enriched, stats := Enrich(records, "2019", nil, nil)

	require.Len(t, enriched, 1)
	assert.Nil(t, enriched[0].StateName)
	assert.Nil(t, enriched[0].HomelessRate)
	assert.Equal(t, 1, stats.UnresolvedStates)
}

func TestEnrichNilCount(t *testing.T) {
	records := []domain.LongitudinalRecord{
		{Year: "2019", CoCNumber: "MA-500", CoCName: "Boston CoC"},
	}
	population := []domain.PopulationRecord{
		{StateName: "Massachusetts", Population: 6892503},
	}

	enriched, _ := Enrich(records, "2019", population, nil)

	require.Len(t, enriched, 1)
	require.NotNil(t, enriched[0].Population)
	assert.Nil(t, enriched[0].HomelessRate, "missing count must not become a zero rate")
}

func TestStateName(t *testing.T) {
	name, ok := StateName("MA")
	require.True(t, ok)
	assert.Equal(t, "Massachusetts", name)

	_, ok = StateName("ZZ")
	assert.False(t, ok)
}
