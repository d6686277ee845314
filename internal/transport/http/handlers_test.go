package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jordway1/homelessness/internal/config"
	"github.com/jordway1/homelessness/internal/dataprocessing"
	"github.com/jordway1/homelessness/internal/fetch"
	"github.com/jordway1/homelessness/pkg/contracts/domain"
)

func testConfig(t *testing.T, dir string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Pipeline.Years = []string{"2018", "2019"}
	cfg.Paths = config.PathsConfig{
		DataDir:    filepath.Join(dir, "data"),
		ReportsDir: filepath.Join(dir, "reports"),
		LogsDir:    filepath.Join(dir, "logs"),
	}
	return &cfg
}

func newTestService(t *testing.T, cfg *config.Config) *DatasetService {
	t.Helper()
	paths, err := config.NewPaths(cfg.Paths)
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	return NewDatasetService(
		cfg,
		paths,
		fetch.NewClient(nil, paths, nil),
		dataprocessing.NewPipeline(cfg.Pipeline, nil),
		nil,
	)
}

func presetResult() *dataprocessing.Result {
	overall := 6203.0
	rate := 9.0
	state := "Massachusetts"
	rec := domain.EnrichedRecord{
		LongitudinalRecord: domain.LongitudinalRecord{
			Year:            "2019",
			CoCNumber:       "MA-500",
			CoCName:         "Boston CoC",
			OverallHomeless: &overall,
		},
		StateName:    &state,
		HomelessRate: &rate,
	}
	return &dataprocessing.Result{
		Longitudinal: []domain.LongitudinalRecord{rec.LongitudinalRecord},
		Enriched:     []domain.EnrichedRecord{rec},
		Stats:        domain.RunStats{RunID: "preset-run", RowsUnioned: 1},
	}
}

func TestHealthz(t *testing.T) {
	service := newTestService(t, testConfig(t, t.TempDir()))
	router := NewRouter(service, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestGetEnrichedServesSnapshot(t *testing.T) {
	service := newTestService(t, testConfig(t, t.TempDir()))
	service.latest = presetResult()
	router := NewRouter(service, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/enriched", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		TargetYear string                  `json:"target_year"`
		Records    []domain.EnrichedRecord `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "2019", body.TargetYear)
	require.Len(t, body.Records, 1)
	assert.Equal(t, "MA-500", body.Records[0].CoCNumber)
}

func TestGetRankings(t *testing.T) {
	service := newTestService(t, testConfig(t, t.TempDir()))
	service.latest = presetResult()
	router := NewRouter(service, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/rankings", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		ByCount []domain.RankedRow `json:"by_count"`
		ByRate  []domain.RankedRow `json:"by_rate"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.ByCount, 1)
	require.Len(t, body.ByRate, 1)
	assert.Equal(t, 1, body.ByRate[0].Rank)
}

func TestGetStatsNotReady(t *testing.T) {
	service := newTestService(t, testConfig(t, t.TempDir()))
	router := NewRouter(service, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// A request that forces a pipeline run against unreachable sources surfaces
// the retrieval failure as a gateway error.
func TestGetEnrichedFetchFailure(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	cfg.Sources.WorkbookLocation = filepath.Join(t.TempDir(), "missing.xlsx")
	service := newTestService(t, cfg)
	router := NewRouter(service, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/enriched", nil))

	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

// End to end over local fixtures: refresh runs the real pipeline and the API
// serves its output.
func TestRefreshEndToEnd(t *testing.T) {
	dir := t.TempDir()

	workbook := filepath.Join(dir, "pit-counts.xlsx")
	writeTestWorkbook(t, workbook)
	covid := filepath.Join(dir, "us-states.csv")
	require.NoError(t, os.WriteFile(covid, []byte(
		"date,state,fips,cases,deaths\n2021-01-16,Massachusetts,25,487518,13547\n"), 0644))
	population := filepath.Join(dir, "population.csv")
	require.NoError(t, os.WriteFile(population, []byte(
		"NAME,POPESTIMATE2019\nMassachusetts,6892503\n"), 0644))

	cfg := testConfig(t, dir)
	cfg.Sources.WorkbookLocation = workbook
	cfg.Sources.CovidURL = "https://example.invalid/unused.csv"
	cfg.Sources.PopulationURL = "https://example.invalid/unused2.csv"

	// Pre-seed the downloads dir so no network is touched.
	service := newTestService(t, cfg)
	require.NoError(t, os.WriteFile(service.paths.DownloadPath("unused.csv"), mustRead(t, covid), 0644))
	require.NoError(t, os.WriteFile(service.paths.DownloadPath("unused2.csv"), mustRead(t, population), 0644))

	router := NewRouter(service, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var stats domain.RunStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.RowsUnioned)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/trend", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var trend struct {
		Totals []domain.YearTotal `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &trend))
	assert.Len(t, trend.Totals, 2)
}

func writeTestWorkbook(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	sheets := map[string][][]string{
		"2018": {
			{"CoC Number", "CoC Name", "Overall Homeless, 2018"},
			{"MA-500", "Boston CoC", "6188"},
		},
		"2019": {
			{"CoC Number", "CoC Name", "CoC Category", "Overall Homeless, 2019"},
			{"MA-500", "Boston CoC", "Major City CoC", "6203"},
		},
	}
	first := true
	for year, rows := range sheets {
		if first {
			f.SetSheetName(f.GetSheetName(0), year)
			first = false
		} else {
			_, err := f.NewSheet(year)
			require.NoError(t, err)
		}
		for i, row := range rows {
			for j, val := range row {
				col, err := excelize.ColumnNumberToName(j + 1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(year, fmt.Sprintf("%s%d", col, i+1), val))
			}
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}
