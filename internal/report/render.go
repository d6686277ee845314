package report

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/jordway1/homelessness/internal/config"
	"github.com/jordway1/homelessness/internal/dataprocessing"
	"github.com/jordway1/homelessness/internal/exporter"
	"github.com/jordway1/homelessness/pkg/contracts/domain"
)

// Renderer writes the derived tables and the Markdown summary to the reports
// directory.
type Renderer struct {
	generator *Generator
	writer    *exporter.CSVWriter
	paths     *config.Paths
	logger    *slog.Logger
}

// NewRenderer creates a renderer over the given paths.
func NewRenderer(generator *Generator, writer *exporter.CSVWriter, paths *config.Paths, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{generator: generator, writer: writer, paths: paths, logger: logger}
}

// RenderAll writes every report artifact for one pipeline run.
func (r *Renderer) RenderAll(result *dataprocessing.Result, targetYear string) error {
	if err := r.writeEnriched(result.Enriched); err != nil {
		return err
	}
	if err := r.writeTrend(result.Longitudinal); err != nil {
		return err
	}
	if err := r.writeRankings(result.Enriched); err != nil {
		return err
	}
	if err := r.writeSummary(result, targetYear); err != nil {
		return err
	}

	r.logger.Info("Report artifacts written",
		slog.String("reports_dir", r.paths.ReportsDir))
	return nil
}

func (r *Renderer) writeEnriched(enriched []domain.EnrichedRecord) error {
	headers := []string{
		"CoC_Number", "CoC_Name", "CoC_Category", "State",
		"Overall_Homeless", "Sheltered_Total_Homeless", "Unsheltered_Homeless",
		"Population", "Covid_Cases", "Covid_Deaths",
		"Homeless_Rate_Per_10k", "Case_Rate_Per_10k", "Death_Rate_Per_10k",
	}
	records := make([][]string, 0, len(enriched))
	for _, rec := range enriched {
		records = append(records, []string{
			rec.CoCNumber,
			rec.CoCName,
			formatText(rec.Category),
			formatText(rec.StateName),
			formatCount(rec.OverallHomeless),
			formatCount(rec.ShelteredHomeless),
			formatCount(rec.UnshelteredHomeless),
			formatInt(rec.Population),
			formatInt(rec.CovidCases),
			formatInt(rec.CovidDeaths),
			formatRate(rec.HomelessRate),
			formatRate(rec.CaseRate),
			formatRate(rec.DeathRate),
		})
	}
	return r.writer.WriteSimpleCSV(r.paths.EnrichedCSV, headers, records)
}

func (r *Renderer) writeTrend(records []domain.LongitudinalRecord) error {
	totals := r.generator.YearTotals(records)
	headers := []string{"Year", "Overall_Homeless", "Sheltered_Total_Homeless", "Unsheltered_Homeless", "CoC_Count"}
	rows := make([][]string, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, []string{
			t.Year,
			strconv.FormatFloat(t.OverallHomeless, 'f', 0, 64),
			strconv.FormatFloat(t.ShelteredHomeless, 'f', 0, 64),
			strconv.FormatFloat(t.UnshelteredHomeless, 'f', 0, 64),
			strconv.Itoa(t.CoCCount),
		})
	}
	return r.writer.WriteSimpleCSV(r.paths.TrendCSV, headers, rows)
}

func (r *Renderer) writeRankings(enriched []domain.EnrichedRecord) error {
	headers := []string{"Ranking", "Rank", "CoC_Number", "CoC_Name", "Value"}
	var rows [][]string
	for _, row := range r.generator.TopByCount(enriched) {
		rows = append(rows, []string{"overall_homeless", strconv.Itoa(row.Rank), row.CoCNumber, row.CoCName, strconv.FormatFloat(row.Value, 'f', 0, 64)})
	}
	for _, row := range r.generator.TopByRate(enriched) {
		rows = append(rows, []string{"homeless_rate_per_10k", strconv.Itoa(row.Rank), row.CoCNumber, row.CoCName, strconv.FormatFloat(row.Value, 'f', 2, 64)})
	}
	return r.writer.WriteSimpleCSV(r.paths.RankingsCSV, headers, rows)
}

func (r *Renderer) writeSummary(result *dataprocessing.Result, targetYear string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Homelessness Point-in-Time Report, %s\n\n", targetYear)
	fmt.Fprintf(&b, "Run `%s`, %d CoCs in the %s data, %d longitudinal rows across all years.\n\n",
		result.Stats.RunID, len(result.Enriched), targetYear, len(result.Longitudinal))

	b.WriteString("## National trend\n\n")
	b.WriteString("| Year | Overall | Sheltered | Unsheltered |\n")
	b.WriteString("|------|---------|-----------|-------------|\n")
	for _, t := range r.generator.YearTotals(result.Longitudinal) {
		fmt.Fprintf(&b, "| %s | %.0f | %.0f | %.0f |\n",
			t.Year, t.OverallHomeless, t.ShelteredHomeless, t.UnshelteredHomeless)
	}

	fmt.Fprintf(&b, "\n## Largest CoCs by overall count, %s\n\n", targetYear)
	b.WriteString("| Rank | CoC | Name | Overall homeless |\n")
	b.WriteString("|------|-----|------|------------------|\n")
	for _, row := range r.generator.TopByCount(result.Enriched) {
		fmt.Fprintf(&b, "| %d | %s | %s | %.0f |\n", row.Rank, row.CoCNumber, row.CoCName, row.Value)
	}

	fmt.Fprintf(&b, "\n## Highest homeless rate per 10,000 residents, %s\n\n", targetYear)
	b.WriteString("| Rank | CoC | Name | Rate |\n")
	b.WriteString("|------|-----|------|------|\n")
	for _, row := range r.generator.TopByRate(result.Enriched) {
		fmt.Fprintf(&b, "| %d | %s | %s | %.2f |\n", row.Rank, row.CoCNumber, row.CoCName, row.Value)
	}

	fmt.Fprintf(&b, "\n## Totals by CoC category, %s\n\n", targetYear)
	b.WriteString("| Category | Overall homeless | CoCs |\n")
	b.WriteString("|----------|------------------|------|\n")
	for _, t := range r.generator.CategoryTotals(result.Enriched) {
		fmt.Fprintf(&b, "| %s | %.0f | %d |\n", t.Category, t.OverallHomeless, t.CoCCount)
	}

	b.WriteString("\n## Data quality\n\n")
	fmt.Fprintf(&b, "- Aggregate rows dropped during union: %d\n", result.Stats.TotalRowsDropped)
	fmt.Fprintf(&b, "- Rows without a latest-year category match: %d\n", result.Stats.BackfillMisses)
	fmt.Fprintf(&b, "- Target-year rows with unresolved state prefix: %d\n", result.Stats.UnresolvedStates)
	fmt.Fprintf(&b, "- Target-year rows without a population estimate: %d\n", result.Stats.MissingPop)

	return os.WriteFile(r.paths.SummaryMarkdown, []byte(b.String()), 0644)
}

func formatText(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatCount(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 0, 64)
}

func formatRate(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}

func formatInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
