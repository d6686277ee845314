package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "github.com/jordway1/homelessness/internal/errors"
	"github.com/jordway1/homelessness/internal/report"
)

// DataHandler serves the pipeline output over JSON.
type DataHandler struct {
	service *DatasetService
	logger  *slog.Logger
}

// NewDataHandler creates a new data handler.
func NewDataHandler(service *DatasetService, logger *slog.Logger) *DataHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataHandler{
		service: service,
		logger:  logger.With(slog.String("component", "data_handler")),
	}
}

// Routes returns the API routes.
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/enriched", h.GetEnriched)
	r.Get("/trend", h.GetTrend)
	r.Get("/rankings", h.GetRankings)
	r.Get("/stats", h.GetStats)
	r.Post("/refresh", h.Refresh)

	return r
}

// GetEnriched returns the target-year records joined with population and
// COVID data.
func (h *DataHandler) GetEnriched(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Ensure(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"target_year": h.service.TargetYear(),
		"records":     result.Enriched,
	})
}

// GetTrend returns national totals per reporting year.
func (h *DataHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Ensure(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	generator := report.NewGenerator(h.logger, h.service.RankingSize())
	render.JSON(w, r, map[string]interface{}{
		"totals": generator.YearTotals(result.Longitudinal),
	})
}

// GetRankings returns top-N tables by raw count and by per-10k rate.
func (h *DataHandler) GetRankings(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Ensure(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	generator := report.NewGenerator(h.logger, h.service.RankingSize())
	render.JSON(w, r, map[string]interface{}{
		"target_year": h.service.TargetYear(),
		"by_count":    generator.TopByCount(result.Enriched),
		"by_rate":     generator.TopByRate(result.Enriched),
		"by_category": generator.CategoryTotals(result.Enriched),
	})
}

// GetStats returns data-quality counters for the latest run.
func (h *DataHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Latest()
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, result.Stats)
}

// Refresh re-fetches sources and re-runs the pipeline. With ?force=true the
// cached downloads are discarded.
func (h *DataHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"
	result, err := h.service.Refresh(r.Context(), force)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, result.Stats)
}

func (h *DataHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "Request failed",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()))
	apiErr := apperrors.ToAPIError(err)
	if renderErr := render.Render(w, r, apiErr); renderErr != nil {
		http.Error(w, apiErr.Message, apiErr.StatusCode)
	}
}
