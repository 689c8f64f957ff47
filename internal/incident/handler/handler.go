// Package handler exposes the incident query engine over HTTP. All
// endpoints are read-only GETs; request shape lives in the query string and
// validation failures surface as coded domain errors.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"redatlas/internal/incident/models"
	"redatlas/internal/incident/service"
	dErrors "redatlas/pkg/domain-errors"
	"redatlas/pkg/platform/httputil"
	"redatlas/pkg/requestcontext"
)

// Service defines the interface for incident query operations.
type Service interface {
	Readiness() service.Readiness
	Search(ctx context.Context, c service.Criteria, page service.Page) (*service.SearchResult, error)
	Export(ctx context.Context, c service.Criteria) ([]models.Incident, error)
	GeoPoints(ctx context.Context, c service.Criteria) ([]service.Point, error)
	Summary(ctx context.Context, dim models.Dimension, c service.Criteria) ([]service.Group, error)
	RiskIndex(ctx context.Context, dim models.Dimension, limit int) ([]service.RiskEntry, error)
	Compare(ctx context.Context, codes []string, metric models.Metric) (*service.Comparison, error)
	Overview(ctx context.Context) (*service.Overview, error)
	RegionStats(ctx context.Context) ([]service.RegionSummary, error)
}

// Handler wires incident endpoints to the query engine.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an incident handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts incident endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/incidents", h.HandleSearch)
	r.Get("/v1/incidents/export", h.HandleExport)
	r.Get("/v1/geo/points", h.HandleGeoPoints)
	r.Get("/v1/summary/{dimension}", h.HandleSummary)
	r.Get("/v1/risk/{dimension}", h.HandleRiskIndex)
	r.Get("/v1/compare", h.HandleCompare)
	r.Get("/v1/regions", h.HandleRegions)
	r.Get("/v1/stats/overview", h.HandleOverview)
	r.Get("/readyz", h.HandleReady)
}

// HandleSearch handles GET /v1/incidents requests.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, err := pageFromQuery(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Search(ctx, criteriaFromQuery(r.URL.Query()), page)
	if err != nil {
		h.logError(ctx, "incident search failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromSearchResult(result))
}

// HandleGeoPoints handles GET /v1/geo/points requests.
func (h *Handler) HandleGeoPoints(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	points, err := h.service.GeoPoints(ctx, criteriaFromQuery(r.URL.Query()))
	if err != nil {
		h.logError(ctx, "geo point listing failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, GeoResponse{Count: len(points), Points: points})
}

// HandleSummary handles GET /v1/summary/{dimension} requests.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dim, err := dimensionParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	groups, err := h.service.Summary(ctx, dim, criteriaFromQuery(r.URL.Query()))
	if err != nil {
		h.logError(ctx, "summary aggregation failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, SummaryResponse{Dimension: string(dim), Groups: groups})
}

// HandleRiskIndex handles GET /v1/risk/{dimension} requests.
func (h *Handler) HandleRiskIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dim, err := dimensionParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	limit, err := queryInt(r.URL.Query(), "limit", dErrors.CodeBadRequest)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.service.RiskIndex(ctx, dim, limit)
	if err != nil {
		h.logError(ctx, "risk index computation failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, RiskResponse{Dimension: string(dim), Entries: entries})
}

// HandleCompare handles GET /v1/compare requests.
func (h *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cmp, err := h.service.Compare(ctx, regionsParam(r.URL.Query()), metricParam(r.URL.Query()))
	if err != nil {
		h.logError(ctx, "region comparison failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, cmp)
}

// HandleRegions handles GET /v1/regions requests.
func (h *Handler) HandleRegions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.service.RegionStats(ctx)
	if err != nil {
		h.logError(ctx, "region listing failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, RegionsResponse{Regions: stats})
}

// HandleOverview handles GET /v1/stats/overview requests.
func (h *Handler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ov, err := h.service.Overview(ctx)
	if err != nil {
		h.logError(ctx, "overview computation failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromOverview(ov))
}

// HandleReady handles GET /readyz requests. Not-ready responds 503 with the
// same body shape so probes and humans read the same thing.
func (h *Handler) HandleReady(w http.ResponseWriter, r *http.Request) {
	readiness := h.service.Readiness()
	status := http.StatusOK
	if !readiness.Ready {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, readiness)
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
}
