package handler

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"redatlas/internal/incident/models"
	dErrors "redatlas/pkg/domain-errors"
	"redatlas/pkg/platform/httputil"
	"redatlas/pkg/requestcontext"
)

var exportHeader = []string{
	"date", "region_code", "region", "locality", "sex", "age", "age_band", "cause", "lat", "lon",
}

// HandleExport handles GET /v1/incidents/export requests. The full filtered
// subset streams out unpaginated, as JSON or CSV.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := requestcontext.Now(ctx)

	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeBadRequest, "unsupported export format %q", format))
		return
	}

	records, err := h.service.Export(ctx, criteriaFromQuery(r.URL.Query()))
	if err != nil {
		h.logError(ctx, "incident export failed", err)
		httputil.WriteError(w, err)
		return
	}

	switch format {
	case "csv":
		err = writeCSV(w, records)
	default:
		data := make([]IncidentResponse, 0, len(records))
		for _, rec := range records {
			data = append(data, FromIncident(rec))
		}
		httputil.WriteJSON(w, http.StatusOK, SearchResponse{Total: len(data), Count: len(data), Data: data})
	}
	if err != nil {
		// Headers are already out; nothing left but to log.
		h.logError(ctx, "incident export write failed", err)
		return
	}

	h.logger.InfoContext(ctx, "incidents exported",
		"request_id", requestcontext.RequestID(ctx),
		"format", format,
		"records", len(records),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func writeCSV(w http.ResponseWriter, records []models.Incident) error {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="incidents.csv"`)

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write(csvRow(rec)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(rec models.Incident) []string {
	age := ""
	if rec.Age != nil {
		age = strconv.Itoa(*rec.Age)
	}
	lat, lon := "", ""
	if rec.HasCoordinates() {
		lat = strconv.FormatFloat(*rec.Latitude, 'f', -1, 64)
		lon = strconv.FormatFloat(*rec.Longitude, 'f', -1, 64)
	}
	return []string{
		rec.Date.Format(dateLayout),
		rec.RegionCode,
		rec.RegionName,
		rec.Locality,
		string(rec.Sex),
		age,
		models.AgeBand(rec.Age),
		rec.Cause,
		lat,
		lon,
	}
}
