package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"redatlas/internal/incident/models"
	"redatlas/internal/incident/service"
	dErrors "redatlas/pkg/domain-errors"
)

// criteriaFromQuery lifts the filter parameters out of the query string.
// Values are passed through untrimmed of semantics: the engine owns
// validation so the CLI, tests, and HTTP all fail identically.
func criteriaFromQuery(q url.Values) service.Criteria {
	return service.Criteria{
		Region:   strings.TrimSpace(q.Get("region")),
		Locality: strings.TrimSpace(q.Get("locality")),
		Sex:      strings.TrimSpace(q.Get("sex")),
		Cause:    strings.TrimSpace(q.Get("cause")),
		DateFrom: strings.TrimSpace(q.Get("date_from")),
		DateTo:   strings.TrimSpace(q.Get("date_to")),
	}
}

// pageFromQuery parses limit and offset. Absent parameters come back zero;
// the engine applies the default limit and the ceiling.
func pageFromQuery(q url.Values) (service.Page, error) {
	limit, err := queryInt(q, "limit", dErrors.CodeInvalidPagination)
	if err != nil {
		return service.Page{}, err
	}
	offset, err := queryInt(q, "offset", dErrors.CodeInvalidPagination)
	if err != nil {
		return service.Page{}, err
	}
	return service.Page{Limit: limit, Offset: offset}, nil
}

// queryInt parses an optional integer parameter, reporting malformed input
// under the given code.
func queryInt(q url.Values, name string, code dErrors.Code) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.Newf(code, "%s must be an integer, got %q", name, raw)
	}
	return v, nil
}

// dimensionParam parses the {dimension} path segment.
func dimensionParam(r *http.Request) (models.Dimension, error) {
	raw := chi.URLParam(r, "dimension")
	dim, ok := models.ParseDimension(raw)
	if !ok {
		return "", dErrors.Newf(dErrors.CodeBadRequest, "invalid grouping dimension %q", raw)
	}
	return dim, nil
}

// regionsParam splits the comma-separated regions parameter, dropping empty
// segments so trailing commas do not count as identifiers.
func regionsParam(q url.Values) []string {
	var codes []string
	for _, part := range strings.Split(q.Get("regions"), ",") {
		if part = strings.TrimSpace(part); part != "" {
			codes = append(codes, part)
		}
	}
	return codes
}

// metricParam reads the comparison metric, defaulting to the per-100k rate.
// Unknown values pass through; the engine rejects them.
func metricParam(q url.Values) models.Metric {
	raw := strings.TrimSpace(q.Get("metric"))
	if raw == "" {
		return models.MetricRate
	}
	return models.Metric(strings.ToLower(raw))
}
