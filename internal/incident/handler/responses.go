package handler

import (
	"time"

	"redatlas/internal/incident/models"
	"redatlas/internal/incident/service"
)

const dateLayout = "2006-01-02"

// IncidentResponse is one incident record in a listing.
type IncidentResponse struct {
	RegionCode string   `json:"region_code"`
	Region     string   `json:"region"`
	Locality   string   `json:"locality,omitempty"`
	Sex        string   `json:"sex"`
	Age        *int     `json:"age,omitempty"`
	AgeBand    string   `json:"age_band"`
	Cause      string   `json:"cause,omitempty"`
	Date       string   `json:"date"`
	Lat        *float64 `json:"lat,omitempty"`
	Lon        *float64 `json:"lon,omitempty"`
}

// SearchResponse is the HTTP response for GET /v1/incidents.
type SearchResponse struct {
	Total int                `json:"total"`
	Count int                `json:"count"`
	Data  []IncidentResponse `json:"data"`
}

// GeoResponse is the HTTP response for GET /v1/geo/points.
type GeoResponse struct {
	Count  int             `json:"count"`
	Points []service.Point `json:"points"`
}

// SummaryResponse is the HTTP response for GET /v1/summary/{dimension}.
type SummaryResponse struct {
	Dimension string          `json:"dimension"`
	Groups    []service.Group `json:"groups"`
}

// RiskResponse is the HTTP response for GET /v1/risk/{dimension}.
type RiskResponse struct {
	Dimension string              `json:"dimension"`
	Entries   []service.RiskEntry `json:"entries"`
}

// RegionsResponse is the HTTP response for GET /v1/regions.
type RegionsResponse struct {
	Regions []service.RegionSummary `json:"regions"`
}

// OverviewResponse is the HTTP response for GET /v1/stats/overview.
type OverviewResponse struct {
	Records    int                  `json:"records"`
	Regions    int                  `json:"regions"`
	Localities int                  `json:"localities"`
	SpanFrom   string               `json:"span_from"`
	SpanTo     string               `json:"span_to"`
	BySex      []service.Group      `json:"by_sex"`
	ByAgeBand  []service.Group      `json:"by_age_band"`
	TopCauses  []service.CauseCount `json:"top_causes"`
	Monthly    []service.Group      `json:"monthly"`
}

// FromIncident converts a record to its HTTP representation.
func FromIncident(rec models.Incident) IncidentResponse {
	return IncidentResponse{
		RegionCode: rec.RegionCode,
		Region:     rec.RegionName,
		Locality:   rec.Locality,
		Sex:        string(rec.Sex),
		Age:        rec.Age,
		AgeBand:    models.AgeBand(rec.Age),
		Cause:      rec.Cause,
		Date:       rec.Date.Format(dateLayout),
		Lat:        rec.Latitude,
		Lon:        rec.Longitude,
	}
}

// FromSearchResult converts an engine search result to an HTTP response.
func FromSearchResult(result *service.SearchResult) *SearchResponse {
	data := make([]IncidentResponse, 0, len(result.Data))
	for _, rec := range result.Data {
		data = append(data, FromIncident(rec))
	}
	return &SearchResponse{Total: result.Total, Count: len(data), Data: data}
}

// FromOverview converts the engine overview to an HTTP response.
func FromOverview(ov *service.Overview) *OverviewResponse {
	return &OverviewResponse{
		Records:    ov.Records,
		Regions:    ov.Regions,
		Localities: ov.Localities,
		SpanFrom:   formatDay(ov.SpanFrom),
		SpanTo:     formatDay(ov.SpanTo),
		BySex:      ov.BySex,
		ByAgeBand:  ov.ByAgeBand,
		TopCauses:  ov.TopCauses,
		Monthly:    ov.Monthly,
	}
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
