package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"redatlas/internal/incident/models"
	dErrors "redatlas/pkg/domain-errors"
)

// ComparisonEntry is one requested region with the selected metric value and
// its nationwide rank (1 = most affected), computed against all catalog
// regions, not just the requested set.
type ComparisonEntry struct {
	Code  string  `json:"code"`
	Name  string  `json:"name"`
	Total int     `json:"total"`
	Value float64 `json:"value"`
	Rank  int     `json:"rank"`
}

// Comparison is the side-by-side evaluation of the requested regions.
type Comparison struct {
	Metric  models.Metric     `json:"metric"`
	Regions int               `json:"regions_ranked"`
	Entries []ComparisonEntry `json:"entries"`
}

// Compare evaluates 2+ regions against each other on one metric. It always
// operates over the full dataset, never a filtered subset, and validates
// every identifier against the closed catalog.
func (s *Service) Compare(ctx context.Context, codes []string, metric models.Metric) (*Comparison, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "incident.compare")
	defer span.End()
	defer func() { s.observe("compare", start) }()

	if len(codes) < 2 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "comparison requires at least two region identifiers")
	}
	if _, ok := models.ParseMetric(string(metric)); !ok {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "invalid comparison metric %q", metric)
	}

	// Identifiers may be catalog codes or names; normalize to codes before
	// ranking.
	resolved := make([]string, 0, len(codes))
	var unknown []string
	for _, raw := range codes {
		region, ok := models.ResolveRegion(raw)
		if !ok {
			unknown = append(unknown, raw)
			continue
		}
		resolved = append(resolved, region.Code)
	}
	if len(unknown) > 0 {
		return nil, dErrors.Newf(dErrors.CodeUnknownEntity,
			"unknown region identifiers: %s", strings.Join(unknown, ", "))
	}

	// The region baseline covers all 32 catalog regions over the full store,
	// which is exactly the comparison population.
	b, err := s.baselineFor(ctx, models.DimensionRegion)
	if err != nil {
		return nil, err
	}

	ranked := make([]RiskEntry, len(b.entries))
	copy(ranked, b.entries)
	sort.Slice(ranked, func(i, j int) bool {
		vi, vj := metricValue(ranked[i], metric), metricValue(ranked[j], metric)
		if vi != vj {
			return vi > vj
		}
		return ranked[i].Key < ranked[j].Key
	})

	rankByCode := make(map[string]int, len(ranked))
	for i, e := range ranked {
		rankByCode[e.Key] = i + 1
	}

	entries := make([]ComparisonEntry, 0, len(resolved))
	for _, code := range resolved {
		entry := b.byKey[code]
		region, _ := models.RegionByCode(code)
		entries = append(entries, ComparisonEntry{
			Code:  code,
			Name:  region.Name,
			Total: entry.Total,
			Value: metricValue(entry, metric),
			Rank:  rankByCode[code],
		})
	}

	return &Comparison{Metric: metric, Regions: len(ranked), Entries: entries}, nil
}

// metricValue extracts the selected metric from a baseline entry. Regions
// always carry a population, so rate and index are present; the nil checks
// only guard against future dimensions without one.
func metricValue(e RiskEntry, metric models.Metric) float64 {
	switch metric {
	case models.MetricTotal:
		return float64(e.Total)
	case models.MetricRate:
		if e.Rate != nil {
			return *e.Rate
		}
	case models.MetricIndex:
		if e.Index != nil {
			return *e.Index
		}
	}
	return 0
}
