package service

import (
	"context"
	"sort"
	"time"

	"redatlas/internal/incident/models"
	dErrors "redatlas/pkg/domain-errors"
)

// Risk bands applied to the composite index. Each band is inclusive on its
// lower bound and exclusive on the upper, except critical which includes 100.
const (
	BandVeryLow     = "very-low"
	BandLow         = "low"
	BandMedium      = "medium"
	BandHigh        = "high"
	BandCritical    = "critical"
	BandUnavailable = "unavailable"
)

// RiskEntry is one entity with its composite risk index. Index is nil and
// Band is "unavailable" when the entity has no reference population.
type RiskEntry struct {
	Key   string   `json:"key"`
	Label string   `json:"label"`
	Total int      `json:"total"`
	Rate  *float64 `json:"rate,omitempty"`
	Index *float64 `json:"index,omitempty"`
	Band  string   `json:"band"`
}

// baseline holds the full-store risk entries for one dimension. Computed
// once; the store never changes, so neither does the baseline. Keeping the
// normalization anchored to the full store keeps index values comparable
// across independent requests.
type baseline struct {
	entries []RiskEntry
	byKey   map[string]RiskEntry
}

// RiskIndex returns entities of a population-referenced dimension ranked by
// composite index, highest risk first. limit <= 0 means no cap.
func (s *Service) RiskIndex(ctx context.Context, dim models.Dimension, limit int) ([]RiskEntry, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "incident.risk_index")
	defer span.End()
	defer func() { s.observe("risk_index", start) }()

	parsed, ok := models.ParseDimension(string(dim))
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "invalid grouping dimension %q", dim)
	}
	dim = parsed
	if !dim.HasPopulation() {
		return nil, dErrors.Newf(dErrors.CodeBadRequest,
			"risk index requires a population-referenced dimension, got %q", dim)
	}

	b, err := s.baselineFor(ctx, dim)
	if err != nil {
		return nil, err
	}

	out := make([]RiskEntry, len(b.entries))
	copy(out, b.entries)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// baselineFor returns the cached baseline for a dimension, computing it from
// the full store on first use.
func (s *Service) baselineFor(ctx context.Context, dim models.Dimension) (*baseline, error) {
	s.mu.Lock()
	if b, ok := s.baselines[dim]; ok {
		s.mu.Unlock()
		return b, nil
	}
	s.mu.Unlock()

	records, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	groups := s.aggregate(records, dim)
	if dim == models.DimensionRegion {
		groups = padCatalogRegions(groups)
	}
	b := buildBaseline(groups)

	s.mu.Lock()
	// Another request may have raced the computation; both results are
	// identical, keep the first.
	if cached, ok := s.baselines[dim]; ok {
		b = cached
	} else {
		s.baselines[dim] = b
	}
	s.mu.Unlock()
	return b, nil
}

// padCatalogRegions adds zero-total entries for catalog regions absent from
// the dataset. The region enumeration is closed, so a region with no
// incidents is still an entity of the dimension, not a gap.
func padCatalogRegions(groups []Group) []Group {
	present := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		present[g.Key] = struct{}{}
	}
	for _, region := range models.Regions() {
		if _, ok := present[region.Code]; ok {
			continue
		}
		rate := 0.0
		groups = append(groups, Group{Key: region.Code, Label: region.Name, Rate: &rate})
	}
	return groups
}

// buildBaseline derives the composite index for each entity:
//
//	index = 0.6*percentile(rate) + 0.4*percentile(volume)
//
// with percentiles taken over the entities of the dimension that carry a
// population reference. Entities without one are excluded from the sample
// and flagged unavailable.
func buildBaseline(groups []Group) *baseline {
	var rates, volumes []float64
	for _, g := range groups {
		if g.Rate != nil {
			rates = append(rates, *g.Rate)
			volumes = append(volumes, float64(g.Total))
		}
	}

	entries := make([]RiskEntry, 0, len(groups))
	for _, g := range groups {
		entry := RiskEntry{
			Key:   g.Key,
			Label: g.Label,
			Total: g.Total,
			Rate:  g.Rate,
			Band:  BandUnavailable,
		}
		if g.Rate != nil {
			idx := round1(0.6*percentileRank(rates, *g.Rate) + 0.4*percentileRank(volumes, float64(g.Total)))
			entry.Index = &idx
			entry.Band = classifyBand(idx)
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.Index != nil && b.Index == nil:
			return true
		case a.Index == nil && b.Index != nil:
			return false
		case a.Index != nil && b.Index != nil && *a.Index != *b.Index:
			return *a.Index > *b.Index
		default:
			return a.Key < b.Key
		}
	})

	byKey := make(map[string]RiskEntry, len(entries))
	for _, e := range entries {
		byKey[e.Key] = e
	}
	return &baseline{entries: entries, byKey: byKey}
}

// percentileRank scales v into [0,100] against the sample using the mean
// fractional rank: 100 * (count_less + 0.5*count_equal) / n. Deterministic
// and stable under ties, unlike interpolated definitions that disagree
// between numeric libraries.
func percentileRank(sample []float64, v float64) float64 {
	if len(sample) == 0 {
		return 0
	}
	var less, equal int
	for _, s := range sample {
		switch {
		case s < v:
			less++
		case s == v:
			equal++
		}
	}
	return 100 * (float64(less) + 0.5*float64(equal)) / float64(len(sample))
}

// classifyBand maps an index value onto its risk band.
func classifyBand(index float64) string {
	switch {
	case index < 20:
		return BandVeryLow
	case index < 40:
		return BandLow
	case index < 60:
		return BandMedium
	case index < 80:
		return BandHigh
	default:
		return BandCritical
	}
}
