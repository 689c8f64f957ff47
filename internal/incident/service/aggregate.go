package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"redatlas/internal/incident/models"
	dErrors "redatlas/pkg/domain-errors"
)

// Group is one aggregation entity: a key, a display label, the case total,
// and, when a reference population exists for the key, an incident rate per
// 100k inhabitants. Bucket carries the numeric calendar index for time
// dimensions and is zero otherwise.
type Group struct {
	Key    string   `json:"key"`
	Label  string   `json:"label"`
	Bucket int      `json:"bucket,omitempty"`
	Total  int      `json:"total"`
	Rate   *float64 `json:"rate,omitempty"`
}

// Summary filters the store and aggregates the subset along one dimension.
// Output is sorted by total descending, ties by key ascending, so results
// are deterministic. Time dimensions emit a continuous axis: one bucket for
// every calendar unit inside the full dataset's covered span, zeros
// included.
func (s *Service) Summary(ctx context.Context, dim models.Dimension, c Criteria) ([]Group, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "incident.summary")
	defer span.End()
	defer func() { s.observe("summary", start) }()

	// Normalize alternate spellings the parser accepts so groupKey only ever
	// sees canonical dimension values.
	parsed, ok := models.ParseDimension(string(dim))
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "invalid grouping dimension %q", dim)
	}
	dim = parsed

	subset, err := s.filtered(ctx, c)
	if err != nil {
		return nil, err
	}
	return s.aggregate(subset, dim), nil
}

// aggregate groups records by dimension. Callers pass a subset that came
// from the store, so records are already in store order.
func (s *Service) aggregate(records []models.Incident, dim models.Dimension) []Group {
	groups := make(map[string]*Group)

	// Time dimensions get every calendar unit of the dataset's covered span
	// up front so empty buckets survive with total zero.
	if dim == models.DimensionMonth || dim == models.DimensionWeek {
		s.seedTimeBuckets(groups, dim)
	}

	for _, rec := range records {
		key, label, bucket := groupKey(rec, dim)
		g, ok := groups[key]
		if !ok {
			g = &Group{Key: key, Label: label, Bucket: bucket}
			groups[key] = g
		}
		g.Total++
	}

	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		if dim.HasPopulation() {
			if pop, ok := s.store.Population(dim, g.Key); ok {
				rate := round1(float64(g.Total) / float64(pop) * 100000)
				g.Rate = &rate
			}
		}
		out = append(out, *g)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// seedTimeBuckets inserts a zero-total bucket for each calendar unit between
// the store's earliest and latest incident dates.
func (s *Service) seedTimeBuckets(groups map[string]*Group, dim models.Dimension) {
	min, max, ok := s.store.Span()
	if !ok {
		return
	}

	switch dim {
	case models.DimensionMonth:
		for d := time.Date(min.Year(), min.Month(), 1, 0, 0, 0, 0, time.UTC); !d.After(max); d = d.AddDate(0, 1, 0) {
			key, label, bucket := monthKey(d)
			groups[key] = &Group{Key: key, Label: label, Bucket: bucket}
		}
	case models.DimensionWeek:
		// Walk day by day; ISO weeks vary in count per year and a 7-day
		// stride could skip the final partial week.
		for d := min; !d.After(max); d = d.AddDate(0, 0, 1) {
			key, label, bucket := weekKey(d)
			if _, ok := groups[key]; !ok {
				groups[key] = &Group{Key: key, Label: label, Bucket: bucket}
			}
		}
	}
}

func groupKey(rec models.Incident, dim models.Dimension) (key, label string, bucket int) {
	switch dim {
	case models.DimensionRegion:
		return rec.RegionCode, rec.RegionName, 0
	case models.DimensionLocality:
		if rec.Locality == "" {
			return "unknown", "Unknown", 0
		}
		return models.LocalityKey(rec.RegionCode, rec.Locality), rec.Locality, 0
	case models.DimensionMonth:
		return monthKey(rec.Date)
	case models.DimensionWeek:
		return weekKey(rec.Date)
	case models.DimensionSex:
		return string(rec.Sex), string(rec.Sex), 0
	case models.DimensionAgeBand:
		band := models.AgeBand(rec.Age)
		return band, band, 0
	default:
		return "", "", 0
	}
}

func monthKey(d time.Time) (string, string, int) {
	return fmt.Sprintf("%04d-%02d", d.Year(), int(d.Month())), d.Format("Jan"), int(d.Month())
}

func weekKey(d time.Time) (string, string, int) {
	year, week := d.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week), fmt.Sprintf("W%02d", week), week
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
