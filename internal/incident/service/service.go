// Package service implements the analytical query engine over the loaded
// incident dataset: predicate filtering, pagination, grouped aggregation,
// the composite risk index, and region comparison. Every operation is a
// bounded synchronous scan of the immutable store; nothing here blocks.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"redatlas/internal/incident/metrics"
	"redatlas/internal/incident/models"
	"redatlas/internal/incident/store"
)

// Service is the query engine. It is safe for concurrent use: the store is
// immutable after load, and the baseline cache is written under a mutex.
type Service struct {
	store   store.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer

	mu        sync.Mutex
	baselines map[models.Dimension]*baseline
}

// Option configures optional service dependencies.
type Option func(*Service)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics attaches query metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs the query engine over a record store.
func New(st store.Store, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("record store is required")
	}

	svc := &Service{
		store:     st,
		tracer:    otel.Tracer("redatlas/incident"),
		baselines: make(map[models.Dimension]*baseline),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc, nil
}

// Readiness describes whether the engine can serve queries.
type Readiness struct {
	Ready   bool `json:"ready"`
	Records int  `json:"records"`
}

// Readiness reports the load state of the record store.
func (s *Service) Readiness() Readiness {
	return Readiness{Ready: s.store.Ready(), Records: s.store.Count()}
}

// WarmUp precomputes the per-dimension risk baselines so the first request
// does not pay for them. Baselines derive from the full store and never
// change afterwards.
func (s *Service) WarmUp(ctx context.Context) error {
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	for _, dim := range []models.Dimension{models.DimensionRegion, models.DimensionLocality} {
		dim := dim
		g.Go(func() error {
			_, err := s.baselineFor(ctx, dim)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.logger.Info("risk baselines warmed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// SearchResult is a paginated record listing: the page window plus the size
// of the whole filtered subset.
type SearchResult struct {
	Total int
	Data  []models.Incident
}

// Search filters the store and returns one page of matching records in
// store order.
func (s *Service) Search(ctx context.Context, c Criteria, page Page) (*SearchResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "incident.search")
	defer span.End()
	defer func() { s.observe("search", start) }()

	subset, err := s.filtered(ctx, c)
	if err != nil {
		return nil, err
	}

	window, total, err := paginate(subset, page)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Total: total, Data: window}, nil
}

// Export returns every record matching the criteria, unpaginated, in store
// order. Intended for download endpoints; listings go through Search.
func (s *Service) Export(ctx context.Context, c Criteria) ([]models.Incident, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "incident.export")
	defer span.End()
	defer func() { s.observe("export", start) }()

	return s.filtered(ctx, c)
}

// Point is a geocoded incident position.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GeoPoints returns the coordinates of filtered records that carry them.
// Records without coordinates are silently omitted.
func (s *Service) GeoPoints(ctx context.Context, c Criteria) ([]Point, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "incident.geo_points")
	defer span.End()
	defer func() { s.observe("geo_points", start) }()

	subset, err := s.filtered(ctx, c)
	if err != nil {
		return nil, err
	}

	points := make([]Point, 0, len(subset))
	for _, rec := range subset {
		if rec.HasCoordinates() {
			points = append(points, Point{Lat: *rec.Latitude, Lon: *rec.Longitude})
		}
	}
	return points, nil
}

// CauseCount is one cause-of-death label with its case count.
type CauseCount struct {
	Cause string `json:"cause"`
	Total int    `json:"total"`
}

// Overview summarizes the whole dataset.
type Overview struct {
	Records    int
	Regions    int
	Localities int
	SpanFrom   time.Time
	SpanTo     time.Time
	BySex      []Group
	ByAgeBand  []Group
	TopCauses  []CauseCount
	Monthly    []Group
}

// Overview computes dataset-wide distributions over the full store.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "incident.overview")
	defer span.End()
	defer func() { s.observe("overview", start) }()

	records, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	regions := make(map[string]struct{})
	localities := make(map[string]struct{})
	causes := make(map[string]int)
	for _, rec := range records {
		regions[rec.RegionCode] = struct{}{}
		if rec.Locality != "" {
			localities[models.LocalityKey(rec.RegionCode, rec.Locality)] = struct{}{}
		}
		if rec.Cause != "" {
			causes[rec.Cause]++
		}
	}

	min, max, _ := s.store.Span()

	return &Overview{
		Records:    len(records),
		Regions:    len(regions),
		Localities: len(localities),
		SpanFrom:   min,
		SpanTo:     max,
		BySex:      s.aggregate(records, models.DimensionSex),
		ByAgeBand:  s.aggregate(records, models.DimensionAgeBand),
		TopCauses:  topCauses(causes, 10),
		Monthly:    s.aggregate(records, models.DimensionMonth),
	}, nil
}

// RegionSummary is one catalog region with its full-dataset figures.
type RegionSummary struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Population int64   `json:"population"`
	Total      int     `json:"total"`
	Rate       float64 `json:"rate"`
}

// RegionStats lists every catalog region with totals and per-100k rates over
// the full dataset, most affected first.
func (s *Service) RegionStats(ctx context.Context) ([]RegionSummary, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "incident.region_stats")
	defer span.End()
	defer func() { s.observe("region_stats", start) }()

	records, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]int)
	for _, rec := range records {
		totals[rec.RegionCode]++
	}

	// Rank on the exact rate; rounding is presentation only and would
	// collapse distinct rates into ties.
	exact := make(map[string]float64, len(models.Regions()))
	out := make([]RegionSummary, 0, len(models.Regions()))
	for _, region := range models.Regions() {
		total := totals[region.Code]
		rate := float64(total) / float64(region.Population) * 100000
		exact[region.Code] = rate
		out = append(out, RegionSummary{
			Code:       region.Code,
			Name:       region.Name,
			Population: region.Population,
			Total:      total,
			Rate:       round1(rate),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		ri, rj := exact[out[i].Code], exact[out[j].Code]
		if ri != rj {
			return ri > rj
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

func (s *Service) observe(operation string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveQuery(operation, time.Since(start))
	}
}

func topCauses(causes map[string]int, n int) []CauseCount {
	out := make([]CauseCount, 0, len(causes))
	for cause, total := range causes {
		out = append(out, CauseCount{Cause: cause, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Cause < out[j].Cause
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
