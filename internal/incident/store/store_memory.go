package store

import (
	"context"
	"sync"
	"time"

	"redatlas/internal/incident/models"
	dErrors "redatlas/pkg/domain-errors"
)

// InMemoryStore keeps the whole dataset in one ordered slice. The mutex only
// guards the load barrier; once loaded, the slice and maps are immutable and
// any number of requests may read them concurrently.
type InMemoryStore struct {
	mu          sync.RWMutex
	loaded      bool
	records     []models.Incident
	localityPop map[string]int64
	minDate     time.Time
	maxDate     time.Time
}

// NewInMemoryStore creates an empty, not-ready store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Load installs the dataset. It may succeed at most once, and a dataset with
// zero records leaves the store not ready.
func (s *InMemoryStore) Load(records []models.Incident, localityPop map[string]int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return dErrors.New(dErrors.CodeInternal, "record store already loaded")
	}
	if len(records) == 0 {
		return dErrors.New(dErrors.CodeDataUnavailable, "dataset contains no records")
	}

	min, max := records[0].Date, records[0].Date
	for _, rec := range records[1:] {
		if rec.Date.Before(min) {
			min = rec.Date
		}
		if rec.Date.After(max) {
			max = rec.Date
		}
	}

	if localityPop == nil {
		localityPop = map[string]int64{}
	}

	s.records = records
	s.localityPop = localityPop
	s.minDate = min
	s.maxDate = max
	s.loaded = true
	return nil
}

// Snapshot returns the shared record slice.
func (s *InMemoryStore) Snapshot(_ context.Context) ([]models.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return nil, dErrors.New(dErrors.CodeDataUnavailable, "record store not loaded")
	}
	return s.records, nil
}

// Population resolves reference populations: regions from the fixed catalog,
// localities from figures captured at load time. Other dimensions have none.
func (s *InMemoryStore) Population(dim models.Dimension, key string) (int64, bool) {
	switch dim {
	case models.DimensionRegion:
		if r, ok := models.RegionByCode(key); ok {
			return r.Population, true
		}
		return 0, false
	case models.DimensionLocality:
		s.mu.RLock()
		defer s.mu.RUnlock()
		pop, ok := s.localityPop[key]
		return pop, ok && pop > 0
	default:
		return 0, false
	}
}

// Count returns the number of loaded records.
func (s *InMemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Ready reports whether the store can serve queries.
func (s *InMemoryStore) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Span returns the covered date range of the dataset.
func (s *InMemoryStore) Span() (time.Time, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return time.Time{}, time.Time{}, false
	}
	return s.minDate, s.maxDate, true
}
