package service

import (
	"context"
	"strings"
	"time"

	"redatlas/internal/incident/models"
	dErrors "redatlas/pkg/domain-errors"
)

// Criteria are the optional search constraints. Unset fields impose no
// constraint; set fields combine with logical AND. Criteria are never
// validated against the region catalog: an unknown region simply matches
// nothing.
type Criteria struct {
	Region   string // exact match on catalog code or name, case-insensitive
	Locality string // exact match, case-insensitive
	Sex      string // enum value
	Cause    string // case-insensitive substring
	DateFrom string // inclusive, YYYY-MM-DD
	DateTo   string // inclusive, YYYY-MM-DD
}

// IsZero reports whether no criterion is set.
func (c Criteria) IsZero() bool {
	return c == Criteria{}
}

// predicate is a compiled Criteria, ready for record matching.
type predicate struct {
	region   string
	locality string
	sex      models.Sex
	hasSex   bool
	cause    string
	from     time.Time
	hasFrom  bool
	to       time.Time
	hasTo    bool
	// An inverted date range matches nothing, by contract not an error.
	never bool
}

// compile parses and normalizes the criteria. Malformed dates fail with
// CodeInvalidDate, unknown sex values with CodeBadRequest.
func (c Criteria) compile() (predicate, error) {
	p := predicate{
		region:   strings.ToLower(strings.TrimSpace(c.Region)),
		locality: strings.ToLower(strings.TrimSpace(c.Locality)),
		cause:    strings.ToLower(strings.TrimSpace(c.Cause)),
	}

	if c.Sex != "" {
		sex, ok := models.ParseSex(c.Sex)
		if !ok {
			return predicate{}, dErrors.Newf(dErrors.CodeBadRequest, "invalid sex %q", c.Sex)
		}
		p.sex = sex
		p.hasSex = true
	}

	if c.DateFrom != "" {
		from, err := parseDate(c.DateFrom)
		if err != nil {
			return predicate{}, err
		}
		p.from = from
		p.hasFrom = true
	}

	if c.DateTo != "" {
		to, err := parseDate(c.DateTo)
		if err != nil {
			return predicate{}, err
		}
		p.to = to
		p.hasTo = true
	}

	if p.hasFrom && p.hasTo && p.from.After(p.to) {
		p.never = true
	}
	return p, nil
}

func (p predicate) isUnconstrained() bool {
	return p.region == "" && p.locality == "" && !p.hasSex && p.cause == "" &&
		!p.hasFrom && !p.hasTo && !p.never
}

func (p predicate) matches(rec models.Incident) bool {
	if p.never {
		return false
	}
	if p.region != "" &&
		p.region != strings.ToLower(rec.RegionCode) &&
		p.region != strings.ToLower(rec.RegionName) {
		return false
	}
	if p.locality != "" && p.locality != strings.ToLower(rec.Locality) {
		return false
	}
	if p.hasSex && rec.Sex != p.sex {
		return false
	}
	if p.cause != "" && !strings.Contains(strings.ToLower(rec.Cause), p.cause) {
		return false
	}
	if p.hasFrom && rec.Date.Before(p.from) {
		return false
	}
	if p.hasTo && rec.Date.After(p.to) {
		return false
	}
	return true
}

// filtered evaluates the criteria against the store, preserving store order.
func (s *Service) filtered(ctx context.Context, c Criteria) ([]models.Incident, error) {
	if c.IsZero() {
		return s.store.Snapshot(ctx)
	}

	p, err := c.compile()
	if err != nil {
		return nil, err
	}

	records, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if p.isUnconstrained() {
		return records, nil
	}

	var subset []models.Incident
	for _, rec := range records {
		if p.matches(rec) {
			subset = append(subset, rec)
		}
	}
	return subset, nil
}

// parseDate accepts only strict YYYY-MM-DD values.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, dErrors.Newf(dErrors.CodeInvalidDate, "invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}
