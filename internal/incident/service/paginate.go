package service

import (
	"redatlas/internal/incident/models"
	dErrors "redatlas/pkg/domain-errors"
)

// Pagination bounds for record-level listings. Aggregated results are never
// paginated.
const (
	DefaultLimit = 50
	MaxLimit     = 1000
)

// Page bounds a record listing. A zero Limit means unset and takes the
// default.
type Page struct {
	Limit  int
	Offset int
}

// normalized validates the page and applies the default limit.
func (p Page) normalized() (Page, error) {
	if p.Limit < 0 || p.Offset < 0 {
		return Page{}, dErrors.New(dErrors.CodeInvalidPagination, "limit and offset must be non-negative")
	}
	if p.Limit > MaxLimit {
		return Page{}, dErrors.Newf(dErrors.CodeInvalidPagination, "limit %d exceeds ceiling %d", p.Limit, MaxLimit)
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	return p, nil
}

// paginate slices one page out of the subset and reports the unsliced total
// so callers can tell whether more pages remain.
func paginate(subset []models.Incident, page Page) ([]models.Incident, int, error) {
	page, err := page.normalized()
	if err != nil {
		return nil, 0, err
	}

	total := len(subset)
	if page.Offset >= total {
		return []models.Incident{}, total, nil
	}

	end := page.Offset + page.Limit
	if end > total {
		end = total
	}
	return subset[page.Offset:end], total, nil
}
