package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redatlas/internal/incident/models"
	"redatlas/internal/incident/store"
	dErrors "redatlas/pkg/domain-errors"
)

func TestSummaryByRegion(t *testing.T) {
	svc := newTestService(t)

	groups, err := svc.Summary(context.Background(), models.DimensionRegion, Criteria{})
	require.NoError(t, err)
	require.Len(t, groups, 3)

	// Descending by total; "02" and "25" tie at 3 and resolve by key.
	assert.Equal(t, "02", groups[0].Key)
	assert.Equal(t, 3, groups[0].Total)
	assert.Equal(t, "25", groups[1].Key)
	assert.Equal(t, 3, groups[1].Total)
	assert.Equal(t, "01", groups[2].Key)
	assert.Equal(t, 1, groups[2].Total)

	// Regions always carry a catalog population, so rates are present.
	require.NotNil(t, groups[0].Rate)
	assert.InDelta(t, 0.1, *groups[0].Rate, 1e-9)
	assert.Equal(t, "Baja California", groups[0].Label)
}

func TestSummaryTotalsSumToSubset(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, dim := range []models.Dimension{
		models.DimensionRegion,
		models.DimensionLocality,
		models.DimensionMonth,
		models.DimensionWeek,
		models.DimensionSex,
		models.DimensionAgeBand,
	} {
		criteria := Criteria{DateFrom: "2024-03-01", DateTo: "2024-03-31"}
		subset, err := svc.filtered(ctx, criteria)
		require.NoError(t, err)

		groups, err := svc.Summary(ctx, dim, criteria)
		require.NoError(t, err)

		sum := 0
		for _, g := range groups {
			sum += g.Total
		}
		assert.Equal(t, len(subset), sum, "dimension %s", dim)
	}
}

func TestSummaryMonthContinuousAxis(t *testing.T) {
	svc := newTestService(t)

	// Fixture spans January through March with no February incidents: the
	// axis still emits February with a zero total.
	groups, err := svc.Summary(context.Background(), models.DimensionMonth, Criteria{})
	require.NoError(t, err)
	require.Len(t, groups, 3)

	byKey := make(map[string]Group)
	for _, g := range groups {
		byKey[g.Key] = g
	}

	jan, ok := byKey["2024-01"]
	require.True(t, ok)
	assert.Equal(t, 3, jan.Total)
	assert.Equal(t, "Jan", jan.Label)
	assert.Equal(t, 1, jan.Bucket)

	feb, ok := byKey["2024-02"]
	require.True(t, ok)
	assert.Equal(t, 0, feb.Total)

	mar, ok := byKey["2024-03"]
	require.True(t, ok)
	assert.Equal(t, 4, mar.Total)

	// Zero buckets never carry a rate: months have no reference population.
	assert.Nil(t, feb.Rate)
}

func TestSummaryMonthBucketsFollowFullSpanUnderFilter(t *testing.T) {
	svc := newTestService(t)

	// Filtering to Sinaloa empties January for the subset, but the axis still
	// covers the full store span, so January appears with total zero.
	groups, err := svc.Summary(context.Background(), models.DimensionMonth, Criteria{Region: "25"})
	require.NoError(t, err)
	require.Len(t, groups, 3)

	sum := 0
	for _, g := range groups {
		sum += g.Total
	}
	assert.Equal(t, 3, sum)
}

func TestSummaryByWeekEmitsEveryWeekInSpan(t *testing.T) {
	st := store.NewInMemoryStore()
	require.NoError(t, st.Load([]models.Incident{
		rec("25", "Culiacán", models.SexMale, intp(30), "Arma de Fuego", day(time.January, 1)),
		rec("25", "Culiacán", models.SexMale, intp(30), "Arma de Fuego", day(time.January, 22)),
	}, nil))
	svc := newServiceOver(t, st)

	groups, err := svc.Summary(context.Background(), models.DimensionWeek, Criteria{})
	require.NoError(t, err)

	// 2024-01-01 is ISO week 1 and 2024-01-22 is ISO week 4: four buckets,
	// two of them empty.
	require.Len(t, groups, 4)

	empty := 0
	for _, g := range groups {
		if g.Total == 0 {
			empty++
		}
	}
	assert.Equal(t, 2, empty)
}

func TestSummaryByAgeBand(t *testing.T) {
	svc := newTestService(t)

	groups, err := svc.Summary(context.Background(), models.DimensionAgeBand, Criteria{})
	require.NoError(t, err)

	byKey := make(map[string]int)
	for _, g := range groups {
		byKey[g.Key] = g.Total
	}
	assert.Equal(t, 2, byKey["18-29"])
	assert.Equal(t, 2, byKey["30-44"])
	assert.Equal(t, 1, byKey["45-59"])
	assert.Equal(t, 1, byKey["60+"])
	assert.Equal(t, 1, byKey[models.AgeBandUnknown])
}

func TestSummaryByLocalityRates(t *testing.T) {
	svc := newTestService(t)

	groups, err := svc.Summary(context.Background(), models.DimensionLocality, Criteria{})
	require.NoError(t, err)

	byKey := make(map[string]Group)
	for _, g := range groups {
		byKey[g.Key] = g
	}

	culiacan := byKey["25/culiacán"]
	require.NotNil(t, culiacan.Rate)
	assert.InDelta(t, 0.2, *culiacan.Rate, 1e-9)
	assert.Equal(t, "Culiacán", culiacan.Label)

	// Los Mochis has no population reference: rate omitted, not zero.
	mochis := byKey["25/los mochis"]
	assert.Equal(t, 1, mochis.Total)
	assert.Nil(t, mochis.Rate)
}

func TestSummaryNormalizesDimensionSpelling(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	canonical, err := svc.Summary(ctx, models.DimensionAgeBand, Criteria{})
	require.NoError(t, err)

	for _, raw := range []string{"age-band", "Age_Band"} {
		groups, err := svc.Summary(ctx, models.Dimension(raw), Criteria{})
		require.NoError(t, err, raw)
		assert.Equal(t, canonical, groups, raw)
		for _, g := range groups {
			assert.NotEmpty(t, g.Key, raw)
		}
	}
}

func TestSummaryInvalidDimension(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Summary(context.Background(), models.Dimension("altitude"), Criteria{})
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
}
