package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redatlas/internal/incident/models"
	dErrors "redatlas/pkg/domain-errors"
)

func TestRiskIndexByRegion(t *testing.T) {
	svc := newTestService(t)

	entries, err := svc.RiskIndex(context.Background(), models.DimensionRegion, 0)
	require.NoError(t, err)

	// The catalog is closed: every region appears, incidents or not.
	require.Len(t, entries, 32)

	// "02" and "25" share total 3 and thus the same index; the tie resolves
	// by key. "01" follows with a lower volume percentile.
	assert.Equal(t, "02", entries[0].Key)
	assert.Equal(t, "25", entries[1].Key)
	assert.Equal(t, "01", entries[2].Key)

	require.NotNil(t, entries[0].Index)
	require.NotNil(t, entries[2].Index)
	assert.Greater(t, *entries[0].Index, *entries[2].Index)
	assert.Equal(t, BandCritical, entries[0].Band)

	// Zero-incident regions cluster at an identical index, ordered by code.
	tail := entries[3:]
	require.NotNil(t, tail[0].Index)
	for i, e := range tail {
		assert.Equal(t, 0, e.Total)
		require.NotNil(t, e.Index, "region %s", e.Key)
		assert.Equal(t, *tail[0].Index, *e.Index)
		if i > 0 {
			assert.Greater(t, e.Key, tail[i-1].Key)
		}
	}
}

func TestRiskIndexBounds(t *testing.T) {
	svc := newTestService(t)

	for _, dim := range []models.Dimension{models.DimensionRegion, models.DimensionLocality} {
		entries, err := svc.RiskIndex(context.Background(), dim, 0)
		require.NoError(t, err)
		for _, e := range entries {
			if e.Index == nil {
				continue
			}
			assert.GreaterOrEqual(t, *e.Index, 0.0, "dimension %s key %s", dim, e.Key)
			assert.LessOrEqual(t, *e.Index, 100.0, "dimension %s key %s", dim, e.Key)
		}
	}
}

func TestRiskIndexByLocality(t *testing.T) {
	svc := newTestService(t)

	entries, err := svc.RiskIndex(context.Background(), models.DimensionLocality, 0)
	require.NoError(t, err)
	require.Len(t, entries, 5)

	// Culiacán leads on both rate and volume percentiles.
	assert.Equal(t, "25/culiacán", entries[0].Key)
	assert.Equal(t, "Culiacán", entries[0].Label)

	// Los Mochis has no population reference: excluded from the sample,
	// flagged unavailable, sorted after every scored entity.
	last := entries[len(entries)-1]
	assert.Equal(t, "25/los mochis", last.Key)
	assert.Nil(t, last.Index)
	assert.Nil(t, last.Rate)
	assert.Equal(t, BandUnavailable, last.Band)
	assert.Equal(t, 1, last.Total)
}

func TestRiskIndexLimit(t *testing.T) {
	svc := newTestService(t)

	entries, err := svc.RiskIndex(context.Background(), models.DimensionRegion, 5)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, "02", entries[0].Key)

	// A limit past the entity count returns everything.
	entries, err = svc.RiskIndex(context.Background(), models.DimensionRegion, 500)
	require.NoError(t, err)
	assert.Len(t, entries, 32)
}

func TestRiskIndexNormalizesDimensionSpelling(t *testing.T) {
	svc := newTestService(t)

	canonical, err := svc.RiskIndex(context.Background(), models.DimensionRegion, 3)
	require.NoError(t, err)

	entries, err := svc.RiskIndex(context.Background(), models.Dimension("Region"), 3)
	require.NoError(t, err)
	assert.Equal(t, canonical, entries)

	_, err = svc.RiskIndex(context.Background(), models.Dimension("altitude"), 0)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
}

func TestRiskIndexRejectsNonPopulationDimensions(t *testing.T) {
	svc := newTestService(t)

	for _, dim := range []models.Dimension{
		models.DimensionMonth,
		models.DimensionWeek,
		models.DimensionSex,
		models.DimensionAgeBand,
	} {
		_, err := svc.RiskIndex(context.Background(), dim, 0)
		require.Error(t, err, "dimension %s", dim)
		assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
	}
}

func TestPercentileRank(t *testing.T) {
	assert.Equal(t, 0.0, percentileRank(nil, 5))

	// A lone element sits at the midpoint, not at 100.
	assert.Equal(t, 50.0, percentileRank([]float64{3}, 3))

	sample := []float64{1, 2, 2, 4}
	assert.Equal(t, 12.5, percentileRank(sample, 1))
	assert.Equal(t, 50.0, percentileRank(sample, 2))
	assert.Equal(t, 87.5, percentileRank(sample, 4))
}

func TestClassifyBand(t *testing.T) {
	assert.Equal(t, BandVeryLow, classifyBand(0))
	assert.Equal(t, BandVeryLow, classifyBand(19.9))
	assert.Equal(t, BandLow, classifyBand(20))
	assert.Equal(t, BandLow, classifyBand(39.9))
	assert.Equal(t, BandMedium, classifyBand(40))
	assert.Equal(t, BandHigh, classifyBand(60))
	assert.Equal(t, BandHigh, classifyBand(79.9))
	assert.Equal(t, BandCritical, classifyBand(80))
	assert.Equal(t, BandCritical, classifyBand(100))
}
