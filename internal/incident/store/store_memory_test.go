package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redatlas/internal/incident/models"
	dErrors "redatlas/pkg/domain-errors"
)

func date(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("not ready before load", func(t *testing.T) {
		s := NewInMemoryStore()
		assert.False(t, s.Ready())
		assert.Equal(t, 0, s.Count())

		_, err := s.Snapshot(ctx)
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeDataUnavailable))

		_, _, ok := s.Span()
		assert.False(t, ok)
	})

	t.Run("empty load leaves store not ready", func(t *testing.T) {
		s := NewInMemoryStore()
		err := s.Load(nil, nil)
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeDataUnavailable))
		assert.False(t, s.Ready())
	})

	t.Run("load once and read", func(t *testing.T) {
		s := NewInMemoryStore()
		records := []models.Incident{
			{RegionCode: "25", RegionName: "Sinaloa", Date: date(time.March, 15)},
			{RegionCode: "01", RegionName: "Aguascalientes", Date: date(time.January, 2)},
			{RegionCode: "25", RegionName: "Sinaloa", Date: date(time.June, 30)},
		}
		require.NoError(t, s.Load(records, map[string]int64{"25/culiacán": 1003530}))

		assert.True(t, s.Ready())
		assert.Equal(t, 3, s.Count())

		got, err := s.Snapshot(ctx)
		require.NoError(t, err)
		// Order is preserved exactly as loaded.
		assert.Equal(t, records, got)

		min, max, ok := s.Span()
		require.True(t, ok)
		assert.Equal(t, date(time.January, 2), min)
		assert.Equal(t, date(time.June, 30), max)

		// Second load is rejected: the store is append-only at load time.
		err = s.Load(records, nil)
		require.Error(t, err)
	})

	t.Run("population lookup", func(t *testing.T) {
		s := NewInMemoryStore()
		require.NoError(t, s.Load([]models.Incident{
			{RegionCode: "25", Date: date(time.March, 1)},
		}, map[string]int64{"25/culiacán": 1003530, "25/ghost town": 0}))

		pop, ok := s.Population(models.DimensionRegion, "25")
		require.True(t, ok)
		assert.Equal(t, int64(3026943), pop)

		_, ok = s.Population(models.DimensionRegion, "99")
		assert.False(t, ok)

		pop, ok = s.Population(models.DimensionLocality, "25/culiacán")
		require.True(t, ok)
		assert.Equal(t, int64(1003530), pop)

		// A zero reference figure counts as unavailable.
		_, ok = s.Population(models.DimensionLocality, "25/ghost town")
		assert.False(t, ok)

		// Non-population dimensions never resolve.
		_, ok = s.Population(models.DimensionMonth, "2024-03")
		assert.False(t, ok)
	})
}
