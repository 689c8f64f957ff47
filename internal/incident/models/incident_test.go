package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSex(t *testing.T) {
	for raw, want := range map[string]Sex{
		"male":         SexMale,
		"FEMALE":       SexFemale,
		" unspecified": SexUnspecified,
	} {
		got, ok := ParseSex(raw)
		require.True(t, ok, raw)
		assert.Equal(t, want, got)
	}

	for _, raw := range []string{"", "m", "hombre", "other"} {
		_, ok := ParseSex(raw)
		assert.False(t, ok, raw)
	}
}

func TestAgeBand(t *testing.T) {
	age := func(v int) *int { return &v }

	cases := []struct {
		age  *int
		want string
	}{
		{nil, AgeBandUnknown},
		{age(0), "00-17"},
		{age(17), "00-17"},
		{age(18), "18-29"},
		{age(29), "18-29"},
		{age(30), "30-44"},
		{age(44), "30-44"},
		{age(45), "45-59"},
		{age(59), "45-59"},
		{age(60), "60+"},
		{age(97), "60+"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, AgeBand(tc.age))
	}
}

func TestParseDimension(t *testing.T) {
	dim, ok := ParseDimension("age-band")
	require.True(t, ok)
	assert.Equal(t, DimensionAgeBand, dim)

	dim, ok = ParseDimension(" Region ")
	require.True(t, ok)
	assert.Equal(t, DimensionRegion, dim)

	_, ok = ParseDimension("cause")
	assert.False(t, ok)
}

func TestDimensionHasPopulation(t *testing.T) {
	assert.True(t, DimensionRegion.HasPopulation())
	assert.True(t, DimensionLocality.HasPopulation())
	assert.False(t, DimensionMonth.HasPopulation())
	assert.False(t, DimensionWeek.HasPopulation())
	assert.False(t, DimensionSex.HasPopulation())
	assert.False(t, DimensionAgeBand.HasPopulation())
}

func TestLocalityKey(t *testing.T) {
	assert.Equal(t, "25/culiacán", LocalityKey("25", "Culiacán"))
	assert.Equal(t, "02/tijuana", LocalityKey("02", "TIJUANA"))
}

func TestHasCoordinates(t *testing.T) {
	lat, lon := 19.4, -99.1
	assert.True(t, Incident{Latitude: &lat, Longitude: &lon}.HasCoordinates())
	assert.False(t, Incident{Latitude: &lat}.HasCoordinates())
	assert.False(t, Incident{}.HasCoordinates())
}

func TestRegionCatalog(t *testing.T) {
	regions := Regions()
	require.Len(t, regions, 32)

	// Codes are zero-padded, unique, and ascending.
	seen := make(map[string]struct{})
	for i, r := range regions {
		assert.Len(t, r.Code, 2)
		assert.Positive(t, r.Population, r.Code)
		_, dup := seen[r.Code]
		assert.False(t, dup, r.Code)
		seen[r.Code] = struct{}{}
		if i > 0 {
			assert.Greater(t, r.Code, regions[i-1].Code)
		}
	}

	r, ok := RegionByCode("25")
	require.True(t, ok)
	assert.Equal(t, "Sinaloa", r.Name)

	_, ok = RegionByCode("33")
	assert.False(t, ok)

	r, ok = RegionByName("baja california")
	require.True(t, ok)
	assert.Equal(t, "02", r.Code)
}
