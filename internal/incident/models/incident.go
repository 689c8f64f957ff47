// Package models defines the homicide incident record and the closed
// vocabularies (sex, grouping dimensions, comparison metrics) the query
// engine operates on. Records are value types and never mutated after load.
package models

import (
	"strings"
	"time"
)

// Sex is the enumerated sex of a victim.
type Sex string

const (
	SexMale        Sex = "male"
	SexFemale      Sex = "female"
	SexUnspecified Sex = "unspecified"
)

// ParseSex maps a caller-supplied string onto the enum. The empty string is
// not a valid sex; callers treat it as "criterion unset" before parsing.
func ParseSex(s string) (Sex, bool) {
	switch Sex(strings.ToLower(strings.TrimSpace(s))) {
	case SexMale:
		return SexMale, true
	case SexFemale:
		return SexFemale, true
	case SexUnspecified:
		return SexUnspecified, true
	}
	return "", false
}

// Incident is one homicide case. All fields are set at load time; the record
// is read-only for the process lifetime.
type Incident struct {
	RegionCode string // closed catalog key, "01".."32"
	RegionName string
	Locality   string // municipality name, empty when unknown
	Sex        Sex
	Age        *int // nil when unknown
	Cause      string
	Date       time.Time
	Latitude   *float64 // nil when the case could not be geocoded
	Longitude  *float64
}

// HasCoordinates reports whether the record carries a geocoded position.
// Records without one are excluded from geospatial output only.
func (i Incident) HasCoordinates() bool {
	return i.Latitude != nil && i.Longitude != nil
}

// AgeBandUnknown is the bucket for records with no recorded age.
const AgeBandUnknown = "unknown"

// AgeBand assigns an age to its reporting band. Band keys are zero-padded so
// lexical ordering matches numeric ordering.
func AgeBand(age *int) string {
	if age == nil {
		return AgeBandUnknown
	}
	switch a := *age; {
	case a < 18:
		return "00-17"
	case a < 30:
		return "18-29"
	case a < 45:
		return "30-44"
	case a < 60:
		return "45-59"
	default:
		return "60+"
	}
}

// Dimension is a grouping axis for aggregation.
type Dimension string

const (
	DimensionRegion   Dimension = "region"
	DimensionLocality Dimension = "locality"
	DimensionMonth    Dimension = "month"
	DimensionWeek     Dimension = "week"
	DimensionSex      Dimension = "sex"
	DimensionAgeBand  Dimension = "age_band"
)

// ParseDimension maps a caller-supplied string onto the enum, accepting the
// hyphenated spelling of age_band as well.
func ParseDimension(s string) (Dimension, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "region":
		return DimensionRegion, true
	case "locality":
		return DimensionLocality, true
	case "month":
		return DimensionMonth, true
	case "week":
		return DimensionWeek, true
	case "sex":
		return DimensionSex, true
	case "age_band", "age-band":
		return DimensionAgeBand, true
	}
	return "", false
}

// HasPopulation reports whether entities of this dimension carry a reference
// population, which rate and risk index computations require.
func (d Dimension) HasPopulation() bool {
	return d == DimensionRegion || d == DimensionLocality
}

// Metric selects the value compared across regions.
type Metric string

const (
	MetricRate  Metric = "rate"
	MetricTotal Metric = "total"
	MetricIndex Metric = "index"
)

// ParseMetric maps a caller-supplied string onto the enum.
func ParseMetric(s string) (Metric, bool) {
	switch Metric(strings.ToLower(strings.TrimSpace(s))) {
	case MetricRate:
		return MetricRate, true
	case MetricTotal:
		return MetricTotal, true
	case MetricIndex:
		return MetricIndex, true
	}
	return "", false
}

// LocalityKey builds the aggregation key for a municipality. Locality names
// repeat across regions, so the key is qualified by the region code.
func LocalityKey(regionCode, locality string) string {
	return regionCode + "/" + strings.ToLower(locality)
}
