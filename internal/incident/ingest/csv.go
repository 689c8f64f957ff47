// Package ingest performs the one-time startup load of the cleaned dataset
// CSV into the record store. It is the only writer the store ever sees.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"redatlas/internal/incident/models"
)

// Column names of the cleaned dataset export.
const (
	colDate       = "fecha_ocurr"
	colYear       = "anio_ocur"
	colRegionCode = "clave_entidad"
	colRegionName = "nom_ent"
	colLocality   = "nom_mun"
	colSex        = "sexo_cat"
	colAge        = "edad_anos"
	colCause      = "causa_def_cat"
	colLatitude   = "lat_decimal"
	colLongitude  = "lon_decimal"
	colPopulation = "pob_total"
)

// Stats summarizes one load for logging and operational checks.
type Stats struct {
	Rows       int
	Loaded     int
	SkippedBad int // unparseable or missing occurrence date
	SkippedOff int // occurrence year outside the dataset year
}

// Loader reads the dataset CSV into incident records plus the per-locality
// population reference figures.
type Loader struct {
	logger *slog.Logger
	year   int
}

// NewLoader creates a loader for the given dataset year.
func NewLoader(logger *slog.Logger, year int) *Loader {
	return &Loader{logger: logger, year: year}
}

// LoadFile reads and parses the CSV at path.
func (l *Loader) LoadFile(path string) ([]models.Incident, map[string]int64, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, Stats{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return l.Load(f)
}

// Load parses the CSV stream. Rows with an unparseable occurrence date and
// rows outside the dataset year are skipped and counted, never fatal; a
// missing required column is fatal.
func (l *Loader) Load(r io.Reader) ([]models.Incident, map[string]int64, Stats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, nil, Stats{}, fmt.Errorf("read dataset header: %w", err)
	}

	cols, err := indexColumns(header)
	if err != nil {
		return nil, nil, Stats{}, err
	}

	var (
		stats       Stats
		records     []models.Incident
		localityPop = make(map[string]int64)
	)

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, Stats{}, fmt.Errorf("read dataset row %d: %w", stats.Rows+2, err)
		}
		stats.Rows++

		date, ok := parseDate(cols.get(row, colDate))
		if !ok {
			stats.SkippedBad++
			continue
		}
		if date.Year() != l.year {
			stats.SkippedOff++
			continue
		}

		rec := models.Incident{
			RegionCode: normalizeRegionCode(cols.get(row, colRegionCode)),
			Locality:   strings.TrimSpace(cols.get(row, colLocality)),
			Cause:      strings.TrimSpace(cols.get(row, colCause)),
			Date:       date,
		}

		if region, ok := models.RegionByCode(rec.RegionCode); ok {
			rec.RegionName = region.Name
		} else {
			rec.RegionName = strings.TrimSpace(cols.get(row, colRegionName))
		}

		if sex, ok := models.ParseSex(translateSex(cols.get(row, colSex))); ok {
			rec.Sex = sex
		} else {
			rec.Sex = models.SexUnspecified
		}

		if age, ok := parseInt(cols.get(row, colAge)); ok && age >= 0 {
			rec.Age = &age
		}

		lat, latOK := parseFloat(cols.get(row, colLatitude))
		lon, lonOK := parseFloat(cols.get(row, colLongitude))
		if latOK && lonOK {
			rec.Latitude = &lat
			rec.Longitude = &lon
		}

		if rec.Locality != "" {
			if pop, ok := parseInt(cols.get(row, colPopulation)); ok && pop > 0 {
				key := models.LocalityKey(rec.RegionCode, rec.Locality)
				if int64(pop) > localityPop[key] {
					localityPop[key] = int64(pop)
				}
			}
		}

		records = append(records, rec)
		stats.Loaded++
	}

	l.logger.Info("dataset loaded",
		"rows", stats.Rows,
		"loaded", stats.Loaded,
		"skipped_bad_date", stats.SkippedBad,
		"skipped_off_year", stats.SkippedOff,
		"localities_with_population", len(localityPop),
	)

	return records, localityPop, stats, nil
}

// columnIndex maps column names to positions in the header row.
type columnIndex map[string]int

func (c columnIndex) get(row []string, name string) string {
	idx, ok := c[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func indexColumns(header []string) (columnIndex, error) {
	cols := make(columnIndex, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colDate, colRegionCode} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("dataset missing required column %q", required)
		}
	}
	return cols, nil
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	// The cleaned export writes plain dates; tolerate a trailing timestamp.
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parseInt tolerates the float formatting pandas gives integer columns with
// missing values ("34.0").
func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// normalizeRegionCode zero-pads single digit entity codes so they match the
// catalog ("1" -> "01").
func normalizeRegionCode(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// translateSex maps the Spanish source labels onto the enum vocabulary.
func translateSex(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hombre":
		return string(models.SexMale)
	case "mujer":
		return string(models.SexFemale)
	default:
		return string(models.SexUnspecified)
	}
}
