package config

import (
	"os"
	"strconv"
)

// Server captures process level configuration.
type Server struct {
	Addr        string
	DatasetPath string
	DatasetYear int
	LogLevel    string

	// RateLimit is requests per client per minute. Zero disables limiting.
	RateLimit int
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("REDATLAS_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	dataset := os.Getenv("REDATLAS_DATASET")
	if dataset == "" {
		dataset = "data/homicides_2024_clean.csv"
	}

	year := 2024
	if v := os.Getenv("REDATLAS_DATASET_YEAR"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			year = parsed
		}
	}

	level := os.Getenv("REDATLAS_LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	rateLimit := 0
	if v := os.Getenv("REDATLAS_RATE_LIMIT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			rateLimit = parsed
		}
	}

	return Server{
		Addr:        addr,
		DatasetPath: dataset,
		DatasetYear: year,
		LogLevel:    level,
		RateLimit:   rateLimit,
	}
}
