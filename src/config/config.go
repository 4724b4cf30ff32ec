package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

var API_ENV = os.Getenv("API_ENV")

// RefreshInterval is how often live sessions re-fetch their booking
// partitions from the store. Tunable via REFRESH_INTERVAL (seconds).
func RefreshInterval() time.Duration {
	return durationEnv("REFRESH_INTERVAL", time.Second, 30*time.Second)
}

// AutoCompleteInterval is how often the auto-completion sweep runs.
// Tunable via AUTOCOMPLETE_INTERVAL (seconds).
func AutoCompleteInterval() time.Duration {
	return durationEnv("AUTOCOMPLETE_INTERVAL", time.Second, 5*time.Minute)
}

// CompletionWindow is how long after the tour start a paid booking stays
// open for explicit confirmation before it auto-completes. Tunable via
// COMPLETION_WINDOW_HOURS.
func CompletionWindow() time.Duration {
	return durationEnv("COMPLETION_WINDOW_HOURS", time.Hour, 48*time.Hour)
}

func durationEnv(key string, unit, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return time.Duration(n) * unit
}
