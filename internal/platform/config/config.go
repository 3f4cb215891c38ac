package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load copies the given dotenv files (".env" when none are named) into the
// process environment. Variables already set are left alone. A missing file
// is an error; the server ignores it and runs on the real environment.
func Load(paths ...string) error {
	if len(paths) == 0 {
		return godotenv.Load(".env")
	}
	return godotenv.Load(paths...)
}

// lookup parses the variable named by key, returning fallback when it is
// unset, empty or does not parse.
func lookup[T any](key string, fallback T, parse func(string) (T, error)) T {
	s, ok := os.LookupEnv(key)
	if !ok || s == "" {
		return fallback
	}
	v, err := parse(s)
	if err != nil {
		return fallback
	}
	return v
}

// GetEnv returns the variable named by key, or fallback when it is unset or empty.
func GetEnv(key, fallback string) string {
	return lookup(key, fallback, func(s string) (string, error) { return s, nil })
}

func GetEnvInt(key string, fallback int) int {
	return lookup(key, fallback, strconv.Atoi)
}

func GetEnvFloat(key string, fallback float64) float64 {
	return lookup(key, fallback, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

// GetEnvBool accepts the forms strconv.ParseBool does ("1", "true", "F", ...).
func GetEnvBool(key string, fallback bool) bool {
	return lookup(key, fallback, strconv.ParseBool)
}

// GetEnvDuration parses values like "100ms" or "30m". A bare integer is read
// as milliseconds.
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	return lookup(key, fallback, parseDuration)
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err == nil {
		return d, nil
	}
	n, nerr := strconv.Atoi(s)
	if nerr != nil {
		return 0, err
	}
	return time.Duration(n) * time.Millisecond, nil
}
