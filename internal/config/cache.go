package config

import (
	"os"
	"strconv"
	"time"
)

// StatsCacheConfig defines settings for caching the employee statistics
// response in Redis. When Enabled is false or no Redis client is configured,
// the handler computes statistics from the database on every request.
type StatsCacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadStatsCacheConfig reads environment variables to build a StatsCacheConfig.
// Defaults are used when variables are not set.
func LoadStatsCacheConfig() StatsCacheConfig {
	return StatsCacheConfig{
		Enabled: getenv("CACHE_ENABLED", "true") == "true",
		TTL:     parseDur(getenv("CACHE_TTL", "30s")),
		Prefix:  getenv("CACHE_PREFIX", "cache"),
	}
}

// RateLimitConfig defines settings for the fixed-window rate limiter applied
// to the register and login endpoints. Limit requests are allowed per Window
// for each client IP.
type RateLimitConfig struct {
	Enabled bool
	Limit   int
	Window  time.Duration
	Prefix  string
}

// LoadRateLimitConfig reads environment variables to build a RateLimitConfig.
func LoadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled: getenv("RATE_LIMIT_ENABLED", "true") == "true",
		Limit:   atoi(getenv("RATE_LIMIT_MAX", "20")),
		Window:  parseDur(getenv("RATE_LIMIT_WINDOW", "1m")),
		Prefix:  getenv("RATE_LIMIT_PREFIX", "ratelimit"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}
