package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware used on
// the public available-slots endpoint.  When Enabled is false caching is
// disabled; without a Redis client the middleware falls back to an
// in-process cache when LocalFallback is set.  Methods lists the HTTP
// methods to cache.  TTL is kept short because slots change whenever a
// booking is created or cancelled.
type CacheConfig struct {
	Enabled       bool
	LocalFallback bool
	Methods       map[string]bool
	TTL           time.Duration
	KeyStrategy   string
	Prefix        string
	MaxBodyBytes  int
}

// LoadCacheConfig reads environment variables to build a CacheConfig.  Defaults
// are used when variables are not set.  All methods are upper-cased.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:       getenv("CACHE_ENABLED", "true") == "true",
		LocalFallback: envBool("CACHE_LOCAL_FALLBACK", true),
		Methods:       parseMethods(getenv("CACHE_METHODS", "GET")),
		TTL:           parseDur(getenv("CACHE_TTL", "10s")),
		KeyStrategy:   getenv("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:        getenv("CACHE_PREFIX", "slots"),
		MaxBodyBytes:  atoi(getenv("CACHE_MAX_BODY_BYTES", "262144")),
	}
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}

// Helper functions reused from redis.go and ratelimit.go
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
