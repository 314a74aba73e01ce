package config

import "time"

// CacheConfig defines settings for the Redis-backed complaint cache.
// When Enabled is false or no Redis client is configured, lookups go
// straight to the store. TTL bounds how long a cached complaint lives;
// status updates invalidate the entry regardless.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCacheConfig reads CACHE_* variables, falling back to defaults.
func LoadCacheConfig() CacheConfig {
	c := CacheConfig{
		Enabled: envBool("CACHE_ENABLED", true),
		TTL:     envDur("CACHE_TTL", 5*time.Minute),
		Prefix:  envStr("CACHE_PREFIX", "complaint"),
	}
	if c.TTL <= 0 {
		c.TTL = time.Minute
	}
	return c
}
