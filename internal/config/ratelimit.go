package config

import "time"

// RateLimitConfig configures the optional Redis token bucket in front of the
// auth endpoints. It is off unless RATE_LIMIT_ENABLED is set. Each key starts with Capacity tokens and regains RefillTokens
// every RefillInterval. KeyStrategy is one of ip, user, route, ip_route or
// ip_user_route (the default).
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
	KeyStrategy    string
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables, falling back to defaults.
func LoadRateLimitConfig() RateLimitConfig {
	c := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", false),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 10),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", 6*time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "ratelimit"),
		KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_route"),
	}
	if c.Capacity < 1 {
		c.Capacity = 1
	}
	if c.TTL < time.Second {
		c.TTL = time.Second
	}
	return c
}
