package config

import "time"

// CacheConfig controls the Redis cache in front of the admin worksite
// listing.  Entries are kept per admin and expire after TTL; boundaries are
// loaded by operators out of band, so a short TTL is the only invalidation.
type CacheConfig struct {
    Enabled      bool
    TTL          time.Duration
    Prefix       string
    MaxBodyBytes int // larger responses are served but not stored
}

// LoadCacheConfig reads CACHE_* variables.  A non-positive TTL turns the
// cache off.
func LoadCacheConfig() CacheConfig {
    c := CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        TTL:          envDur("CACHE_TTL", time.Minute),
        Prefix:       envStr("CACHE_PREFIX", "timeclock:cache"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
    }
    if c.TTL <= 0 {
        c.Enabled = false
    }
    return c
}
