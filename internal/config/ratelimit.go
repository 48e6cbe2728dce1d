package config

import "time"

// Bucket is one token bucket: Burst requests up front, then one more every
// Every.
type Bucket struct {
    Burst int
    Every time.Duration
}

// TTL is the Redis expiry for a bucket key: the time an idle bucket takes to
// refill completely, never below one second.
func (b Bucket) TTL() time.Duration {
    if d := time.Duration(b.Burst) * b.Every; d > time.Second {
        return d
    }
    return time.Second
}

// RateLimitConfig holds the two limits the API applies.  Clock covers the
// clock-in, clock-out and register routes and is kept per device token;
// Login covers admin login and is kept per client IP.
type RateLimitConfig struct {
    Enabled bool
    Prefix  string
    Clock   Bucket
    Login   Bucket
}

// LoadRateLimitConfig reads RATE_LIMIT_ENABLED, RATE_LIMIT_PREFIX and the
// RATE_LIMIT_{CLOCK,LOGIN}_{BURST,EVERY} pairs.
func LoadRateLimitConfig() RateLimitConfig {
    return RateLimitConfig{
        Enabled: envBool("RATE_LIMIT_ENABLED", true),
        Prefix:  envStr("RATE_LIMIT_PREFIX", "timeclock:rl"),
        Clock:   loadBucket("RATE_LIMIT_CLOCK", 10, 6*time.Second),
        Login:   loadBucket("RATE_LIMIT_LOGIN", 5, time.Minute),
    }
}

func loadBucket(prefix string, burst int, every time.Duration) Bucket {
    b := Bucket{
        Burst: envInt(prefix+"_BURST", burst),
        Every: envDur(prefix+"_EVERY", every),
    }
    if b.Burst < 1 {
        b.Burst = 1
    }
    if b.Every <= 0 {
        b.Every = every
    }
    return b
}
