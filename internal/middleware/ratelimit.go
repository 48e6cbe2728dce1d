package middleware

import (
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/timeclock/internal/config"
)

// takeToken refills KEYS[1] by whole intervals, takes one token if it can
// and returns {allowed, remaining, wait_ms}.  A full bucket does not bank
// time, so refills start counting from the first request after idling.
//
// ARGV: now_ms, burst, every_ms, ttl_ms
var takeToken = redis.NewScript(`
    local now = tonumber(ARGV[1])
    local burst = tonumber(ARGV[2])
    local every = tonumber(ARGV[3])

    local b = redis.call('HMGET', KEYS[1], 'n', 't')
    local n = tonumber(b[1]) or burst
    local t = tonumber(b[2]) or now

    local gained = math.floor((now - t) / every)
    if gained > 0 then
        n = math.min(burst, n + gained)
        t = t + gained * every
    end
    if n >= burst then
        t = now
    end

    local allowed, wait = 0, 0
    if n > 0 then
        allowed = 1
        n = n - 1
    else
        wait = every - (now - t)
    end

    redis.call('HSET', KEYS[1], 'n', n, 't', t)
    redis.call('PEXPIRE', KEYS[1], ARGV[4])
    return {allowed, n, wait}
`)

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// limiter applies one bucket to requests grouped by key.
type limiter struct {
    rdb    *redis.Client
    bucket config.Bucket
    key    func(c echo.Context) string
}

func (l limiter) handle(next echo.HandlerFunc) echo.HandlerFunc {
    return func(c echo.Context) error {
        key := l.key(c)
        res, err := takeToken.Run(c.Request().Context(), l.rdb, []string{key},
            time.Now().UnixMilli(),
            l.bucket.Burst,
            l.bucket.Every.Milliseconds(),
            l.bucket.TTL().Milliseconds(),
        ).Int64Slice()
        if err != nil || len(res) != 3 {
            // Redis trouble never blocks a clock-in.
            c.Logger().Warnf("ratelimit: %s: %v", key, err)
            return next(c)
        }

        h := c.Response().Header()
        h.Set("X-RateLimit-Limit", strconv.Itoa(l.bucket.Burst))
        h.Set("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))
        if res[0] == 1 {
            return next(c)
        }
        secs := retryAfter(time.Duration(res[2]) * time.Millisecond)
        h.Set("Retry-After", strconv.Itoa(secs))
        return c.JSON(http.StatusTooManyRequests, echo.Map{
            "error":       "too_many_requests",
            "message":     "too many attempts, try again shortly",
            "retry_after": secs,
        })
    }
}

// retryAfter rounds wait up to whole seconds, at least one.
func retryAfter(wait time.Duration) int {
    secs := int((wait + time.Second - 1) / time.Second)
    if secs < 1 {
        return 1
    }
    return secs
}

// ClockRateLimit limits the clock and registration writes of each device
// per route.  Requests carrying no token outside the body share a bucket
// per client IP.  It is a no-op when disabled or when Redis is absent.
func ClockRateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    return limiter{rdb: rdb, bucket: cfg.Clock, key: func(c echo.Context) string {
        return clockKey(cfg.Prefix, c)
    }}.handle
}

// LoginRateLimit limits admin login attempts per client IP.
func LoginRateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    return limiter{rdb: rdb, bucket: cfg.Login, key: func(c echo.Context) string {
        return loginKey(cfg.Prefix, c)
    }}.handle
}

func clockKey(prefix string, c echo.Context) string {
    who := "ip:" + clientIP(c)
    if tok := DeviceToken(c); tok != "" {
        who = "dev:" + tok
    }
    return prefix + ":clock:" + who + ":" + c.Path()
}

func loginKey(prefix string, c echo.Context) string {
    return prefix + ":login:" + clientIP(c)
}

func clientIP(c echo.Context) string {
    if ip := c.RealIP(); ip != "" {
        return ip
    }
    return "unknown"
}
