package config

import (
    "testing"
    "time"
)

func setBaseEnv(t *testing.T) {
    t.Helper()
    t.Setenv("APP_ENV", "test")
    t.Setenv("APP_PORT", "8080")
    t.Setenv("JWT_SECRET", "s3cret")
    t.Setenv("ACCESS_TOKEN_TTL_MIN", "30")
}

func TestLoadMemoryDriverSkipsDatabaseVars(t *testing.T) {
    setBaseEnv(t)
    t.Setenv("STORAGE_DRIVER", "Memory")
    t.Setenv("REQUIRE_PHONE", "yes")
    t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
    t.Setenv("STORAGE_TIMEOUT", "750ms")

    c := Load()
    if c.StorageDriver != DriverMemory {
        t.Fatalf("StorageDriver = %q, want %q", c.StorageDriver, DriverMemory)
    }
    if !c.RequirePhone {
        t.Errorf("RequirePhone = false, want true")
    }
    if c.StorageTimeout != 750*time.Millisecond {
        t.Errorf("StorageTimeout = %v", c.StorageTimeout)
    }
    if len(c.CORSOrigins) != 2 || c.CORSOrigins[1] != "https://b.example" {
        t.Errorf("CORSOrigins = %v", c.CORSOrigins)
    }
    if c.AccessTTLMin != 30 {
        t.Errorf("AccessTTLMin = %d", c.AccessTTLMin)
    }
}

func TestLoadDefaults(t *testing.T) {
    setBaseEnv(t)
    t.Setenv("STORAGE_DRIVER", "mysql")
    t.Setenv("DB_USER", "clock")
    t.Setenv("DB_HOST", "127.0.0.1")
    t.Setenv("DB_PORT", "3306")
    t.Setenv("DB_NAME", "timeclock")

    c := Load()
    if c.MinPhotoBytes != 100 || c.MaxPhotoBytes != 10<<20 {
        t.Errorf("photo limits = %d..%d", c.MinPhotoBytes, c.MaxPhotoBytes)
    }
    if c.BodyLimit != "15M" || c.LogDir != "logs" || c.LockTTL != 10*time.Second {
        t.Errorf("unexpected defaults: %+v", c)
    }
    if c.DBPass != "" || c.DBName != "timeclock" {
        t.Errorf("db settings = %q %q", c.DBPass, c.DBName)
    }
    if c.RequirePhone {
        t.Errorf("RequirePhone should default to false")
    }
}

func TestLoadRateLimitConfig(t *testing.T) {
    rl := LoadRateLimitConfig()
    if !rl.Enabled || rl.Prefix != "timeclock:rl" {
        t.Errorf("defaults = %+v", rl)
    }
    if rl.Clock != (Bucket{Burst: 10, Every: 6 * time.Second}) {
        t.Errorf("Clock = %+v", rl.Clock)
    }
    if rl.Login != (Bucket{Burst: 5, Every: time.Minute}) {
        t.Errorf("Login = %+v", rl.Login)
    }

    t.Setenv("RATE_LIMIT_CLOCK_BURST", "0")
    t.Setenv("RATE_LIMIT_CLOCK_EVERY", "-1s")
    t.Setenv("RATE_LIMIT_LOGIN_EVERY", "10s")
    rl = LoadRateLimitConfig()
    if rl.Clock != (Bucket{Burst: 1, Every: 6 * time.Second}) {
        t.Errorf("clamped Clock = %+v", rl.Clock)
    }
    if rl.Login.Every != 10*time.Second {
        t.Errorf("Login.Every = %v", rl.Login.Every)
    }
}

func TestBucketTTL(t *testing.T) {
    tests := []struct {
        b    Bucket
        want time.Duration
    }{
        {Bucket{Burst: 10, Every: 6 * time.Second}, time.Minute},
        {Bucket{Burst: 1, Every: 100 * time.Millisecond}, time.Second},
    }
    for _, tt := range tests {
        if got := tt.b.TTL(); got != tt.want {
            t.Errorf("%+v.TTL() = %v, want %v", tt.b, got, tt.want)
        }
    }
}

func TestLoadCacheConfig(t *testing.T) {
    c := LoadCacheConfig()
    if !c.Enabled || c.TTL != time.Minute || c.MaxBodyBytes != 1<<20 {
        t.Errorf("defaults = %+v", c)
    }
    t.Setenv("CACHE_TTL", "0s")
    if c := LoadCacheConfig(); c.Enabled {
        t.Errorf("zero TTL should disable the cache")
    }
}

func TestRedisOptions(t *testing.T) {
    t.Setenv("REDIS_ADDR", "cache:6380")
    t.Setenv("REDIS_DB", "3")
    o := redisOptions()
    if o.Addr != "cache:6380" || o.DB != 3 || o.TLSConfig != nil {
        t.Errorf("options = %+v", o)
    }

    t.Setenv("REDIS_HOST", "r1")
    t.Setenv("REDIS_PORT", "7000")
    t.Setenv("REDIS_TLS", "1")
    o = redisOptions()
    if o.Addr != "r1:7000" || o.TLSConfig == nil {
        t.Errorf("options = %+v", o)
    }
}

func TestNewRedisClientDisabled(t *testing.T) {
    t.Setenv("REDIS_ENABLED", "false")
    if c := NewRedisClient(); c != nil {
        t.Fatalf("expected nil client when disabled")
    }
}
