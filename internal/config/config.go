package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "strings"
    "time"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
    DriverMySQL  = "mysql"
    DriverMemory = "memory"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Database variables are only required when the
// MySQL driver is selected.
type Config struct {
    Env               string        // application environment (e.g. "dev", "prod")
    Port              string        // HTTP port to listen on
    StorageDriver     string        // "mysql" or "memory"
    DBUser            string        // database username
    DBPass            string        // database password (optional)
    DBHost            string        // database host address
    DBPort            string        // database port number
    DBName            string        // database name
    DBAutoMigrate     bool          // create tables on startup
    WorksitesFile     string        // JSON boundaries for the memory driver
    StorageTimeout    time.Duration // bound on every storage call
    JWTSecret         string        // secret used to sign admin tokens and subcontractor links
    AccessTTLMin      int           // admin token time-to-live in minutes
    AdminUser         string        // admin login name
    AdminPasswordHash string        // bcrypt hash of the admin password
    LinkBaseURL       string        // prefix for issued subcontractor links
    LinkTTLDays       int           // lifetime of subcontractor links in days (0 = no expiry)
    RequirePhone      bool          // phone number is mandatory on register / clock-in
    MinPhotoBytes     int           // smallest accepted decoded photo
    MaxPhotoBytes     int           // largest accepted decoded photo
    BodyLimit         string        // echo body limit, e.g. "15M"
    CORSOrigins       []string      // allowed CORS origins
    AMQPURL           string        // RabbitMQ URL; empty uses RABBITMQ_URL / AMQP_URL
    EventsEnabled     bool          // publish clock events
    ConsumerEnabled   bool          // run the event log consumer in-process
    LogDir            string        // directory for the event log
    LockTTL           time.Duration // expiry of the per-device Redis lock
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    c := Config{
        Env:               must("APP_ENV"),
        Port:              must("APP_PORT"),
        StorageDriver:     strings.ToLower(envStr("STORAGE_DRIVER", DriverMySQL)),
        DBAutoMigrate:     envBool("DB_AUTO_MIGRATE", false),
        WorksitesFile:     os.Getenv("WORKSITES_FILE"),
        StorageTimeout:    envDur("STORAGE_TIMEOUT", 5*time.Second),
        JWTSecret:         must("JWT_SECRET"),
        AccessTTLMin:      mustInt("ACCESS_TOKEN_TTL_MIN"),
        AdminUser:         envStr("ADMIN_USERNAME", "admin"),
        AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"), // empty disables admin login
        LinkBaseURL:       envStr("LINK_BASE_URL", "/register"),
        LinkTTLDays:       envInt("LINK_TTL_DAYS", 0),
        RequirePhone:      envBool("REQUIRE_PHONE", false),
        MinPhotoBytes:     envInt("MIN_PHOTO_BYTES", 100),
        MaxPhotoBytes:     envInt("MAX_PHOTO_BYTES", 10<<20),
        BodyLimit:         envStr("BODY_LIMIT", "15M"),
        CORSOrigins:       splitList(envStr("CORS_ORIGINS", "*")),
        AMQPURL:           os.Getenv("AMQP_URL"),
        EventsEnabled:     envBool("EVENTS_ENABLED", true),
        ConsumerEnabled:   envBool("EVENT_CONSUMER_ENABLED", true),
        LogDir:            envStr("LOG_DIR", "logs"),
        LockTTL:           envDur("LOCK_TTL", 10*time.Second),
    }
    switch c.StorageDriver {
    case DriverMySQL:
        c.DBUser = must("DB_USER")
        c.DBPass = os.Getenv("DB_PASS") // empty allowed
        c.DBHost = must("DB_HOST")
        c.DBPort = must("DB_PORT")
        c.DBName = must("DB_NAME")
    case DriverMemory:
    default:
        log.Fatalf("invalid STORAGE_DRIVER: %q (want mysql or memory)", c.StorageDriver)
    }
    if c.MinPhotoBytes < 1 {
        c.MinPhotoBytes = 1
    }
    if c.MaxPhotoBytes < c.MinPhotoBytes {
        log.Fatalf("MAX_PHOTO_BYTES (%d) is below MIN_PHOTO_BYTES (%d)", c.MaxPhotoBytes, c.MinPhotoBytes)
    }
    return c
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

func splitList(s string) []string {
    var out []string
    for _, p := range strings.Split(s, ",") {
        if p = strings.TrimSpace(p); p != "" {
            out = append(out, p)
        }
    }
    return out
}

func envStr(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func envBool(key string, def bool) bool {
    switch strings.ToLower(os.Getenv(key)) {
    case "1", "true", "yes", "on":
        return true
    case "0", "false", "no", "off":
        return false
    }
    return def
}

func envInt(key string, def int) int {
    if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
        return n
    }
    return def
}

func envDur(key string, def time.Duration) time.Duration {
    if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
        return d
    }
    return def
}
