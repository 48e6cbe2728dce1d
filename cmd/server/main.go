package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/timeclock/internal/config"
	"github.com/iliyamo/timeclock/internal/database"
	"github.com/iliyamo/timeclock/internal/handler"
	"github.com/iliyamo/timeclock/internal/lock"
	"github.com/iliyamo/timeclock/internal/middleware"
	"github.com/iliyamo/timeclock/internal/photo"
	"github.com/iliyamo/timeclock/internal/queue"
	"github.com/iliyamo/timeclock/internal/repository"
	"github.com/iliyamo/timeclock/internal/repository/memory"
	"github.com/iliyamo/timeclock/internal/router"
	"github.com/iliyamo/timeclock/internal/service"
)

// storage is what the services need from a storage driver.
type storage interface {
	service.WorksiteStore
	service.ClockStore
	service.EmployeeStore
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: .env not loaded: %v", err)
	}
	cfg := config.Load() // Load environment config

	store, closeStore := openStore(cfg)
	defer closeStore()

	// Redis is optional: without it the lock is process-local and rate
	// limiting and caching are off.
	rdb := config.NewRedisClient()
	var locker service.Locker = lock.NewLocal()
	if rdb != nil {
		defer rdb.Close()
		locker = lock.NewRedis(rdb, "timeclock:lock", cfg.LockTTL)
	}

	var events service.EventPublisher
	if cfg.EventsEnabled {
		events = queue.NewPublisher(cfg.AMQPURL)
		if cfg.ConsumerEnabled {
			go queue.StartClockConsumer(cfg.AMQPURL, cfg.LogDir)
		}
	}

	clock := service.NewClockService(store, store, service.ClockOptions{
		StorageTimeout: cfg.StorageTimeout,
		RequirePhone:   cfg.RequirePhone,
		Locker:         locker,
		Events:         events,
	})
	registration := service.NewRegistrationService(store, clock.Guard(), cfg.StorageTimeout, cfg.RequirePhone)
	limits := photo.Limits{MinBytes: cfg.MinPhotoBytes, MaxBytes: cfg.MaxPhotoBytes}
	rateLimits := config.LoadRateLimitConfig()

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	e.Use(echomw.BodyLimit(cfg.BodyLimit))

	router.RegisterRoutes(e)
	router.RegisterClock(e,
		handler.NewLocationHandler(clock.Resolver()),
		handler.NewEmployeeHandler(registration),
		handler.NewClockHandler(clock, limits),
		middleware.ClockRateLimit(rateLimits, rdb),
	)
	router.RegisterAdmin(e,
		handler.NewAdminHandler(cfg, clock),
		handler.NewLinkHandler(cfg),
		cfg.JWTSecret,
		middleware.LoginRateLimit(rateLimits, rdb),
		middleware.AdminCache(config.LoadCacheConfig(), rdb),
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, storage=%s)", addr, cfg.Env, cfg.StorageDriver)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Printf("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// openStore opens the configured storage driver and returns a close func.
func openStore(cfg config.Config) (storage, func()) {
	if cfg.StorageDriver == config.DriverMemory {
		if cfg.WorksitesFile == "" {
			log.Printf("storage: memory driver without WORKSITES_FILE; every location will be rejected")
			return memory.NewStore(), func() {}
		}
		s, err := memory.LoadWorksitesFile(cfg.WorksitesFile)
		if err != nil {
			log.Fatalf("storage: %v", err)
		}
		return s, func() {}
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if cfg.DBAutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := database.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("db migrate: %v", err)
		}
		log.Printf("db: schema ensured")
	}
	return repository.NewStore(db), func() { db.Close() }
}
