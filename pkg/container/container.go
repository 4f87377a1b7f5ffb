package container

import (
	"context"
	"fmt"
	"time"

	"bookit/internal/config"
	bookHandler "bookit/internal/domains/book/handler"
	bookRepo "bookit/internal/domains/book/repository"
	bookService "bookit/internal/domains/book/service"
	urlHandler "bookit/internal/domains/url/handler"
	urlService "bookit/internal/domains/url/service"
	infraCache "bookit/internal/infrastructure/cache"
	"bookit/internal/infrastructure/database"
	"bookit/internal/shared/middleware"
	"bookit/pkg/cache"

	"github.com/rs/zerolog/log"
)

// Database is what the container needs from either backend.
type Database interface {
	HealthCheck(ctx context.Context) error
	Close() error
}

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds the dependency graph of the API server.
// Order of construction: config, infrastructure, repositories, services, handlers.
type Container struct {
	Config *config.Config

	// Infrastructure
	DB          Database
	Redis       *infraCache.RedisClient // nil when Redis is disabled or unreachable
	Cache       cache.Cache
	RateLimiter *middleware.IPRateLimiter

	// Books
	BookRepo    bookRepo.RepositoryInterface
	BookService bookService.ServiceInterface
	BookHandler *bookHandler.Handler

	// URL cleaner
	URLService urlService.ServiceInterface
	URLHandler *urlHandler.Handler
}

// NewContainer connects infrastructure and builds every layer on top of it.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	log.Info().Msg("[CONTAINER] initializing")
	c := &Container{Config: cfg}

	// ========================================
	// STEP 1: DATABASE + REPOSITORY
	// ========================================
	if err := c.initDatabase(ctx); err != nil {
		return nil, err
	}

	// ========================================
	// STEP 2: CACHE
	// ========================================
	c.initCache(ctx)

	// ========================================
	// STEP 3: SERVICES + HANDLERS
	// ========================================
	c.BookService = bookService.NewService(c.BookRepo, c.Cache, cfg.Redis.TTL)
	c.BookHandler = bookHandler.NewHandler(c.BookService)
	if err := c.BookService.PurgeCache(ctx); err != nil {
		log.Warn().Err(err).Msg("[CONTAINER] stale book cache not purged")
	}
	c.URLService = urlService.NewService(cfg.URL.RedirectHost)
	c.URLHandler = urlHandler.NewHandler(c.URLService)

	if cfg.RateLimit.Enabled {
		c.RateLimiter = middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	log.Info().Str("driver", cfg.Database.Driver).Bool("redis", c.Redis != nil).Msg("[CONTAINER] ready")
	return c, nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	switch c.Config.Database.Driver {
	case "postgres":
		dbConfig, err := config.LoadDatabaseConfig()
		if err != nil {
			return fmt.Errorf("failed to load database config: %w", err)
		}
		db := database.NewPostgresDB(dbConfig)

		connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := db.Connect(connectCtx); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		c.DB = db
		c.BookRepo = bookRepo.NewPostgresRepository(db.Pool)

	default:
		db := database.NewSQLiteDB(c.Config.Database.SQLitePath)
		if err := db.Connect(ctx); err != nil {
			return fmt.Errorf("failed to open sqlite: %w", err)
		}
		c.DB = db
		c.BookRepo = bookRepo.NewSQLiteRepository(db.DB)
	}
	return nil
}

// initCache prefers Redis and falls back to the in-process cache. A Redis
// outage at startup is not fatal.
func (c *Container) initCache(ctx context.Context) {
	if c.Config.Redis.Enabled {
		rc := infraCache.NewRedisClient(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)
		if err := rc.Connect(ctx); err != nil {
			log.Warn().Err(err).Msg("[CONTAINER] redis unavailable, using in-memory cache")
			_ = rc.Close()
		} else {
			c.Redis = rc
			c.Cache = infraCache.NewRedisCache(rc)
			return
		}
	}
	c.Cache = infraCache.NewMemoryCache()
}

// Health reports the status of each dependency; "ok" or the error text.
func (c *Container) Health(ctx context.Context) (map[string]string, bool) {
	status := map[string]string{"database": "ok"}
	healthy := true

	if err := c.DB.HealthCheck(ctx); err != nil {
		status["database"] = err.Error()
		healthy = false
	}
	if c.Redis != nil {
		status["redis"] = "ok"
		if err := c.Redis.HealthCheck(ctx); err != nil {
			status["redis"] = err.Error()
			healthy = false
		}
	}
	return status, healthy
}

// Cleanup closes connections on shutdown.
func (c *Container) Cleanup() {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Warn().Err(err).Msg("[CONTAINER] failed to close database")
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("[CONTAINER] failed to close redis")
		}
	}
	log.Info().Msg("[CONTAINER] cleanup completed")
}
