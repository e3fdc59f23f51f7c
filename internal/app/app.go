package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chatinsight/core/internal/config"
	"github.com/chatinsight/core/internal/middleware"
	pkgredis "github.com/chatinsight/core/internal/pkg/redis"
	"github.com/chatinsight/core/internal/store"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	store  store.Store
	redis  *pkgredis.Client
	logger *zap.Logger
}

// New initializes the application: store → Redis → routes.
func New(ctx context.Context, logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	var limiter middleware.Limiter = middleware.NewMemoryLimiter(cfg.RateLimit.RequestsPerMinute)
	var rc *pkgredis.Client
	if cfg.RedisURL != "" {
		rc, err = pkgredis.Connect(cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, rate limiting per process", zap.Error(err))
		} else {
			limiter = middleware.NewRedisLimiter(rc, cfg.RateLimit.RequestsPerMinute)
		}
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		_ = st.Close(ctx)
		return nil, fmt.Errorf("trusted_proxies: %w", err)
	}
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger.Named("http")))
	router.Use(cors.New(corsConfig(cfg)))
	if cfg.RateLimit.RequestsPerMinute > 0 {
		router.Use(middleware.RateLimit(limiter, logger.Named("ratelimit")))
	}

	app := &App{cfg: cfg, router: router, store: st, redis: rc, logger: logger}
	if err := app.registerRoutes(); err != nil {
		_ = st.Close(ctx)
		return nil, err
	}
	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Store returns the store the application was opened with.
func (a *App) Store() store.Store { return a.store }

// Shutdown closes the store and the Redis connection.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	errs = append(errs, a.store.Close(ctx))
	return errors.Join(errs...)
}

func corsConfig(cfg *config.AppConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-API-Key", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After", "X-Request-ID"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) > 0 && !containsWildcard(cfg.AllowedOrigins) {
		patterns := cfg.AllowedOrigins
		c.AllowOriginFunc = func(origin string) bool {
			host := extractOriginHost(origin)
			for _, pattern := range patterns {
				if matchOriginPattern(pattern, host) {
					return true
				}
			}
			return false
		}
	} else {
		c.AllowOriginFunc = func(string) bool { return true }
	}
	return c
}
