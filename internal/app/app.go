package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/auth"
	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/cache"
	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/config"
	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/email"
	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/handlers"
	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/logging"
	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/migrations"
	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/repo"
	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
)

type App struct {
	cfg    config.Config
	logger *slog.Logger
	pool   *pgxpool.Pool
	db     *sql.DB
	redis  *redis.Client
	router *gin.Engine
}

// New connects to Postgres (and Redis when configured), applies migrations,
// seeds the bootstrap admin if enabled and builds the router.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	pool, err := newPostgres(ctx, cfg.PG.DSN)
	if err != nil {
		return nil, err
	}
	a.pool = pool
	a.db = stdlib.OpenDBFromPool(pool)

	if err := migrations.Up(ctx, a.db); err != nil {
		a.Close(ctx)
		return nil, err
	}

	if cfg.Redis.Enabled() {
		rdb, err := newRedis(ctx, cfg.Redis)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		a.redis = rdb
	} else {
		logger.Info("redis not configured, read cache disabled")
	}

	userRepo := repo.NewPGUserRepo(a.db)
	if cfg.Seed.Enabled {
		if _, err := service.SeedAdmin(ctx, userRepo, cfg.Seed.AdminPassword, logger); err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("seed admin: %w", err)
		}
	}

	tokens, err := auth.NewTokenService([]byte(cfg.JWT.Key), cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.TTL.Duration())
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	sender, err := email.NewSMTPSender(email.SMTPSettings{
		Host:        cfg.SMTP.Host,
		Port:        cfg.SMTP.Port,
		Username:    cfg.SMTP.Username,
		Password:    cfg.SMTP.Password,
		FromAddress: cfg.SMTP.FromAddress,
		FromName:    cfg.SMTP.FromName,
		SSL:         cfg.SMTP.SSL,
		Timeout:     cfg.SMTP.Timeout.Duration(),
	}, logger)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	var njCache *cache.NewJoinerCache
	if a.redis != nil {
		njCache = cache.NewNewJoinerCache(a.redis, cfg.Redis.DefaultTTL.Duration())
	}
	njSvc := service.NewNewJoinerService(repo.NewPGNewJoinerRepo(a.db), njCache, sender, logger)

	a.router = newRouter(cfg, logger, Handlers{
		Tokens:     tokens,
		Auth:       handlers.NewAuthHandler(service.NewUserService(userRepo), tokens, logger),
		NewJoiners: handlers.NewNewJoinerHandler(njSvc, logger),
	})
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Close(ctx context.Context) error {
	_ = ctx
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
	return nil
}

func newPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

func newRouter(cfg config.Config, logger *slog.Logger, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.GinMiddleware(logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", logging.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Location", logging.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	Setup(r, cfg, h)
	return r
}
