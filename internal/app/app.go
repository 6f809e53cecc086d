package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ivankudrin/messenger/internal/config"
	"github.com/ivankudrin/messenger/internal/server"
	"github.com/ivankudrin/messenger/internal/service"
	"github.com/ivankudrin/messenger/internal/storage/minio"
	"github.com/ivankudrin/messenger/internal/storage/postgres"
	"github.com/ivankudrin/messenger/internal/storage/redis"
	"github.com/ivankudrin/messenger/pkg/logger"
	minioclient "github.com/ivankudrin/messenger/pkg/minio-client"
	postgresclient "github.com/ivankudrin/messenger/pkg/postgres-client"
	redisclient "github.com/ivankudrin/messenger/pkg/redis-client"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type App struct {
	srv  *http.Server
	pool *pgxpool.Pool
	rdb  *goredis.Client
}

func Register(ctx context.Context, cfg *config.Config) (*App, error) {
	const op = "app.Register"

	log := logger.GetFromCtx(ctx)

	pool, err := postgresclient.New(ctx, postgresclient.Config{
		Host:           cfg.DB.Host,
		Port:           cfg.DB.Port,
		User:           cfg.DB.User,
		Password:       cfg.DB.Password,
		Database:       cfg.DB.Name,
		MinPools:       cfg.DB.MinPools,
		MaxPools:       cfg.DB.MaxPools,
		MigrationsPath: cfg.DB.MigrationsPath,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log.Info(ctx, "connected to postgres")

	rdb, err := redisclient.New(ctx, redisclient.Config{
		Addr:     cfg.Redis.Addr,
		User:     cfg.Redis.User,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log.Info(ctx, "connected to redis")

	mc, err := minioclient.New(ctx, minioclient.Config{
		Endpoint:   cfg.S3.Endpoint,
		User:       cfg.S3.User,
		Password:   cfg.S3.Password,
		BucketName: cfg.S3.BucketName,
		UseSSL:     cfg.S3.IsUseSsl,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log.Info(ctx, "connected to minio")

	db := postgres.New(pool)
	cache := redis.New(rdb, cfg.Redis.Expiration)
	s3 := minio.New(mc, cfg.S3.BucketName, cfg.S3.UrlExpiration)

	srv := server.New(service.New(db, cache, s3), map[string]server.Check{
		"database": pool.Ping,
		"cache": func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		},
		"migrations":   db.Migrated,
		"disk_usage":   server.DiskCheck,
		"memory_usage": server.MemoryCheck,
	})

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(logger.Middleware(ctx), gin.Recovery())
	srv.Register(r)

	return &App{
		srv: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Port),
			Handler: r,
		},
		pool: pool,
		rdb:  rdb,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	log := logger.GetFromCtx(ctx)

	go func() {
		log.Info(ctx, "server started", zap.String("addr", a.srv.Addr))

		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(ctx, "failed to run server", zap.Error(err))
		}
	}()
}

func (a *App) GracefulStop(ctx context.Context) {
	log := logger.GetFromCtx(ctx)

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "failed to stop server", zap.Error(err))
	}

	a.pool.Close()

	if err := a.rdb.Close(); err != nil {
		log.Error(ctx, "failed to close redis", zap.Error(err))
	}

	log.Info(ctx, "server stopped")
}
