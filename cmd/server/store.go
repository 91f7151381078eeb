package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/sheetmerge/internal/config"
	"github.com/JonMunkholm/sheetmerge/internal/store"
	"github.com/JonMunkholm/sheetmerge/internal/store/miniostore"
	"github.com/JonMunkholm/sheetmerge/internal/store/pgstore"
)

// openStore builds the configured storage backend. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		return openPostgres(ctx, cfg.Database)
	case config.BackendMinio:
		st, err := miniostore.New(miniostore.Config{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			Object:    cfg.Minio.Object,
			UseSSL:    cfg.Minio.UseSSL,
			Region:    cfg.Minio.Region,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := st.EnsureBucket(ctx); err != nil {
			return nil, nil, err
		}
		slog.Info("using minio storage", "endpoint", cfg.Minio.Endpoint, "bucket", cfg.Minio.Bucket, "object", cfg.Minio.Object)
		return st, func() {}, nil
	default:
		st := store.NewFileStore(cfg.Storage.File)
		slog.Info("using file storage", "path", st.Path())
		return st, func() {}, nil
	}
}

func openPostgres(ctx context.Context, dbCfg config.DatabaseConfig) (store.Store, func(), error) {
	poolConfig, err := pgxpool.ParseConfig(dbCfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(dbCfg.MaxConns)
	poolConfig.MinConns = int32(dbCfg.MinConns)
	poolConfig.MaxConnLifetime = dbCfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = dbCfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(dbCfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"), "table", dbCfg.Table)
	}

	st := pgstore.New(pool, dbCfg.Table)
	if err := st.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return st, pool.Close, nil
}
