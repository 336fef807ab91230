package main

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/hunt/internal/config"
	"github.com/stwalsh4118/hunt/internal/database"
	"github.com/stwalsh4118/hunt/internal/logger"
	"github.com/stwalsh4118/hunt/internal/repository"
)

// backend is the accident store selected by DB_DRIVER.
type backend struct {
	repo   repository.AccidentRepository
	pinger database.Pinger
	close  func()
}

func openBackend(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*backend, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := database.NewPostgresPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Info("Database connection established", map[string]interface{}{
			"driver":   cfg.Driver,
			"host":     cfg.Host,
			"port":     cfg.Port,
			"database": cfg.Name,
			"pool_min": cfg.PoolMin,
			"pool_max": cfg.PoolMax,
		})
		return &backend{
			repo:   repository.NewPostgresAccidentRepository(db),
			pinger: db,
			close:  db.Close,
		}, nil

	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info("Database opened", map[string]interface{}{
			"driver": cfg.Driver,
			"path":   cfg.SQLitePath,
		})
		return &backend{
			repo:   repository.NewSQLiteAccidentRepository(db),
			pinger: db,
			close: func() {
				if err := db.Close(); err != nil {
					log.Warn("Failed to close database", map[string]interface{}{
						"path":  cfg.SQLitePath,
						"error": err.Error(),
					})
				}
			},
		}, nil

	case config.DriverMemory:
		repo := repository.NewMemoryAccidentRepository()
		log.Warn("Using in-memory accident store; data is lost on exit", nil)
		return &backend{
			repo:   repo,
			pinger: repo,
			close:  func() {},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
