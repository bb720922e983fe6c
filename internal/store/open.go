package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/abgdnv/catalog/internal/catalog"
	"github.com/abgdnv/catalog/pkg/bootstrap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store is a catalog.DAO holding resources that must be released.
type Store interface {
	catalog.DAO
	io.Closer
}

// Options controls how Open connects to a database.
type Options struct {
	URL            string
	ConnectTimeout time.Duration
	// Migrate applies the embedded migrations before a PostgreSQL store is returned.
	Migrate bool
}

// Open returns the store matching the scheme of opts.URL:
// postgres:// and postgresql:// use pgx, sqlite://<path> uses gorm, memory:// keeps everything in memory.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (Store, error) {
	url := opts.URL
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		if opts.Migrate {
			if err := Migrate(url); err != nil {
				return nil, err
			}
			logger.Info("Database migrations applied")
		}
		pool, err := bootstrap.NewDbPool(ctx, url, opts.ConnectTimeout)
		if err != nil {
			return nil, err
		}
		logger.Info("Successfully connected to the database!", "driver", "postgres")
		return NewPgStore(pool), nil

	case strings.HasPrefix(url, "sqlite://"):
		path := strings.TrimPrefix(url, "sqlite://")
		db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
			TranslateError: true,
			Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		gs, err := NewGormStore(db)
		if err != nil {
			return nil, err
		}
		logger.Info("Successfully opened the database!", "driver", "sqlite", "path", path)
		return gs, nil

	case strings.HasPrefix(url, "memory://"):
		logger.Info("Using in-memory store")
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("unsupported database URL: %s", url)
}
