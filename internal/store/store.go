// Package store persists purchase lines to the purchases table: a CSV file, SQLite or
// Postgres. Stores append only; they never deduplicate.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/menu-pricer/internal/common"
	"github.com/joseph-ayodele/menu-pricer/internal/entity"
)

// Store is the tabular purchases store.
type Store interface {
	Append(ctx context.Context, lines []entity.PurchaseLine) error
	List(ctx context.Context, f Filter) ([]entity.PurchaseLine, error)
	Ping(ctx context.Context) error
	Close() error
}

// Filter narrows List. Zero values match everything. Dates are inclusive YYYY-MM-DD strings.
type Filter struct {
	Supplier   string
	Ingredient string
	From       string
	To         string
	Limit      uint64
}

func (f Filter) match(p entity.PurchaseLine) bool {
	if f.Supplier != "" && p.Supplier != f.Supplier {
		return false
	}
	if f.Ingredient != "" && p.Ingredient != f.Ingredient {
		return false
	}
	if f.From != "" && p.Date < f.From {
		return false
	}
	if f.To != "" && p.Date > f.To {
		return false
	}
	return true
}

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg common.StoreConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Driver {
	case "", "csv":
		return NewCSV(cfg.CSVPath, logger)
	case "sqlite":
		return OpenSQLite(ctx, cfg.SQLitePath, logger)
	case "postgres":
		return OpenPostgres(ctx, PostgresConfig{
			DSN:             cfg.DSN,
			MaxConns:        cfg.MaxConns,
			MinConns:        cfg.MinConns,
			MaxConnLifetime: cfg.MaxConnLifetime,
			MaxConnIdleTime: cfg.MaxConnIdleTime,
			DialTimeout:     cfg.DialTimeout,
			ConnectAttempts: cfg.ConnectAttempts,
		}, logger)
	default:
		return nil, common.NewAppError("STORE_ERROR", fmt.Sprintf("unknown store driver %q", cfg.Driver), common.ErrInvalidInput)
	}
}

func storeError(msg string, cause error) error {
	return common.NewAppError("STORE_ERROR", msg, fmt.Errorf("%w: %w", common.ErrStorage, cause))
}
