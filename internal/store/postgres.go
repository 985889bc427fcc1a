package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/menu-pricer/internal/entity"
)

type PostgresConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
	ConnectAttempts  uint
}

const postgresSchema = `CREATE TABLE IF NOT EXISTS purchases (
	id               BIGSERIAL PRIMARY KEY,
	date             DATE NOT NULL,
	supplier         TEXT NOT NULL,
	ingredient       TEXT NOT NULL,
	qty              DOUBLE PRECISION NOT NULL,
	unit             TEXT NOT NULL,
	total_cost_gross NUMERIC(12,2) NOT NULL,
	iva_rate         NUMERIC(5,4) NOT NULL,
	invoice_no       TEXT NOT NULL DEFAULT '',
	notes            TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_purchases_lookup ON purchases (date, supplier, ingredient, invoice_no);`

// Postgres stores purchase lines in a shared database through a pgx pool.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres connects with retries, then applies the schema.
func OpenPostgres(ctx context.Context, cfg PostgresConfig, logger *slog.Logger) (*Postgres, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("invalid database dsn", "error", err)
		return nil, storeError("parse dsn", err)
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "menu-pricer"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%d", cfg.StatementTimeout.Milliseconds())
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 3 * time.Second
	}
	if cfg.ConnectAttempts == 0 {
		cfg.ConnectAttempts = 3
	}

	logger.Info("connecting to database", "host", pc.ConnConfig.Host, "database", pc.ConnConfig.Database)
	var pool *pgxpool.Pool
	err = retry.Do(
		func() error {
			dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
			defer cancel()
			p, err := pgxpool.NewWithConfig(dialCtx, pc)
			if err != nil {
				return err
			}
			if err := p.Ping(dialCtx); err != nil {
				p.Close()
				return err
			}
			pool = p
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(cfg.ConnectAttempts),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("database connect failed, retrying", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, storeError("connect postgres", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, storeError("migrate postgres", err)
	}
	logger.Info("successfully connected to database")
	return &Postgres{pool: pool, logger: logger}, nil
}

func (s *Postgres) Append(ctx context.Context, lines []entity.PurchaseLine) error {
	if len(lines) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return storeError("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, chunk := range chunks(lines, insertChunk) {
		query, args, err := postgresDialect.insert(chunk)
		if err != nil {
			return storeError("build insert", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return storeError("insert purchases", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return storeError("commit", err)
	}
	s.logger.Debug("store.postgres.appended", "count", len(lines))
	return nil
}

func (s *Postgres) List(ctx context.Context, f Filter) ([]entity.PurchaseLine, error) {
	query, args, err := postgresDialect.list(f)
	if err != nil {
		return nil, storeError("build select", err)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeError("query purchases", err)
	}
	defer rows.Close()

	out := make([]entity.PurchaseLine, 0)
	for rows.Next() {
		p, err := scanLine(rows)
		if err != nil {
			return nil, storeError("scan purchase", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("iterate purchases", err)
	}
	return out, nil
}

// Ping checks the pool; used by health checks.
func (s *Postgres) Ping(ctx context.Context) error {
	s.logger.Debug("pinging database")
	if err := s.pool.Ping(ctx); err != nil {
		return storeError("ping postgres", err)
	}
	return nil
}

func (s *Postgres) Close() error {
	s.logger.Info("closing database connections")
	s.pool.Close()
	return nil
}
