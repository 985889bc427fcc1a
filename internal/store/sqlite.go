package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/menu-pricer/internal/entity"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS purchases (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		date             TEXT NOT NULL,
		supplier         TEXT NOT NULL,
		ingredient       TEXT NOT NULL,
		qty              REAL NOT NULL,
		unit             TEXT NOT NULL,
		total_cost_gross REAL NOT NULL,
		iva_rate         REAL NOT NULL,
		invoice_no       TEXT NOT NULL DEFAULT '',
		notes            TEXT NOT NULL DEFAULT '',
		created_at       TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_purchases_lookup ON purchases (date, supplier, ingredient, invoice_no)`,
}

// SQLite stores purchase lines in a local database file.
type SQLite struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLite, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, storeError("create database directory", err)
	}

	// modernc.org/sqlite registers the "sqlite" driver name
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, storeError("open sqlite", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db, path: path, logger: logger}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("sqlite store initialized", "path", path)
	return s, nil
}

func (s *SQLite) migrate(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range append(pragmas, sqliteSchema...) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return storeError(fmt.Sprintf("migrate %.40q", stmt), err)
		}
	}
	return nil
}

func (s *SQLite) Append(ctx context.Context, lines []entity.PurchaseLine) error {
	if len(lines) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeError("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, chunk := range chunks(lines, insertChunk) {
		query, args, err := sqliteDialect.insert(chunk)
		if err != nil {
			return storeError("build insert", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return storeError("insert purchases", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return storeError("commit", err)
	}
	s.logger.Debug("store.sqlite.appended", "count", len(lines))
	return nil
}

func (s *SQLite) List(ctx context.Context, f Filter) ([]entity.PurchaseLine, error) {
	query, args, err := sqliteDialect.list(f)
	if err != nil {
		return nil, storeError("build select", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
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

func (s *SQLite) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return storeError("ping sqlite", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	s.logger.Info("closing sqlite store", "path", s.path)
	return s.db.Close()
}
