package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Store wraps access to the relational database and exposes per-entity helpers.
// Queries are written with '?' placeholders and rebound for the active driver.
type Store struct {
	db          *sql.DB
	driver      string
	placeholder sq.PlaceholderFormat
	logger      *slog.Logger
}

// Open connects to the database for the given driver and runs migrations.
// For sqlite3 the dsn is a file path; for postgres it is a connection URL.
func Open(ctx context.Context, driver, dsn string, logger *slog.Logger) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty database dsn")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var (
		conn        *sql.DB
		placeholder sq.PlaceholderFormat
		err         error
	)
	switch driver {
	case DriverSQLite:
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
		conn, err = sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=ON", dsn))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		conn.SetMaxOpenConns(1)
		conn.SetConnMaxLifetime(0)
		placeholder = sq.Question
	case DriverPostgres:
		conn, err = sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		conn.SetMaxOpenConns(10)
		conn.SetMaxIdleConns(5)
		conn.SetConnMaxLifetime(30 * time.Minute)
		placeholder = sq.Dollar
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	s := &Store{db: conn, driver: driver, placeholder: placeholder, logger: logger}
	if err := s.migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}

	logger.Info("database ready", slog.String("driver", driver))
	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range migrations[s.driver] {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// rebind converts '?' placeholders to the driver's format.
// The Question and Dollar formats never return an error.
func (s *Store) rebind(query string) string {
	out, err := s.placeholder.ReplacePlaceholders(query)
	if err != nil {
		return query
	}
	return out
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

// insert runs an INSERT ... RETURNING id statement.
func (s *Store) insert(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := s.queryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// affected reports whether a write touched at least one row.
func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func isUniqueViolation(err error) bool {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nullString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

type scanner interface {
	Scan(dest ...any) error
}
