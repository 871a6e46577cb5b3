// Package sqlstore implements store.Store on SQLite or PostgreSQL through sqlx.
package sqlstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/listenupapp/readlog/internal/store"

	_ "modernc.org/sqlite"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

//go:embed schema_postgres.sql
var postgresSchema string

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// sqlitePragmas are set on every pooled connection through the DSN.
var sqlitePragmas = []string{
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

// Config selects the database.
type Config struct {
	Driver string
	DSN    string
}

// Store is the sqlx-backed store. Its embedded queries run directly on the
// pool; WithTx hands out queries bound to a transaction.
type Store struct {
	*queries
	db     *sqlx.DB
	logger *slog.Logger
	tracer trace.Tracer
}

var _ store.Store = (*Store)(nil)

// Open connects and applies the schema. The schema is idempotent.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var (
		dsn    = cfg.DSN
		schema string
	)
	switch cfg.Driver {
	case DriverSQLite:
		dsn = sqliteDSN(cfg.DSN)
		schema = sqliteSchema
	case DriverPostgres:
		schema = postgresSchema
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	if cfg.Driver == DriverSQLite {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
	}
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	logger.Info("database opened", "driver", cfg.Driver)
	return New(db, logger), nil
}

// New wraps an open database without touching the schema.
func New(db *sqlx.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		queries: &queries{ext: db},
		db:      db,
		logger:  logger,
		tracer:  otel.Tracer("readlog/sqlstore"),
	}
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back when fn fails.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, q store.Querier) error) error {
	ctx, span := s.tracer.Start(ctx, "sqlstore.tx", trace.WithAttributes(
		attribute.String("db.system", s.db.DriverName()),
	))
	defer span.End()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(ctx, &queries{ext: tx}); err != nil {
		span.SetStatus(codes.Error, err.Error())
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback transaction: %w (original error: %v)", rbErr, err)
		}
		span.AddEvent("rolled back")
		return err
	}
	if err := tx.Commit(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// sqliteDSN appends the connection pragmas to a file path or URI.
func sqliteDSN(dsn string) string {
	var b strings.Builder
	b.WriteString(dsn)
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	for _, p := range sqlitePragmas {
		b.WriteString(sep + "_pragma=" + p)
		sep = "&"
	}
	return b.String()
}

// isUniqueViolation recognises unique-constraint failures from both drivers.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
