package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/gdpdash/internal/table"
)

// DBTX is the subset of pgx used to write a table.
// Satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error)
}

// Mode controls what happens to an existing target table.
type Mode string

const (
	// ModeAppend creates the table if needed and adds rows to it.
	ModeAppend Mode = "append"
	// ModeReplace drops and recreates the table before loading.
	ModeReplace Mode = "replace"
)

// ParseMode maps "" to append.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "append":
		return ModeAppend, nil
	case "replace":
		return ModeReplace, nil
	}
	return "", fmt.Errorf("unknown export mode %q (want append or replace)", s)
}

// PoolOptions tunes the connection pool opened by OpenSink.
type PoolOptions struct {
	MaxConns int
	MinConns int
}

// PostgresSink loads tables into PostgreSQL with COPY.
type PostgresSink struct {
	pool   *pgxpool.Pool
	table  pgx.Identifier
	logger *slog.Logger
}

// OpenSink connects to databaseURL and verifies the connection.
// target may be schema-qualified ("analytics.gdp").
func OpenSink(ctx context.Context, databaseURL, target string, opts PoolOptions, logger *slog.Logger) (*PostgresSink, error) {
	ident, err := ParseIdentifier(target)
	if err != nil {
		return nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if opts.MaxConns > 0 {
		poolConfig.MaxConns = int32(opts.MaxConns)
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = int32(opts.MinConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSink{pool: pool, table: ident, logger: logger}, nil
}

// Close releases the pool.
func (s *PostgresSink) Close() {
	s.pool.Close()
}

// Target returns the sanitized table name.
func (s *PostgresSink) Target() string {
	return s.table.Sanitize()
}

// Write loads every row of t in one transaction and returns the number of
// rows copied.
func (s *PostgresSink) Write(ctx context.Context, t *table.Table, mode Mode) (int64, error) {
	var n int64
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		n, err = CopyTable(ctx, tx, s.table, t, mode)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("table exported",
		"target", s.Target(),
		"rows", n,
		"mode", string(mode),
	)
	return n, nil
}

// CopyTable prepares the target table on db and copies t into it.
func CopyTable(ctx context.Context, db DBTX, ident pgx.Identifier, t *table.Table, mode Mode) (int64, error) {
	if t == nil {
		return 0, fmt.Errorf("export: nil table")
	}
	if t.NumCols() == 0 {
		return 0, fmt.Errorf("export: table has no columns")
	}

	if mode == ModeReplace {
		if _, err := db.Exec(ctx, "DROP TABLE IF EXISTS "+ident.Sanitize()); err != nil {
			return 0, fmt.Errorf("drop %s: %w", ident.Sanitize(), err)
		}
	}
	if _, err := db.Exec(ctx, CreateTableSQL(ident, t)); err != nil {
		return 0, fmt.Errorf("create %s: %w", ident.Sanitize(), err)
	}

	cols := t.Columns()
	src := pgx.CopyFromSlice(t.NumRows(), func(i int) ([]any, error) {
		row := make([]any, len(cols))
		for j, c := range cols {
			row[j] = c.Cell(i)
		}
		return row, nil
	})

	n, err := db.CopyFrom(ctx, ident, t.Names(), src)
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", ident.Sanitize(), err)
	}
	return n, nil
}

// CreateTableSQL returns an idempotent CREATE TABLE statement for t.
func CreateTableSQL(ident pgx.Identifier, t *table.Table) string {
	defs := make([]string, t.NumCols())
	for j, c := range t.Columns() {
		defs[j] = pgx.Identifier{c.Name()}.Sanitize() + " " + PostgresType(c.Type())
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", ident.Sanitize(), strings.Join(defs, ", "))
}

// PostgresType maps a column type to its PostgreSQL column type.
func PostgresType(d table.DType) string {
	switch d {
	case table.Float:
		return "double precision"
	case table.Int:
		return "bigint"
	case table.Bool:
		return "boolean"
	default:
		return "text"
	}
}

// ParseIdentifier splits "schema.table" into a pgx identifier.
func ParseIdentifier(s string) (pgx.Identifier, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("invalid table name %q", s)
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("invalid table name %q", s)
		}
	}
	return pgx.Identifier(parts), nil
}
