package duck

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2"
)

// DB is the warehouse handle shared by the store and the pipeline. It is
// constructed once per run by the caller and closed on every exit path.
type DB interface {
	Conn(ctx context.Context) (Connection, error)
	Close() error
}

// Connection is a single warehouse session. The entire load stage runs on one
// connection so that a single transaction can span every table.
type Connection interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	Close() error
}

type Warehouse struct {
	log *slog.Logger
	db  *sql.DB
}

// Open opens (creating if needed) a DuckDB database at path. An empty path
// opens an in-memory database.
func Open(ctx context.Context, log *slog.Logger, path string) (*Warehouse, error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single-writer batch job: one session does all the work.
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Warehouse{log: log, db: db}, nil
}

func (w *Warehouse) Conn(ctx context.Context) (Connection, error) {
	conn, err := w.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	return &warehouseConn{conn: conn}, nil
}

func (w *Warehouse) Close() error {
	return w.db.Close()
}

type warehouseConn struct {
	conn *sql.Conn
}

func (c *warehouseConn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.conn.ExecContext(ctx, query, args...)
}

func (c *warehouseConn) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.conn.QueryContext(ctx, query, args...)
}

func (c *warehouseConn) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return c.conn.QueryRowContext(ctx, query, args...)
}

func (c *warehouseConn) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return c.conn.BeginTx(ctx, opts)
}

func (c *warehouseConn) Close() error {
	return c.conn.Close()
}
