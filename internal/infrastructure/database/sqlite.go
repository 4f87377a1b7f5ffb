package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteDB is the embedded backend used in development and tests.
type SQLiteDB struct {
	DB   *sql.DB
	Path string
}

func NewSQLiteDB(path string) *SQLiteDB {
	return &SQLiteDB{Path: path}
}

// Connect opens the database file (":memory:" works too) and applies the
// schema. SQLite serializes writers, so a single connection is used; this
// also keeps an in-memory database alive for the life of the pool.
func (db *SQLiteDB) Connect(ctx context.Context) error {
	log.Info().Str("path", db.Path).Msg("[DATABASE] opening SQLite")

	conn, err := sql.Open("sqlite", db.Path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	if _, err := conn.ExecContext(ctx, sqliteSchema); err != nil {
		conn.Close()
		return fmt.Errorf("apply schema: %w", err)
	}

	db.DB = conn
	return nil
}

func (db *SQLiteDB) HealthCheck(ctx context.Context) error {
	if db.DB == nil {
		return fmt.Errorf("sqlite is not initialized")
	}
	healthCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return db.DB.PingContext(healthCtx)
}

func (db *SQLiteDB) Close() error {
	if db.DB == nil {
		return nil
	}
	err := db.DB.Close()
	db.DB = nil
	return err
}
