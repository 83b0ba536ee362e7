package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteDriver is go-sqlite3 with unicode_lower(text) registered on every connection.
// SQLite's own LOWER and LIKE only fold ASCII.
const SQLiteDriver = "sqlite3_chat"

func init() {
	sql.Register(SQLiteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("unicode_lower", strings.ToLower, true)
		},
	})
}

// OpenSQLite opens the SQLite chat database at path (":memory:" for tests).
// SQLite allows one writer; the pool is pinned to a single connection so
// in-memory databases are shared and writes never hit SQLITE_BUSY.
func OpenSQLite(ctx context.Context, path string, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open(SQLiteDriver, path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	logger.Info("SQLite database opened", zap.String("path", path))
	return db, nil
}
