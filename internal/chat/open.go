package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/chaines-io/chat-hub/config"
	"github.com/chaines-io/chat-hub/pkg/database"
)

// Backend is an opened chat store plus whatever must be closed with it. Pool is set
// only for the postgres driver.
type Backend struct {
	Store Store
	Pool  *pgxpool.Pool
	close func()
}

// Close releases the underlying database.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open connects and migrates the store selected by cfg.Driver: sqlite, postgres or memory.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Backend, error) {
	switch {
	case cfg.Postgres():
		pool, err := database.NewPostgresPool(ctx, cfg.DSN(), logger)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return &Backend{Store: NewPgStore(pool), Pool: pool, close: pool.Close}, nil
	case strings.EqualFold(cfg.Driver, "sqlite"), strings.EqualFold(cfg.Driver, "sqlite3"):
		db, err := database.OpenSQLite(ctx, cfg.Path, logger)
		if err != nil {
			return nil, err
		}
		if err := database.MigrateSQLite(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return &Backend{Store: NewSQLiteStore(db), close: func() { _ = db.Close() }}, nil
	case strings.EqualFold(cfg.Driver, "memory"):
		logger.Warn("chat history is kept in memory and lost on restart")
		return &Backend{Store: NewMemoryStore()}, nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.Driver)
	}
}
