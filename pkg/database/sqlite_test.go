package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestMigrateSQLiteIsRepeatable(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, ":memory:", zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, MigrateSQLite(ctx, db))
	require.NoError(t, MigrateSQLite(ctx, db))

	for _, table := range []string{"chat_messages", "comments", "likes"} {
		var name string
		err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
		require.Equal(t, table, name)
	}
}

func TestOpenSQLite_UnicodeLower(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, ":memory:", zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var lowered string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT unicode_lower('ÉLAN Über')`).Scan(&lowered))
	require.Equal(t, "élan über", lowered)
}
