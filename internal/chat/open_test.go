package chat

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/chaines-io/chat-hub/config"
)

func TestOpen_SQLiteFilePersists(t *testing.T) {
	ctx := context.Background()
	cfg := config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "app.db")}

	b, err := Open(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	gw := NewGateway(b.Store, DefaultLimits, zaptest.NewLogger(t))
	_, err = gw.PostMessage(ctx, PostInput{User: "ann", Text: "kept"})
	require.NoError(t, err)
	b.Close()

	b, err = Open(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer b.Close()
	list, err := NewGateway(b.Store, DefaultLimits, zaptest.NewLogger(t)).History(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "kept", list[0].Text)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "mongo"}, zaptest.NewLogger(t))
	require.Error(t, err)
}
