package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestGateway(t *testing.T, limits Limits) (*Gateway, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	gw := NewGateway(store, limits, zaptest.NewLogger(t))
	gw.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	return gw, store
}

func TestGateway_PostMessage_EchoShape(t *testing.T) {
	gw, _ := newTestGateway(t, DefaultLimits)

	echo, err := gw.PostMessage(context.Background(), PostInput{User: "ann", Text: "hello", FileName: "a.txt", FileType: "text/plain", File: "data:text/plain;base64,aGk="})
	require.NoError(t, err)
	require.Equal(t, "chat", echo.Type)
	require.Equal(t, int64(1), echo.ID)
	require.Equal(t, "hello", echo.Text)
	require.Equal(t, "hello", *echo.Message)
	require.Equal(t, int64(1_700_000_000_000), echo.TS)
	require.Equal(t, 0, echo.Likes)
	require.NotNil(t, echo.Comments)
	require.Empty(t, echo.Comments)
	require.Equal(t, "a.txt", *echo.FileName)
	require.Equal(t, "a.txt", *echo.LegacyFN)
	require.Nil(t, echo.Room)
}

func TestGateway_PostMessage_EchoKeepsEmptyMessageAlias(t *testing.T) {
	gw, _ := newTestGateway(t, DefaultLimits)

	echo, err := gw.PostMessage(context.Background(), PostInput{User: "ann", Image: "data:image/png;base64,AA=="})
	require.NoError(t, err)
	raw, err := json.Marshal(echo)
	require.NoError(t, err)
	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	require.Contains(t, fields, "message")
	require.Equal(t, "", fields["message"])
	require.Equal(t, "", fields["text"])
}

func TestGateway_PostMessage_KeepsClientTimestamp(t *testing.T) {
	gw, _ := newTestGateway(t, DefaultLimits)

	echo, err := gw.PostMessage(context.Background(), PostInput{User: "ann", Text: "x", TS: 42})
	require.NoError(t, err)
	require.Equal(t, int64(42), echo.TS)
}

func TestGateway_PostMessage_RejectsOversizedImage(t *testing.T) {
	gw, store := newTestGateway(t, Limits{MaxImageEncoded: 10, MaxFileEncoded: 10})

	_, err := gw.PostMessage(context.Background(), PostInput{User: "ann", Image: strings.Repeat("a", 11)})
	require.ErrorIs(t, err, ErrPayloadTooLarge)

	_, err = gw.PostMessage(context.Background(), PostInput{User: "ann", File: strings.Repeat("a", 11)})
	require.ErrorIs(t, err, ErrPayloadTooLarge)

	history, err := gw.History(context.Background())
	require.NoError(t, err)
	require.Empty(t, history)
	require.Empty(t, store.messages)
}

func TestGateway_PostLike_IsIdempotentPerUser(t *testing.T) {
	gw, _ := newTestGateway(t, DefaultLimits)
	ctx := context.Background()

	ev, err := gw.PostLike(ctx, 7, "x")
	require.NoError(t, err)
	require.Equal(t, 1, ev.Count)

	ev, err = gw.PostLike(ctx, 7, "x")
	require.NoError(t, err)
	require.Equal(t, 1, ev.Count)
	require.Equal(t, "like", ev.Type)
	require.Equal(t, int64(7), ev.MessageID)

	ev, err = gw.PostLike(ctx, 7, "y")
	require.NoError(t, err)
	require.Equal(t, 2, ev.Count)
}

func TestGateway_PostComment_RequiresMessageAndText(t *testing.T) {
	gw, _ := newTestGateway(t, DefaultLimits)
	ctx := context.Background()

	_, err := gw.PostComment(ctx, 0, "x", "hi")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = gw.PostComment(ctx, 5, "x", "")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = gw.PostLike(ctx, 0, "x")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestGateway_History_NestsCommentsAndLikes(t *testing.T) {
	gw, _ := newTestGateway(t, DefaultLimits)
	ctx := context.Background()

	for _, text := range []string{"first", "second", "Third"} {
		_, err := gw.PostMessage(ctx, PostInput{User: "ann", Text: text})
		require.NoError(t, err)
	}
	c1, err := gw.PostComment(ctx, 2, "bob", "c1")
	require.NoError(t, err)
	c2, err := gw.PostComment(ctx, 2, "cat", "c2")
	require.NoError(t, err)
	_, err = gw.PostComment(ctx, 99, "cat", "orphan")
	require.NoError(t, err)
	_, err = gw.PostLike(ctx, 3, "bob")
	require.NoError(t, err)

	history, err := gw.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i, m := range history {
		require.Equal(t, int64(i+1), m.ID)
	}
	require.Empty(t, history[0].Comments)
	require.Equal(t, 0, history[0].Likes)
	require.Len(t, history[1].Comments, 2)
	require.Equal(t, c1.ID, history[1].Comments[0].ID)
	require.Equal(t, c2.ID, history[1].Comments[1].ID)
	require.Equal(t, 1, history[2].Likes)
	require.Nil(t, history[1].Message, "history items do not carry the echo-only alias")
}

func TestGateway_Search_IsCaseInsensitive(t *testing.T) {
	gw, _ := newTestGateway(t, DefaultLimits)
	ctx := context.Background()

	for _, text := range []string{"Hello world", "bye", "say HELLO"} {
		_, err := gw.PostMessage(ctx, PostInput{User: "ann", Text: text})
		require.NoError(t, err)
	}

	found, err := gw.Search(ctx, "hello")
	require.NoError(t, err)
	require.Len(t, found, 2)
	require.Equal(t, int64(1), found[0].ID)
	require.Equal(t, int64(3), found[1].ID)

	all, err := gw.Search(ctx, "  ")
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestGateway_StoreFailureIsReturned(t *testing.T) {
	gw, store := newTestGateway(t, DefaultLimits)
	store.Fail = errors.New("disk full")

	_, err := gw.PostMessage(context.Background(), PostInput{User: "ann", Text: "x"})
	require.ErrorContains(t, err, "disk full")
	_, err = gw.History(context.Background())
	require.Error(t, err)
}
