package realtime

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func sorted(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}

func TestWatchIndex_AddRemove(t *testing.T) {
	w := newWatchIndex()
	w.add("w1", "h1")
	w.add("w2", "h1")
	w.add("w1", "h2")

	require.Equal(t, 2, w.count("h1"))
	require.Equal(t, []string{"w1", "w2"}, sorted(w.watchersOf("h1")))
	require.Equal(t, []string{"h1", "h2"}, sorted(w.hostsOf("w1")))

	require.True(t, w.remove("w1", "h1"))
	require.False(t, w.remove("w1", "h1"))
	require.Equal(t, 1, w.count("h1"))
	require.Equal(t, []string{"h2"}, w.hostsOf("w1"))
}

func TestWatchIndex_DropWatcher(t *testing.T) {
	w := newWatchIndex()
	w.add("w1", "h1")
	w.add("w1", "h2")
	w.add("w2", "h2")

	require.Equal(t, []string{"h1", "h2"}, sorted(w.dropWatcher("w1")))
	require.Equal(t, 0, w.count("h1"))
	require.Equal(t, []string{"w2"}, w.watchersOf("h2"))
	require.Empty(t, w.byWatcher["w1"])
	_, ok := w.byHost["h1"]
	require.False(t, ok, "empty host sets are deleted")
}

func TestWatchIndex_DropHost(t *testing.T) {
	w := newWatchIndex()
	w.add("w1", "h1")
	w.add("w2", "h1")
	w.add("w2", "h2")

	require.Equal(t, []string{"w1", "w2"}, sorted(w.dropHost("h1")))
	require.Equal(t, 0, w.count("h1"))
	require.Nil(t, w.hostsOf("w1"))
	require.Equal(t, []string{"h2"}, w.hostsOf("w2"))
	_, ok := w.byWatcher["w1"]
	require.False(t, ok)

	require.Nil(t, w.dropHost("missing"))
}
