package query

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"docsearch/internal/index"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *index.Store {
	t.Helper()
	b := index.NewBuilder()
	add := func(k, q, a string) { require.NoError(t, b.Add(k, q, a)) }
	add("client", "cpp_redis::client::client()", "c1")
	add("client", "cpp_redis::client::client(const client &)=delete", "c2")
	add("client_kill", "cpp_redis::client::client_kill", "c3")
	add("Commit", "cpp_redis::client::commit()", "c4")
	add("connect", "cpp_redis::client::connect", "c5")
	return b.Build()
}

func TestSearchNormalizesText(t *testing.T) {
	svc := New(testStore(t))

	hits := svc.Search("  CLI  ")
	require.Len(t, hits, 3)
	assert.Equal(t, "c1", hits[0].Anchor)
	assert.Equal(t, "c2", hits[1].Anchor)
	assert.Equal(t, "client_kill", hits[2].DisplayKey)

	hits = svc.Search("comm")
	require.Len(t, hits, 1)
	assert.Equal(t, "Commit", hits[0].DisplayKey)
}

func TestSearchEmptyText(t *testing.T) {
	svc := New(testStore(t))
	assert.Empty(t, svc.Search(""))
	assert.Empty(t, svc.Search(" \t\n"))
	assert.Empty(t, svc.Search("zzz"))
}

func TestSearchOnEmptyStore(t *testing.T) {
	s, err := index.FromRecords(nil)
	require.NoError(t, err)
	for _, q := range []string{"a", "client", "connect"} {
		assert.Empty(t, New(s).Search(q))
	}
	assert.Empty(t, New(nil).Search("c"))
}

func TestSearchLimit(t *testing.T) {
	b := index.NewBuilder()
	for i := 0; i < 120; i++ {
		require.NoError(t, b.Add(fmt.Sprintf("key%03d", i), "ns::f", "a"))
	}
	s := b.Build()

	assert.Len(t, New(s).Search("key"), DefaultLimit)
	assert.Len(t, New(s, WithLimit(0)).Search("key"), DefaultLimit)
	assert.Len(t, New(s, WithLimit(7)).Search("key"), 7)
	assert.Len(t, New(s, WithLimit(500)).Search("key"), 120)

	hits := New(s, WithLimit(3)).Search("key")
	assert.Equal(t, "key000", hits[0].DisplayKey)
	assert.Equal(t, "key002", hits[2].DisplayKey)
}

func TestLiveSwap(t *testing.T) {
	empty, err := index.FromRecords(nil)
	require.NoError(t, err)

	live := NewLive(New(empty))
	assert.Empty(t, live.Search("cli"))

	live.Swap(New(testStore(t)))
	assert.Len(t, live.Search("cli"), 3)
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	svc := LoggingMiddleware(New(testStore(t)), logger)
	assert.Len(t, svc.Search("client"), 3)
	assert.Contains(t, buf.String(), "Search completed")
	assert.Contains(t, buf.String(), "hits=3")
}

func TestMetricsMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc, err := MetricsMiddleware(New(testStore(t)), reg)
	require.NoError(t, err)

	svc.Search("client")
	svc.Search("nothing")

	mm := svc.(*metricsMiddleware)
	assert.Equal(t, 2.0, testutil.ToFloat64(mm.counter))
	assert.Equal(t, 1.0, testutil.ToFloat64(mm.empty))

	_, err = MetricsMiddleware(New(testStore(t)), reg)
	assert.Error(t, err, "collectors register once per registry")
}
