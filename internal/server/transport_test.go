package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"docsearch/internal/index"
	"docsearch/internal/meta"
	"docsearch/internal/query"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newServer(t *testing.T) (*httptest.Server, *query.Live) {
	t.Helper()
	b := index.NewBuilder()
	for _, r := range [][3]string{
		{"client", "cpp_redis::client::client()", "client.html#a1"},
		{"client", "cpp_redis::client::client(const client &)=delete", "client.html#a2"},
		{"client_kill", "cpp_redis::client::client_kill", "client.html#a3"},
		{"commit", "cpp_redis::client::commit()", "client.html#a4"},
	} {
		require.NoError(t, b.Add(r[0], r[1], r[2]))
	}
	live := query.NewLive(query.New(b.Build()))

	reg := prometheus.NewRegistry()
	svc, err := query.MetricsMiddleware(live, reg)
	require.NoError(t, err)

	ts := httptest.NewServer(MakeHandler(svc, meta.Info{Project: "cpp_redis", Version: "4.0.0"}, reg, discard))
	t.Cleanup(ts.Close)
	return ts, live
}

func get(t *testing.T, url string, v any) int {
	t.Helper()
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	if v != nil {
		assert.Equal(t, ContentType, res.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(res.Body).Decode(v))
	}
	return res.StatusCode
}

func TestSearch(t *testing.T) {
	ts, _ := newServer(t)

	cases := []struct {
		desc  string
		path  string
		code  int
		total int
	}{
		{"prefix", "/search?q=client", http.StatusOK, 3},
		{"case folded and trimmed", "/search?q=%20CLIENT_%20", http.StatusOK, 1},
		{"limit narrows", "/search?q=c&limit=2", http.StatusOK, 2},
		{"zero limit keeps cap", "/search?q=c&limit=0", http.StatusOK, 4},
		{"empty query", "/search?q=", http.StatusOK, 0},
		{"missing query", "/search", http.StatusOK, 0},
		{"no match", "/search?q=zadd", http.StatusOK, 0},
		{"bad limit", "/search?q=c&limit=many", http.StatusBadRequest, 0},
		{"negative limit", "/search?q=c&limit=-1", http.StatusBadRequest, 0},
	}
	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			var res searchRes
			code := get(t, ts.URL+tc.path, &res)
			assert.Equal(t, tc.code, code)
			assert.Equal(t, tc.total, res.Total)
			assert.Len(t, res.Hits, tc.total)
		})
	}
}

func TestSearchOrder(t *testing.T) {
	ts, _ := newServer(t)
	var res searchRes
	require.Equal(t, http.StatusOK, get(t, ts.URL+"/search?q=cl", &res))
	anchors := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		anchors = append(anchors, h.Anchor)
	}
	assert.Equal(t, []string{"client.html#a1", "client.html#a2", "client.html#a3"}, anchors)
}

func TestSearchSeesSwappedStore(t *testing.T) {
	ts, live := newServer(t)
	b := index.NewBuilder()
	require.NoError(t, b.Add("zadd", "cpp_redis::client::zadd", "client.html#a9"))
	live.Swap(query.New(b.Build()))

	var res searchRes
	get(t, ts.URL+"/search?q=z", &res)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "zadd", res.Hits[0].DisplayKey)
}

func TestHealthAndMetrics(t *testing.T) {
	ts, _ := newServer(t)

	var h healthRes
	assert.Equal(t, http.StatusOK, get(t, ts.URL+"/health", &h))
	assert.Equal(t, "pass", h.Status)
	assert.Equal(t, "cpp_redis", h.Project)
	assert.Equal(t, "4.0.0", h.Version)

	get(t, ts.URL+"/search?q=client", &searchRes{})
	res, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "docsearch_query_searches_total 1")
}

func TestRunShutsDownOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, addr, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "ok")
		}), discard)
	}()

	require.Eventually(t, func() bool {
		res, err := http.Get("http://" + addr)
		if err != nil {
			return false
		}
		defer res.Body.Close()
		b, _ := io.ReadAll(res.Body)
		return strings.TrimSpace(string(b)) == "ok"
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
