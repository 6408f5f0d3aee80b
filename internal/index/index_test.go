package index

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redisRecords() []Record {
	return []Record{
		{Key: "client", Links: []Link{
			{QualifiedName: "cpp_redis::client::client()", Anchor: "classcpp__redis_1_1client.html#ae03af"},
			{QualifiedName: "cpp_redis::client::client(const std::shared_ptr< network::tcp_client_iface > &tcp_client)", Anchor: "classcpp__redis_1_1client.html#ae879c"},
			{QualifiedName: "cpp_redis::client::client(const client &)=delete", Anchor: "classcpp__redis_1_1client.html#ab938a"},
		}},
		{Key: "client_kill", Links: []Link{
			{QualifiedName: "cpp_redis::client::client_kill", Anchor: "classcpp__redis_1_1client.html#ae4090"},
		}},
		{Key: "cancel_reconnect", Links: []Link{
			{QualifiedName: "cpp_redis::client::cancel_reconnect()", Anchor: "classcpp__redis_1_1client.html#a0ad59"},
			{QualifiedName: "cpp_redis::subscriber::cancel_reconnect()", Anchor: "classcpp__redis_1_1subscriber.html#ae93de"},
		}},
		{Key: "connect", Links: []Link{
			{QualifiedName: "cpp_redis::client::connect", Anchor: "a123"},
			{QualifiedName: "cpp_redis::sentinel::connect()", Anchor: "a456"},
		}},
	}
}

func collect(seq iter.Seq2[string, Entry]) []Entry {
	var out []Entry
	for _, e := range seq {
		out = append(out, e)
	}
	return out
}

func TestLookupExactKeepsInsertionOrder(t *testing.T) {
	s, err := FromRecords(redisRecords())
	require.NoError(t, err)

	got := s.LookupExact("client")
	require.Len(t, got, 3)
	assert.Equal(t, "cpp_redis::client::client()", got[0].QualifiedName)
	assert.Contains(t, got[1].QualifiedName, "tcp_client")
	assert.Equal(t, "cpp_redis::client::client(const client &)=delete", got[2].QualifiedName)
	for _, e := range got {
		assert.Equal(t, "client", e.DisplayKey)
	}
}

func TestLookupExactMissIsEmpty(t *testing.T) {
	s, err := FromRecords(redisRecords())
	require.NoError(t, err)
	assert.Empty(t, s.LookupExact("commit"))
	assert.Empty(t, s.LookupExact(""))
}

func TestLookupExactReturnsCopy(t *testing.T) {
	s, err := FromRecords(redisRecords())
	require.NoError(t, err)
	got := s.LookupExact("connect")
	got[0].Anchor = "mutated"
	assert.Equal(t, "a123", s.LookupExact("connect")[0].Anchor)
}

func TestLookupPrefixOrdersKeysThenInsertion(t *testing.T) {
	s, err := FromRecords(redisRecords())
	require.NoError(t, err)

	var keys []string
	for k := range s.LookupPrefix("cli") {
		keys = append(keys, k)
	}
	assert.Equal(t, []string{"client", "client", "client", "client_kill"}, keys)

	got := collect(s.LookupPrefix("cli"))
	assert.Equal(t, s.LookupExact("client"), got[:3])
}

func TestLookupPrefixSoundAndComplete(t *testing.T) {
	s, err := FromRecords(redisRecords())
	require.NoError(t, err)

	for _, p := range []string{"", "c", "cl", "client", "client_", "co", "x", "connect"} {
		seen := map[string]bool{}
		n := 0
		for k, e := range s.LookupPrefix(p) {
			require.True(t, strings.HasPrefix(k, p), "key %q does not start with %q", k, p)
			require.Equal(t, k, e.DisplayKey)
			seen[k] = true
			n++
		}
		want := 0
		for _, k := range s.Keys() {
			if strings.HasPrefix(k, p) {
				assert.True(t, seen[k], "prefix %q omitted key %q", p, k)
				want += len(s.LookupExact(k))
			}
		}
		assert.Equal(t, want, n, "prefix %q", p)
	}
}

func TestLookupPrefixIsRestartableAndStoppable(t *testing.T) {
	s, err := FromRecords(redisRecords())
	require.NoError(t, err)

	seq := s.LookupPrefix("c")
	first := collect(seq)
	second := collect(seq)
	assert.Equal(t, first, second)
	assert.Len(t, first, 8)

	n := 0
	for range seq {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestLookupFoldedPrefix(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Add("Connect", "ns::A::Connect", "a1"))
	require.NoError(t, b.Add("connect_sentinel", "ns::sentinel", "a2"))
	require.NoError(t, b.Add("commit", "ns::commit", "a3"))
	s := b.Build()

	var keys []string
	for k := range s.LookupFoldedPrefix("CONN") {
		keys = append(keys, k)
	}
	assert.Equal(t, []string{"Connect", "connect_sentinel"}, keys)

	exact := collect(s.LookupPrefix("conn"))
	require.Len(t, exact, 1)
	assert.Equal(t, "connect_sentinel", exact[0].DisplayKey)
}

func TestBuildIsIdempotent(t *testing.T) {
	a, err := FromRecords(redisRecords())
	require.NoError(t, err)
	b, err := FromRecords(redisRecords())
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Digest(), b.Digest())
	assert.Equal(t, a.Records(), b.Records())
}

func TestRecordsRoundTrip(t *testing.T) {
	a, err := FromRecords(redisRecords())
	require.NoError(t, err)
	b, err := FromRecords(a.Records())
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
	assert.Equal(t, []string{"cancel_reconnect", "client", "client_kill", "connect"}, b.Keys())
}

func TestEqualDetectsOrderChange(t *testing.T) {
	recs := redisRecords()
	a, err := FromRecords(recs)
	require.NoError(t, err)

	links := recs[3].Links
	links[0], links[1] = links[1], links[0]
	b, err := FromRecords(recs)
	require.NoError(t, err)

	assert.False(t, a.Equal(b))
	assert.NotEqual(t, a.Digest(), b.Digest())
}

func TestAddRejectsDuplicate(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Add("connect", "cpp_redis::client::connect", "a123"))

	err := b.Add("connect", "cpp_redis::client::connect", "a123")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateEntry))
	var derr *DuplicateEntryError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, "connect", derr.Key)

	// Same pair under another key, or another anchor, is fine.
	require.NoError(t, b.Add("connect2", "cpp_redis::client::connect", "a123"))
	require.NoError(t, b.Add("connect", "cpp_redis::client::connect", "a124"))
	assert.Len(t, b.Build().LookupExact("connect"), 2)
}

func TestDuplicateHandlerCanSkip(t *testing.T) {
	var skipped []string
	b := NewBuilder(WithDuplicateHandler(func(e *DuplicateEntryError) error {
		skipped = append(skipped, e.Anchor)
		return nil
	}))
	recs := []Record{
		{Key: "commit", Links: []Link{{QualifiedName: "a::commit()", Anchor: "x"}, {QualifiedName: "a::commit()", Anchor: "x"}}},
		{Key: "commit", Links: []Link{{QualifiedName: "b::commit()", Anchor: "y"}}},
	}
	require.NoError(t, b.AddRecords(recs))
	assert.Equal(t, []string{"x"}, skipped)

	got := b.Build().LookupExact("commit")
	require.Len(t, got, 2)
	assert.Equal(t, "b::commit()", got[1].QualifiedName)
}

func TestAddAfterBuildFails(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Add("commit", "a::commit()", "x"))
	s := b.Build()

	assert.ErrorIs(t, b.Add("connect", "a::connect()", "y"), ErrBuilderFinalized)
	assert.ErrorIs(t, b.AddRecords(redisRecords()), ErrBuilderFinalized)
	assert.Same(t, s, b.Build())
	assert.Equal(t, 1, s.Len())
}

func TestAddMalformed(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Add("a", "q", "x"))

	err := b.Add("b", "", "y")
	var merr *MalformedEntryError
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, 1, merr.Position)
	assert.Equal(t, "qualified name", merr.Field)
	assert.ErrorIs(t, err, ErrMalformedEntry)
}

func TestAddRecordsMalformedFailsFast(t *testing.T) {
	recs := redisRecords()
	recs[2].Links[1].Anchor = ""

	b := NewBuilder()
	err := b.AddRecords(recs)
	var merr *MalformedEntryError
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, 2, merr.Position)
	assert.Equal(t, 1, merr.Link)
	assert.Equal(t, "anchor", merr.Field)
	assert.Equal(t, 0, b.Build().Len(), "nothing is inserted from a malformed batch")

	_, err = FromRecords([]Record{{Key: "k"}})
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "links", merr.Field)
	assert.Equal(t, -1, merr.Link)
}

func TestEmptyInput(t *testing.T) {
	s, err := FromRecords(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.Entries())
	assert.Empty(t, collect(s.LookupPrefix("")))
	assert.Empty(t, s.Records())
}

func TestConcurrentAddsKeepDuplicateCheck(t *testing.T) {
	b := NewBuilder()
	var dups atomic.Int32
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				err := b.Add("connect", "ns::connect", fmt.Sprintf("a%d", i))
				if errors.Is(err, ErrDuplicateEntry) {
					dups.Add(1)
				} else {
					assert.NoError(t, err)
				}
			}
		}()
	}
	wg.Wait()

	s := b.Build()
	assert.Len(t, s.LookupExact("connect"), 50)
	assert.Equal(t, int32(7*50), dups.Load())
}
