package contextwindow

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/corey/ctxwin/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// staticLoader returns a canned snapshot.
type staticLoader ports.Snapshot

func (s staticLoader) Load() ports.Snapshot { return ports.Snapshot(s) }

// swapLoader serves whatever snapshot was set last and counts reads.
type swapLoader struct {
	mu    sync.Mutex
	snap  ports.Snapshot
	calls int
}

func (l *swapLoader) Load() ports.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return l.snap
}

func (l *swapLoader) set(snap ports.Snapshot) {
	l.mu.Lock()
	l.snap = snap
	l.mu.Unlock()
}

func (l *swapLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func missing() staticLoader {
	return staticLoader{Err: fmt.Errorf("%w: test", ports.ErrCacheMissing)}
}

func cachedAt(windows ports.ContextWindowMap, at time.Time) staticLoader {
	return staticLoader{Windows: windows, HasMarker: true, CachedAtMillis: at.UnixMilli()}
}

func TestResolver_NoCacheServesFallback(t *testing.T) {
	r := New(missing(), fixedClock)

	assert.False(t, r.CacheLoaded())
	assert.ErrorIs(t, r.LoadErr(), ports.ErrCacheMissing)
	for provider, models := range fallbackTable {
		got, ok := r.Provider(provider)
		require.True(t, ok, provider)
		assert.Equal(t, models, got)
		for model, size := range models {
			n, ok := r.ContextWindow(provider, model)
			assert.True(t, ok)
			assert.Equal(t, size, n, "%s/%s", provider, model)
		}
	}
}

func TestResolver_EmptyProviderIsAbsent(t *testing.T) {
	r := New(missing(), fixedClock)

	_, ok := r.Provider("")
	assert.False(t, ok)
	_, ok = r.ContextWindow("", "")
	assert.False(t, ok)
	assert.Nil(t, r.Get(""))
	assert.Nil(t, r.Get("", ""))
}

func TestResolver_UnknownInputsAreAbsent(t *testing.T) {
	r := New(missing(), fixedClock)

	_, ok := r.ContextWindow("unknown-provider-xyz", "anything")
	assert.False(t, ok)
	_, ok = r.ContextWindow("anthropic", "nonexistent-model")
	assert.False(t, ok)
	_, ok = r.ContextWindow("anthropic", "")
	assert.False(t, ok)
	assert.Nil(t, r.Get("unknown-provider-xyz", "anything"))
	assert.Nil(t, r.Get("anthropic", "nonexistent-model"))
}

func TestResolver_Get(t *testing.T) {
	r := New(missing(), fixedClock)

	assert.Equal(t, 128000, r.Get("openai", "gpt-4o"))
	models, ok := r.Get("openai").(ports.ProviderModelMap)
	require.True(t, ok)
	assert.Equal(t, fallbackTable["openai"], models)
	// An empty model means "no model given".
	assert.IsType(t, ports.ProviderModelMap{}, r.Get("openai", ""))
}

func TestResolver_CacheOverridesPerProvider(t *testing.T) {
	r := New(cachedAt(ports.ContextWindowMap{"anthropic": {"claude-custom-test": 999999}}, testNow), fixedClock)
	require.True(t, r.CacheLoaded())
	require.NoError(t, r.LoadErr())

	n, ok := r.ContextWindow("anthropic", "claude-custom-test")
	require.True(t, ok)
	assert.Equal(t, 999999, n)

	// Shallow merge: the cached provider replaces the fallback entry.
	_, ok = r.ContextWindow("anthropic", "claude-3-opus-20240229")
	assert.False(t, ok)

	// Other providers still come from the fallback table.
	n, ok = r.ContextWindow("openai", "gpt-4o")
	require.True(t, ok)
	assert.Equal(t, 128000, n)
	assert.False(t, r.IsCacheStale())
}

func TestResolver_CacheAddsNewProvider(t *testing.T) {
	r := New(staticLoader{Windows: ports.ContextWindowMap{"acme": {"rocket-1": 32768}}}, fixedClock)
	n, ok := r.ContextWindow("acme", "rocket-1")
	require.True(t, ok)
	assert.Equal(t, 32768, n)

	providers, _ := r.Providers()
	assert.Equal(t, len(fallbackTable)+1, providers)
}

func TestResolver_MalformedCacheEqualsFallback(t *testing.T) {
	r := New(staticLoader{Err: fmt.Errorf("%w: openai", ports.ErrCacheMalformed)}, fixedClock)
	assert.False(t, r.CacheLoaded())
	assert.ErrorIs(t, r.LoadErr(), ports.ErrCacheMalformed)
	assert.Equal(t, fallbackTable, r.cur.Load().effective)
}

func TestResolver_ErrorWinsOverData(t *testing.T) {
	r := New(staticLoader{
		Windows: ports.ContextWindowMap{"anthropic": {"claude-custom-test": 999999}},
		Err:     ports.ErrCacheMalformed,
	}, fixedClock)
	assert.False(t, r.CacheLoaded())
	_, ok := r.ContextWindow("anthropic", "claude-custom-test")
	assert.False(t, ok, "data from a failed load must not leak")
}

func TestResolver_ProviderReturnsCopy(t *testing.T) {
	r := New(missing(), fixedClock)

	models, ok := r.Provider("openai")
	require.True(t, ok)
	models["gpt-4o"] = 1
	delete(models, "o3")

	n, _ := r.ContextWindow("openai", "gpt-4o")
	assert.Equal(t, 128000, n)
	_, ok = r.ContextWindow("openai", "o3")
	assert.True(t, ok)
	assert.Equal(t, 128000, fallbackTable["openai"]["gpt-4o"])
}

func TestResolver_CacheInputIsCopied(t *testing.T) {
	windows := ports.ContextWindowMap{"acme": {"rocket-1": 32768}}
	r := New(staticLoader{Windows: windows}, fixedClock)

	windows["acme"]["rocket-1"] = 1
	n, _ := r.ContextWindow("acme", "rocket-1")
	assert.Equal(t, 32768, n)
}

func TestResolver_StalenessWithoutMarker(t *testing.T) {
	r := New(staticLoader{Windows: ports.ContextWindowMap{"anthropic": {"claude-custom-test": 999999}}}, fixedClock)
	assert.True(t, r.CacheLoaded())
	assert.True(t, r.IsCacheStale(), "valid data without a marker is still stale")
	_, ok := r.CachedAt()
	assert.False(t, ok)
}

func TestResolver_MarkerWithoutMapIsFresh(t *testing.T) {
	r := New(staticLoader{Err: ports.ErrCacheMalformed, HasMarker: true, CachedAtMillis: testNow.UnixMilli()}, fixedClock)
	assert.False(t, r.CacheLoaded())
	assert.False(t, r.IsCacheStale(), "staleness only looks at the marker")
}

func TestResolver_StalenessBoundaries(t *testing.T) {
	cases := []struct {
		name  string
		age   time.Duration
		stale bool
	}{
		{"just written", 0, false},
		{"two days", 2 * 24 * time.Hour, false},
		{"just under TTL", TTL - time.Millisecond, false},
		{"exactly TTL", TTL, false},
		{"just over TTL", TTL + time.Millisecond, true},
		{"four days", 4 * 24 * time.Hour, true},
		{"future marker", -time.Hour, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := New(cachedAt(ports.ContextWindowMap{}, testNow.Add(-tc.age)), fixedClock)
			assert.Equal(t, tc.stale, r.IsCacheStale())
			at, ok := r.CachedAt()
			require.True(t, ok)
			assert.Equal(t, testNow.Add(-tc.age).UnixMilli(), at.UnixMilli())
		})
	}
}

func TestResolver_StalenessFollowsClock(t *testing.T) {
	now := testNow
	r := New(cachedAt(ports.ContextWindowMap{}, testNow), func() time.Time { return now })
	assert.False(t, r.IsCacheStale())

	now = testNow.Add(TTL + time.Second)
	assert.True(t, r.IsCacheStale(), "staleness is recomputed on every call")
}

func TestResolver_FreshMarkerWithRealClock(t *testing.T) {
	assert.False(t, New(cachedAt(ports.ContextWindowMap{}, time.Now()), nil).IsCacheStale())
}

func TestResolver_LookupsDoNotReload(t *testing.T) {
	loader := &swapLoader{snap: ports.Snapshot(cachedAt(
		ports.ContextWindowMap{"anthropic": {"claude-custom-test": 999999}}, testNow))}
	r := New(loader, fixedClock)
	require.Equal(t, 1, loader.count())

	// The source goes away: served state must not change.
	loader.set(ports.Snapshot(missing()))

	for i := 0; i < 5; i++ {
		assert.Equal(t, 999999, r.Get("anthropic", "claude-custom-test"))
		assert.Equal(t, r.Get("openai"), r.Get("openai"))
		assert.False(t, r.IsCacheStale())
	}
	assert.Equal(t, 1, loader.count())
}

func TestResolver_ReloadPicksUpNewCache(t *testing.T) {
	loader := &swapLoader{snap: ports.Snapshot(missing())}
	r := New(loader, fixedClock)
	require.False(t, r.CacheLoaded())
	require.True(t, r.IsCacheStale())

	loader.set(ports.Snapshot(cachedAt(ports.ContextWindowMap{"anthropic": {"claude-next": 500000}}, testNow)))

	_, ok := r.ContextWindow("anthropic", "claude-next")
	assert.False(t, ok, "no hot reload without Reload")

	r.Reload()
	n, ok := r.ContextWindow("anthropic", "claude-next")
	require.True(t, ok)
	assert.Equal(t, 500000, n)
	assert.True(t, r.CacheLoaded())
	assert.False(t, r.IsCacheStale())
	assert.Equal(t, 2, loader.count())
}

func TestResolver_ReloadFallsBackWhenCacheBreaks(t *testing.T) {
	loader := &swapLoader{snap: ports.Snapshot(cachedAt(
		ports.ContextWindowMap{"anthropic": {"claude-custom-test": 999999}}, testNow))}
	r := New(loader, fixedClock)
	require.True(t, r.CacheLoaded())

	loader.set(ports.Snapshot{Err: ports.ErrCacheMalformed})
	r.Reload()
	assert.False(t, r.CacheLoaded())
	assert.True(t, r.IsCacheStale())
	assert.Equal(t, fallbackTable, r.cur.Load().effective)
}

func TestResolver_ConcurrentReadsDuringReload(t *testing.T) {
	r := New(cachedAt(ports.ContextWindowMap{"anthropic": {"claude-custom-test": 999999}}, testNow), fixedClock)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				assert.Equal(t, 999999, r.Get("anthropic", "claude-custom-test"))
				assert.Equal(t, 128000, r.Get("openai", "gpt-4o"))
			}
		}()
	}
	for i := 0; i < 50; i++ {
		r.Reload()
	}
	wg.Wait()
}

func TestResolver_NilLoader(t *testing.T) {
	r := New(nil, fixedClock)
	assert.False(t, r.CacheLoaded())
	assert.True(t, r.IsCacheStale())
	assert.Equal(t, 200000, r.Get("anthropic", "claude-sonnet-4-5"))
}

func TestResolver_SnapshotWithoutErrOrDataCountsAsMissing(t *testing.T) {
	r := New(staticLoader{}, fixedClock)
	assert.False(t, r.CacheLoaded())
	assert.ErrorIs(t, r.LoadErr(), ports.ErrCacheMissing)
}
