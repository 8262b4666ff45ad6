package fileman

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gridgo/engine"
	"github.com/hupe1980/gridgo/engine/memory"
	"github.com/hupe1980/gridgo/locks"
	"github.com/hupe1980/gridgo/meta"
)

func memEngine(t *testing.T, paths ...string) *memory.Engine {
	t.Helper()

	eng := memory.New(withTestLock())
	for _, path := range paths {
		eng.MustAdd(path, memory.Dataset{
			Dims: []meta.Dim{{Name: "x", Size: 4}},
			Vars: []memory.Var{{Name: "v", Dims: []string{"x"}, Values: []float64{1, 2, 3, 4}}},
		})
	}

	return eng
}

// withTestLock gives every test engine its own lock so tests stay
// independent of the process-wide per-name locks.
func withTestLock() memory.Option {
	return memory.WithLock(new(sync.Mutex))
}

func TestManagerSharesHandle(t *testing.T) {
	eng := memEngine(t, "a.nc")
	cache := NewCache(8)

	m1 := New(eng, "a.nc", WithCache(cache))
	m2 := New(eng, "a.nc", WithCache(cache))

	assert.Equal(t, m1.Key(), m2.Key())
	assert.Equal(t, 2, cache.Refs(m1.Key()))

	f1, err := m1.Acquire()
	require.NoError(t, err)

	f2, err := m2.Acquire()
	require.NoError(t, err)

	assert.Same(t, f1, f2)
	assert.Equal(t, 1, eng.Opens("a.nc"))

	// Closing one manager keeps the shared handle alive.
	require.NoError(t, m1.Close())
	assert.Zero(t, eng.Closes("a.nc"))
	assert.Equal(t, 1, cache.Refs(m2.Key()))

	require.NoError(t, m2.Close())
	assert.Equal(t, 1, eng.Closes("a.nc"))
	assert.Zero(t, cache.Refs(m2.Key()))
	assert.Zero(t, cache.Len())
}

func TestManagerClosedSemantics(t *testing.T) {
	eng := memEngine(t, "a.nc")

	m := New(eng, "a.nc", WithCache(NewCache(4)))
	require.NoError(t, m.Close())

	assert.ErrorIs(t, m.Close(), ErrManagerClosed)

	_, err := m.Acquire()
	assert.ErrorIs(t, err, ErrManagerClosed)
}

func TestEvictionReopensTransparently(t *testing.T) {
	eng := memEngine(t, "a.nc", "b.nc")
	cache := NewCache(1)

	ma := New(eng, "a.nc", WithCache(cache))
	mb := New(eng, "b.nc", WithCache(cache))
	defer ma.Close()
	defer mb.Close()

	_, err := ma.Acquire()
	require.NoError(t, err)

	// Opening b overflows the cache and closes a's handle.
	_, err = mb.Acquire()
	require.NoError(t, err)

	assert.Equal(t, 1, eng.Closes("a.nc"))
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, 1, cache.Refs(ma.Key()), "eviction must not drop references")

	// The next acquire reopens a invisibly.
	fa, err := ma.Acquire()
	require.NoError(t, err)
	assert.Equal(t, 2, eng.Opens("a.nc"))

	vs := fa.Variables()
	assert.Equal(t, []string{"v"}, vs)

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Evictions)
}

func TestEvictedHandleClosesOnlyOnce(t *testing.T) {
	eng := memEngine(t, "a.nc", "b.nc")
	cache := NewCache(1)

	ma := New(eng, "a.nc", WithCache(cache))
	mb := New(eng, "b.nc", WithCache(cache))
	defer mb.Close()

	_, err := ma.Acquire()
	require.NoError(t, err)

	_, err = mb.Acquire()
	require.NoError(t, err)
	assert.Equal(t, 1, eng.Closes("a.nc"))

	// The eviction already closed a's handle; releasing the last
	// reference must not close it again.
	require.NoError(t, ma.Close())
	assert.Equal(t, 1, eng.Closes("a.nc"))
}

func TestOnOpenRunsPerPhysicalOpen(t *testing.T) {
	eng := memEngine(t, "a.nc", "b.nc")
	cache := NewCache(1)

	opens := 0
	ma := New(eng, "a.nc", WithCache(cache), WithOnOpen(func(f engine.File) error {
		opens++
		return f.SetOption(engine.OptMissingValueMode, engine.MissingValueRaw)
	}))
	mb := New(eng, "b.nc", WithCache(cache))
	defer ma.Close()
	defer mb.Close()

	_, err := ma.Acquire()
	require.NoError(t, err)
	assert.Equal(t, 1, opens)

	// Repeated acquires of a cached handle do not rerun the hook.
	_, err = ma.Acquire()
	require.NoError(t, err)
	assert.Equal(t, 1, opens)

	// Evict and reopen: the hook runs again on the fresh handle.
	_, err = mb.Acquire()
	require.NoError(t, err)

	_, err = ma.Acquire()
	require.NoError(t, err)
	assert.Equal(t, 2, opens)

	assert.Equal(t, []string{
		"missing_value_mode=raw",
		"missing_value_mode=raw",
	}, eng.OptionCalls("a.nc"))
}

func TestOnOpenErrorFailsAcquire(t *testing.T) {
	eng := memEngine(t, "a.nc")

	boom := errors.New("option rejected")
	m := New(eng, "a.nc", WithCache(NewCache(4)), WithOnOpen(func(engine.File) error {
		return boom
	}))
	defer m.Close()

	_, err := m.Acquire()
	assert.ErrorIs(t, err, boom)

	// The fresh handle must not leak.
	assert.Zero(t, eng.Live())
}

func TestOpenErrorPropagatesAndRetries(t *testing.T) {
	eng := memEngine(t, "a.nc")
	cache := NewCache(4)

	m := New(eng, "a.nc", WithCache(cache))
	defer m.Close()

	boom := errors.New("transient")
	eng.FailOpens("a.nc", boom)

	_, err := m.Acquire()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, cache.Refs(m.Key()), "failed open must not drop the reference")

	eng.FailOpens("a.nc", nil)

	_, err = m.Acquire()
	require.NoError(t, err)
}

func TestDistinctOptionsDistinctHandles(t *testing.T) {
	eng := memEngine(t, "a.nc")
	cache := NewCache(8)

	m1 := New(eng, "a.nc", WithCache(cache))
	m2 := New(eng, "a.nc", WithCache(cache), WithOptions(engine.Options{
		engine.OptMissingValueMode: engine.MissingValueRaw,
	}))
	defer m1.Close()
	defer m2.Close()

	assert.NotEqual(t, m1.Key(), m2.Key())

	f1, err := m1.Acquire()
	require.NoError(t, err)

	f2, err := m2.Acquire()
	require.NoError(t, err)

	assert.NotSame(t, f1, f2)
	assert.Equal(t, 2, eng.Opens("a.nc"))
}

func TestKeyForCanonicalizesOptions(t *testing.T) {
	eng := memEngine(t)

	k1 := KeyFor(eng, "p.nc", engine.ModeRead, engine.Options{"a": "1", "b": "2"})
	k2 := KeyFor(eng, "p.nc", engine.ModeRead, engine.Options{"b": "2", "a": "1"})

	assert.Equal(t, k1, k2)
}

// slowEngine delays physical opens so concurrent acquires overlap.
type slowEngine struct {
	*memory.Engine
	delay time.Duration
}

func (s *slowEngine) Open(path string, mode engine.Mode, opts engine.Options) (engine.File, error) {
	time.Sleep(s.delay)
	return s.Engine.Open(path, mode, opts)
}

func TestConcurrentAcquiresCollapse(t *testing.T) {
	eng := &slowEngine{Engine: memEngine(t, "a.nc"), delay: 20 * time.Millisecond}
	cache := NewCache(4)

	// A no-op lock leaves the cache's own synchronization in charge.
	m := New(eng, "a.nc", WithCache(cache), WithLock(locks.Noop()))
	defer m.Close()

	var wg sync.WaitGroup
	files := make([]engine.File, 8)

	for i := range files {
		wg.Add(1)
		go func() {
			defer wg.Done()

			f, err := m.Acquire()
			assert.NoError(t, err)
			files[i] = f
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, eng.Opens("a.nc"))
	for _, f := range files[1:] {
		assert.Same(t, files[0], f)
	}
}

func TestDefaultCacheIsShared(t *testing.T) {
	assert.Same(t, Default(), Default())
}
