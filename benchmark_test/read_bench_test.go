package benchmark_test

import (
	"fmt"
	"testing"

	"github.com/hupe1980/gridgo"
	"github.com/hupe1980/gridgo/engine/memory"
	"github.com/hupe1980/gridgo/fileman"
	"github.com/hupe1980/gridgo/indexing"
	"github.com/hupe1980/gridgo/testutil"
)

// openGridStore builds one synthetic grid and opens a store over it.
func openGridStore(b *testing.B, rows, points, cacheSize int) (*gridgo.Store, *memory.Engine) {
	b.Helper()

	eng := memory.New(memory.WithName(b.Name()))
	eng.MustAdd("/bench/grid.nc", testutil.GridDataset(testutil.NewRNG(42), rows, points))

	store, err := gridgo.Open("/bench/grid.nc",
		gridgo.WithEngineInstance(eng),
		gridgo.WithCache(fileman.NewCache(cacheSize)),
	)
	if err != nil {
		b.Fatalf("open store: %v", err)
	}

	return store, eng
}

// BenchmarkRowRead measures one full row read through the whole stack:
// handle acquisition, lock, native section, block assembly.
func BenchmarkRowRead(b *testing.B) {
	for _, points := range []int{100, 1000, 10000} {
		b.Run(fmt.Sprintf("points_%d", points), func(b *testing.B) {
			store, _ := openGridStore(b, 16, points, 8)
			defer store.Close()

			temp, err := store.Variable("temp")
			if err != nil {
				b.Fatalf("variable: %v", err)
			}

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				blk, err := temp.Read(indexing.At(i%16), indexing.All())
				if err != nil {
					b.Fatalf("read: %v", err)
				}

				if blk.Len() != points {
					b.Fatalf("short read: %d", blk.Len())
				}
			}
		})
	}
}

// BenchmarkLazySelect measures selection composition, which must not
// touch the file at all.
func BenchmarkLazySelect(b *testing.B) {
	store, eng := openGridStore(b, 100, 100, 8)
	defer store.Close()

	temp, err := store.Variable("temp")
	if err != nil {
		b.Fatalf("variable: %v", err)
	}

	opensBefore := eng.Opens("/bench/grid.nc")

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		lazy := temp.Data()

		lazy, err = lazy.Select(indexing.Key{indexing.Slice(0, 50), indexing.All()})
		if err != nil {
			b.Fatalf("select: %v", err)
		}

		lazy, err = lazy.Select(indexing.Key{indexing.SliceStep(0, 50, 5), indexing.At(3)})
		if err != nil {
			b.Fatalf("select: %v", err)
		}

		if lazy.Rank() != 1 {
			b.Fatalf("unexpected rank %d", lazy.Rank())
		}
	}

	b.StopTimer()

	if eng.Opens("/bench/grid.nc") != opensBefore {
		b.Fatal("selection composition touched the file")
	}
}

// BenchmarkCacheChurn measures reads when the handle cache is smaller
// than the working set, so every access pays an eviction and a reopen.
func BenchmarkCacheChurn(b *testing.B) {
	const files = 8

	for _, cacheSize := range []int{2, files} {
		b.Run(fmt.Sprintf("cache_%d", cacheSize), func(b *testing.B) {
			eng := memory.New(memory.WithName(b.Name()))
			rng := testutil.NewRNG(42)

			cache := fileman.NewCache(cacheSize)
			stores := make([]*gridgo.Store, files)
			vars := make([]*gridgo.Variable, files)

			for i := range stores {
				path := fmt.Sprintf("/bench/grid-%d.nc", i)
				eng.MustAdd(path, testutil.GridDataset(rng, 8, 100))

				store, err := gridgo.Open(path,
					gridgo.WithEngineInstance(eng),
					gridgo.WithCache(cache),
				)
				if err != nil {
					b.Fatalf("open store: %v", err)
				}

				defer store.Close()
				stores[i] = store

				v, err := store.Variable("temp")
				if err != nil {
					b.Fatalf("variable: %v", err)
				}

				vars[i] = v
			}

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := vars[i%files].Read(indexing.At(0), indexing.All()); err != nil {
					b.Fatalf("read: %v", err)
				}
			}
		})
	}
}
