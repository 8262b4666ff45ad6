// Package gridgo exposes array-shaped scientific datasets as lazy,
// sliceable variables backed by pluggable format engines.
//
// A Store is a read-only view of one dataset file. Its variables hang
// off a process-wide, reference-counted handle cache, so hundreds of
// stores can address thousands of files through a bounded number of
// native handles, and every native call runs under the lock the format
// library needs:
//
//   - Handle cache: files reopen transparently after cache eviction
//   - Lazy arrays: selections compose without touching the file
//   - Composite locks: engines sharing C libraries share their locks
//   - Remote sources: s3:// and minio:// references spool to disk first
//
// # Quick Start
//
// Open a NetCDF file and read a slab:
//
//	import _ "github.com/hupe1980/gridgo/engine/netcdf"
//
//	store, err := gridgo.Open("era5/t2m.nc")
//	if err != nil {
//		panic(err)
//	}
//	defer store.Close()
//
//	temp, err := store.Variable("t2m")
//	if err != nil {
//		panic(err)
//	}
//
//	// First time step, every third longitude.
//	blk, err := temp.Read(indexing.At(0), indexing.All(), indexing.SliceStep(0, indexing.End, 3))
//
// Selections compose lazily; nothing is read until Load. Short keys
// select the whole remaining axes:
//
//	window, err := temp.Data().Select(indexing.Key{indexing.Slice(0, 24)})
//	if err != nil {
//		panic(err)
//	}
//
//	day, err := window.Select(indexing.Key{indexing.At(6)})
//	if err != nil {
//		panic(err)
//	}
//
//	blk, err = day.Load()
//
// # Remote datasets
//
// With a source.Spool, references download once and open locally:
//
//	sp, _ := source.New(cacheDir, source.WithFetcher(s3.New(client)))
//	store, err := gridgo.OpenContext(ctx, "s3://grids/era5/t2m.nc.zst",
//		gridgo.WithSource(sp))
//
// # Concurrency
//
// Stores and variables are safe for concurrent use. Reads of the same
// file never interleave at the native layer; distinct files serialize
// only when their engines share an underlying library.
package gridgo
