// Package engine defines the contract between dataset stores and the
// format libraries that actually read files.
//
// # Contract
//
// An Engine opens files of one format family and hands back Files exposing
// variables, dimensions and attributes. Engines declare their concurrency
// rules through Lock: native format libraries are often not reentrant, so
// callers hold the engine's lock around every native call and engines never
// need internal synchronization.
//
// Variables serve exactly two read forms: Scalar for 0-d variables and
// Section for one strided Range per axis. Richer selections are decomposed
// by the indexing package before they reach an engine.
//
// # Registry
//
// Engines register themselves by name in their package init, following the
// database/sql driver convention:
//
//	import _ "github.com/hupe1980/gridgo/engine/netcdf"
//
//	ds, err := gridgo.Open("data.nc", gridgo.WithEngine("netcdf"))
//
// Tests and embedders can skip the registry and pass an engine instance
// directly to the store.
package engine
