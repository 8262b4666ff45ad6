// Package testutil provides helpers for tests and benchmarks.
//
// This package is intended for use in tests and benchmarks only.
// It provides a deterministic random source and synthetic dataset
// fixtures for the in-memory engine.
//
// # Random Data Generation
//
//	rng := testutil.NewRNG(42)
//	data := make([]float64, 200)
//	rng.FillUniform(data)     // uniform [0, 1)
//	rng.FillGaussian(data)    // standard normal
//
// # Dataset Fixtures
//
//	ds := testutil.GridDataset(rng, 24, 100)
//	eng := memory.New()
//	eng.MustAdd("/data/grid.nc", ds)
package testutil
