// Package source resolves dataset references to local files.
//
// Dataset engines need real, seekable files on disk. Local paths and
// file:// URLs resolve to themselves; anything else is downloaded once
// into a content-addressed spool directory and served from there on
// every later request.
//
// # Spooling
//
// Fetch hashes the reference to a spool file name, so a given remote
// object is downloaded exactly once per spool directory. Concurrent
// fetches of the same reference collapse onto a single download, and
// the payload lands under a temporary name that is renamed into place
// only after the transfer completed, so readers never observe a
// partial file.
//
// References ending in .zst, .gz or .lz4 are decompressed during
// spooling; the spool keeps the decompressed payload and the returned
// path carries the inner extension.
//
// # Fetchers
//
// Remote schemes plug in through the Fetcher interface. The s3 and
// minio subpackages provide fetchers for S3 and S3-compatible object
// stores:
//
//	sp, err := source.New(dir,
//		source.WithFetcher(s3.New(client)),
//		source.WithRateLimit(64<<20),
//	)
//	path, err := sp.Fetch(ctx, "s3://bucket/era5/t2m.nc.zst")
package source
