package source

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
)

// ErrNotFound is returned when a referenced object does not exist.
//
// Fetchers should return an error that satisfies
// errors.Is(err, ErrNotFound). The default maps to os.ErrNotExist.
var ErrNotFound = os.ErrNotExist

// Fetcher downloads one remote object into a local spool file.
//
// Fetch writes the object to w, which points at a fresh local file,
// and returns the number of bytes written. Implementations may write
// parts concurrently and out of order.
type Fetcher interface {
	// Scheme returns the URL scheme this fetcher serves, e.g. "s3".
	Scheme() string

	Fetch(ctx context.Context, ref *url.URL, w io.WriterAt) (int64, error)
}

// UnknownSchemeError is returned by Fetch for references whose scheme
// has no registered fetcher.
type UnknownSchemeError struct {
	Scheme string
}

func (e *UnknownSchemeError) Error() string {
	return fmt.Sprintf("source: no fetcher for scheme %q", e.Scheme)
}
