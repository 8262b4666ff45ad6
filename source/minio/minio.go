// Package minio provides a source.Fetcher for MinIO and other
// S3-compatible object stores.
package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/hupe1980/gridgo/source"
)

// Fetcher downloads minio://bucket/key references.
type Fetcher struct {
	client *minio.Client
}

var _ source.Fetcher = (*Fetcher)(nil)

// New creates a Fetcher on top of client.
func New(client *minio.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Scheme implements source.Fetcher.
func (f *Fetcher) Scheme() string { return "minio" }

// Fetch implements source.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, ref *url.URL, w io.WriterAt) (int64, error) {
	bucket, key, err := splitRef(ref)
	if err != nil {
		return 0, err
	}

	obj, err := f.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return 0, fmt.Errorf("minio: get %s: %w", ref, err)
	}
	defer obj.Close()

	// GetObject defers failures to the first read, so errors surface
	// from the copy.
	n, err := io.Copy(io.NewOffsetWriter(w, 0), obj)
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return n, fmt.Errorf("minio: %s: %w", ref, source.ErrNotFound)
		}

		return n, fmt.Errorf("minio: download %s: %w", ref, err)
	}

	return n, nil
}

func splitRef(ref *url.URL) (bucket, key string, err error) {
	bucket = ref.Host
	key = strings.TrimPrefix(ref.Path, "/")

	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("minio: reference %q needs minio://bucket/key form", ref)
	}

	return bucket, key, nil
}
