// Package s3 provides a source.Fetcher for Amazon S3.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hupe1980/gridgo/source"
)

// Client is the subset of the S3 API the fetcher uses. *s3.Client
// satisfies it.
type Client interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Options tunes the parallel download.
type Options struct {
	// PartSize is the byte size of each ranged request. Default: 8MB.
	PartSize int64

	// Concurrency is the number of parts downloaded in parallel.
	// Default: 5.
	Concurrency int
}

// Fetcher downloads s3://bucket/key references using ranged parallel
// part requests.
type Fetcher struct {
	downloader *manager.Downloader
}

var _ source.Fetcher = (*Fetcher)(nil)

// New creates a Fetcher on top of client.
func New(client Client, optFns ...func(*Options)) *Fetcher {
	opts := Options{
		PartSize:    8 * 1024 * 1024,
		Concurrency: 5,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Fetcher{
		downloader: manager.NewDownloader(client, func(d *manager.Downloader) {
			d.PartSize = opts.PartSize
			d.Concurrency = opts.Concurrency
		}),
	}
}

// Scheme implements source.Fetcher.
func (f *Fetcher) Scheme() string { return "s3" }

// Fetch implements source.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, ref *url.URL, w io.WriterAt) (int64, error) {
	bucket, key, err := splitRef(ref)
	if err != nil {
		return 0, err
	}

	n, err := f.downloader.Download(ctx, w, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return n, fmt.Errorf("s3: %s: %w", ref, source.ErrNotFound)
		}

		var nf *types.NotFound
		if errors.As(err, &nf) {
			return n, fmt.Errorf("s3: %s: %w", ref, source.ErrNotFound)
		}

		return n, fmt.Errorf("s3: download %s: %w", ref, err)
	}

	return n, nil
}

func splitRef(ref *url.URL) (bucket, key string, err error) {
	bucket = ref.Host
	key = strings.TrimPrefix(ref.Path, "/")

	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3: reference %q needs s3://bucket/key form", ref)
	}

	return bucket, key, nil
}
