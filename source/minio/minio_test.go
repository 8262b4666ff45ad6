package minio

import (
	"bytes"
	"context"
	"net/url"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheme(t *testing.T) {
	assert.Equal(t, "minio", New(nil).Scheme())
}

func TestFetchBadReference(t *testing.T) {
	f := New(nil)

	for _, raw := range []string{"minio://bucket", "minio:///key-only"} {
		ref, err := url.Parse(raw)
		require.NoError(t, err)

		_, err = f.Fetch(context.Background(), ref, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "minio://bucket/key form")
	}
}

// TestFetchIntegration requires a running MinIO instance and skips
// otherwise.
func TestFetchIntegration(t *testing.T) {
	endpoint := "localhost:9000"
	bucket := "test-gridgo"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()

	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)

	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	payload := []byte("minio fetch payload")
	_, err = client.PutObject(ctx, bucket, "data.nc", bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{})
	require.NoError(t, err)

	f := New(client)

	ref, err := url.Parse("minio://" + bucket + "/data.nc")
	require.NoError(t, err)

	var w memWriterAt

	n, err := f.Fetch(ctx, ref, &w)
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)
	assert.Equal(t, payload, w.buf)
}

type memWriterAt struct {
	buf []byte
}

func (w *memWriterAt) WriteAt(p []byte, off int64) (int, error) {
	if need := int(off) + len(p); need > len(w.buf) {
		w.buf = append(w.buf, make([]byte, need-len(w.buf))...)
	}

	copy(w.buf[off:], p)

	return len(p), nil
}
