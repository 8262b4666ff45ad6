package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnlimited(t *testing.T) {
	ctx := context.Background()

	for _, th := range []*Throttle{nil, New(Config{})} {
		require.NoError(t, th.Acquire(ctx))
		th.Release()
		require.NoError(t, th.WaitBytes(ctx, 1<<30))
	}
}

func TestAcquireBlocksAtLimit(t *testing.T) {
	th := New(Config{MaxTransfers: 1})

	require.NoError(t, th.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := th.Acquire(ctx)
	require.Error(t, err)

	th.Release()
	require.NoError(t, th.Acquire(context.Background()))
	th.Release()
}

func TestWaitBytesGenerousBudget(t *testing.T) {
	th := New(Config{BytesPerSec: 1 << 30})

	start := time.Now()
	require.NoError(t, th.WaitBytes(context.Background(), 64<<10))
	assert.Less(t, time.Since(start), time.Second)
}

func TestWaitBytesChunksOverBurst(t *testing.T) {
	th := New(Config{BytesPerSec: 1 << 30})

	// Larger than the bucket: must be drawn in chunks, not rejected.
	require.NoError(t, th.WaitBytes(context.Background(), (1<<30)+512))
}

func TestWaitBytesCanceled(t *testing.T) {
	th := New(Config{BytesPerSec: 8})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := th.WaitBytes(ctx, 1<<20)
	require.Error(t, err)
}

func TestWriterAt(t *testing.T) {
	th := New(Config{BytesPerSec: 1 << 30})

	var sink sinkWriterAt
	w := th.WriterAt(context.Background(), &sink)

	n, err := w.WriteAt([]byte("abc"), 7)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, int64(7), sink.lastOff)
	assert.Equal(t, 3, sink.total)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	slow := New(Config{BytesPerSec: 1}).WriterAt(ctx, &sink)
	_, err = slow.WriteAt([]byte("blocked"), 0)
	require.Error(t, err)
	assert.Equal(t, 3, sink.total)
}

type sinkWriterAt struct {
	lastOff int64
	total   int
}

func (s *sinkWriterAt) WriteAt(p []byte, off int64) (int, error) {
	s.lastOff = off
	s.total += len(p)

	return len(p), nil
}
