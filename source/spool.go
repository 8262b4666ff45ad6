package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/gridgo/internal/fs"
	"github.com/hupe1980/gridgo/internal/throttle"
)

// prefetchWorkers caps goroutine fan-out in Prefetch. Transfer
// concurrency is bounded separately by WithMaxConcurrent.
const prefetchWorkers = 16

type options struct {
	fetchers     map[string]Fetcher
	fsys         fs.FileSystem
	bytesPerSec  int64
	maxTransfers int64
	logger       *slog.Logger
}

// Option configures a Spool.
type Option func(*options)

// WithFetcher registers f for its scheme. Later registrations of the
// same scheme win.
func WithFetcher(f Fetcher) Option {
	return func(o *options) {
		o.fetchers[f.Scheme()] = f
	}
}

// WithFileSystem routes spool file operations through fsys.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys == nil {
			fsys = fs.Default
		}
		o.fsys = fsys
	}
}

// WithRateLimit caps download throughput in bytes per second across all
// transfers. Zero means unlimited.
func WithRateLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.bytesPerSec = bytesPerSec
	}
}

// WithMaxConcurrent caps the number of downloads in flight. Zero means
// unlimited.
func WithMaxConcurrent(n int64) Option {
	return func(o *options) {
		o.maxTransfers = n
	}
}

// WithLogger sets the logger for transfer events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}
		o.logger = logger
	}
}

// Spool downloads remote dataset references into a local directory and
// hands out the spooled paths. It is safe for concurrent use.
type Spool struct {
	dir      string
	fetchers map[string]Fetcher
	fsys     fs.FileSystem
	th       *throttle.Throttle
	logger   *slog.Logger
	group    singleflight.Group
}

// New creates a Spool rooted at dir, creating the directory if needed.
func New(dir string, optFns ...Option) (*Spool, error) {
	opts := options{
		fetchers: make(map[string]Fetcher),
		fsys:     fs.Default,
		logger:   slog.New(slog.DiscardHandler),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if err := opts.fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("source: create spool dir %s: %w", dir, err)
	}

	return &Spool{
		dir:      dir,
		fetchers: opts.fetchers,
		fsys:     opts.fsys,
		th: throttle.New(throttle.Config{
			BytesPerSec:  opts.bytesPerSec,
			MaxTransfers: opts.maxTransfers,
		}),
		logger: opts.logger,
	}, nil
}

// Dir returns the spool directory.
func (s *Spool) Dir() string { return s.dir }

// Fetch resolves ref to a local file path. Local paths and file:// URLs
// pass through untouched; remote references are downloaded into the
// spool on first use and served from there afterwards.
//
// A download shared by several concurrent callers runs under the first
// caller's context.
func (s *Spool) Fetch(ctx context.Context, ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Bare paths, including Windows drive letters.
		return ref, nil
	}

	if u.Scheme == "file" {
		return u.Path, nil
	}

	fetcher, ok := s.fetchers[u.Scheme]
	if !ok {
		return "", &UnknownSchemeError{Scheme: u.Scheme}
	}

	final := filepath.Join(s.dir, spoolName(ref))

	if _, err := s.fsys.Stat(final); err == nil {
		return final, nil
	}

	_, err, _ = s.group.Do(ref, func() (any, error) {
		if _, err := s.fsys.Stat(final); err == nil {
			return nil, nil
		}

		return nil, s.download(ctx, fetcher, u, ref, final)
	})
	if err != nil {
		return "", err
	}

	return final, nil
}

// Prefetch resolves refs concurrently, stopping on the first error.
func (s *Spool) Prefetch(ctx context.Context, refs ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(prefetchWorkers)

	for _, ref := range refs {
		g.Go(func() error {
			_, err := s.Fetch(ctx, ref)

			return err
		})
	}

	return g.Wait()
}

// Remove drops the spooled copy of ref, if any. The next Fetch
// downloads it again.
func (s *Spool) Remove(ref string) error {
	err := s.fsys.Remove(filepath.Join(s.dir, spoolName(ref)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return nil
}

func (s *Spool) download(ctx context.Context, fetcher Fetcher, u *url.URL, ref, final string) error {
	if err := s.th.Acquire(ctx); err != nil {
		return err
	}
	defer s.th.Release()

	start := time.Now()

	tmp := filepath.Join(s.dir, fmt.Sprintf(".tmp-%d-%s", time.Now().UnixNano(), filepath.Base(final)))

	file, err := s.fsys.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		return fmt.Errorf("source: create spool file: %w", err)
	}

	n, err := fetcher.Fetch(ctx, u, s.th.WriterAt(ctx, file))
	if err != nil {
		file.Close()
		s.fsys.Remove(tmp)

		return fmt.Errorf("source: fetch %s: %w", ref, err)
	}

	if err := s.publish(tmp, file, final, compressionExt(u.Path)); err != nil {
		return fmt.Errorf("source: spool %s: %w", ref, err)
	}

	s.logger.Debug("spooled dataset",
		slog.String("ref", ref),
		slog.Int64("bytes", n),
		slog.Duration("elapsed", time.Since(start)))

	return nil
}

// publish moves a finished download into place. Compressed payloads are
// decompressed into a second temporary file first; the rename is the
// only step that makes the dataset visible.
func (s *Spool) publish(tmp string, file fs.File, final, ext string) error {
	if ext == "" {
		if err := file.Sync(); err != nil {
			file.Close()
			s.fsys.Remove(tmp)

			return err
		}

		if err := file.Close(); err != nil {
			s.fsys.Remove(tmp)

			return err
		}

		if err := s.fsys.Rename(tmp, final); err != nil {
			s.fsys.Remove(tmp)

			return err
		}

		return nil
	}

	err := s.decompress(tmp, file, final, ext)

	file.Close()
	s.fsys.Remove(tmp)

	return err
}

func (s *Spool) decompress(tmp string, file fs.File, final, ext string) error {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	dec, err := openDecompressor(ext, file)
	if err != nil {
		return err
	}
	defer dec.Close()

	outTmp := tmp + ".out"
	out, err := s.fsys.OpenFile(outTmp, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, dec); err != nil {
		out.Close()
		s.fsys.Remove(outTmp)

		return err
	}

	if err := out.Sync(); err != nil {
		out.Close()
		s.fsys.Remove(outTmp)

		return err
	}

	if err := out.Close(); err != nil {
		s.fsys.Remove(outTmp)

		return err
	}

	if err := s.fsys.Rename(outTmp, final); err != nil {
		s.fsys.Remove(outTmp)

		return err
	}

	return nil
}

// compressionExt returns the compression suffix of p, or "" when the
// payload is stored uncompressed.
func compressionExt(p string) string {
	switch ext := path.Ext(p); ext {
	case ".zst", ".gz", ".lz4":
		return ext
	default:
		return ""
	}
}

func openDecompressor(ext string, r io.Reader) (io.ReadCloser, error) {
	switch ext {
	case ".zst":
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}

		return d.IOReadCloser(), nil
	case ".gz":
		return gzip.NewReader(r)
	case ".lz4":
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("source: no decompressor for %q", ext)
	}
}

// spoolName builds the content address for ref: a hash of the full
// reference plus the payload's data extension, with any compression
// suffix stripped.
func spoolName(ref string) string {
	sum := sha256.Sum256([]byte(ref))

	p := ref
	if u, err := url.Parse(ref); err == nil && u.Path != "" {
		p = u.Path
	}

	ext := path.Ext(p)
	if ext != "" && compressionExt(p) == ext {
		ext = path.Ext(strings.TrimSuffix(p, ext))
	}

	return hex.EncodeToString(sum[:]) + ext
}
