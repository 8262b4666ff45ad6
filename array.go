package gridgo

import (
	"time"

	"github.com/hupe1980/gridgo/dtype"
	"github.com/hupe1980/gridgo/indexing"
)

// engineArray adapts one variable of a store to indexing.Array. Shape
// and dtype are fixed at construction; every read acquires the handle
// from the cache again and holds the store lock from acquisition to
// the end of the native call.
type engineArray struct {
	store *Store
	name  string
	shape []int
	dt    dtype.DType
}

func (a *engineArray) Shape() []int { return append([]int(nil), a.shape...) }

func (a *engineArray) DType() dtype.DType { return a.dt }

func (a *engineArray) Index(key indexing.Key) (*indexing.Block, error) {
	return indexing.Adapt(key, a.shape, a.section)
}

func (a *engineArray) section(sec indexing.Section) (*indexing.Block, error) {
	start := time.Now()

	blk, err := a.read(sec)

	var bytes int
	if err == nil {
		bytes = blk.Len() * a.dt.Size()
	}

	a.store.metrics.RecordRead(a.name, bytes, time.Since(start), err)

	return blk, err
}

func (a *engineArray) read(sec indexing.Section) (*indexing.Block, error) {
	s := a.store

	if s.closed.Load() {
		return nil, ErrStoreClosed
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	f, err := s.manager.AcquireLocked()
	if err != nil {
		return nil, translateError(err)
	}

	v, err := f.Variable(a.name)
	if err != nil {
		return nil, err
	}

	if len(a.shape) == 0 && len(sec) == 0 {
		val, err := v.Scalar()
		if err != nil {
			return nil, err
		}

		return indexing.NewScalar(val)
	}

	return v.Section(sec)
}
