package generic

import "sync"

// Pool is a typed sync.Pool. Values handed to Put pass through reset first,
// so Get never sees stale contents.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T) T
}

func NewPool[T any](generate func() T, reset func(T) T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return generate()
			},
		},
		reset: reset,
	}
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	if p.reset != nil {
		value = p.reset(value)
	}
	p.pool.Put(value)
}

// NewBufferPool pools byte slices with at least size bytes of capacity.
func NewBufferPool(size int) *Pool[*[]byte] {
	return NewPool(
		func() *[]byte {
			b := make([]byte, 0, size)
			return &b
		},
		func(b *[]byte) *[]byte {
			*b = (*b)[:0]
			return b
		},
	)
}
