// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ubq

import (
	"unsafe"

	"code.hybscloud.com/atomix"

	"code.hybscloud.com/ubq/internal/dynq"
	"code.hybscloud.com/ubq/internal/ring"
)

// bufferPool recycles the ring buffers of the unbounded queue.
//
// It has two halves with opposite SPSC roles, separated by cache line
// padding:
//
//   - inuse: every ring handed to the producer, in hand-out order.
//     The producer pushes on acquire, the consumer pops on advance.
//     Because inuse is itself FIFO, the order in which the consumer
//     observes rings equals the order in which the producer moved
//     through them, which equals the global enqueue order across ring
//     boundaries.
//   - cache: up to cacheSize reset, ready-to-use rings. The consumer
//     pushes on release, the producer pops on acquire.
//
// Every ring is in exactly one of: held as the read ring, held as the
// write ring and resident in inuse, resident in inuse awaiting the
// consumer, resident in cache, or dropped to the GC.
type bufferPool struct {
	_      pad
	inuse  *dynq.Queue // Producer pushes, consumer pops
	misses atomix.Int64
	hits   atomix.Int64
	_      pad
	cache  *ring.Ring // Consumer pushes, producer pops
	_      pad
}

// newBufferPool creates a pool. If prewarm is set, the cache starts
// filled with cacheN initialized rings of ringSize slots; otherwise the
// cache starts empty and rings are allocated on first demand.
func newBufferPool(cacheN int, prewarm bool, ringSize int) *bufferPool {
	p := &bufferPool{
		inuse: dynq.New(nodeCacheSize),
		cache: ring.New(cacheN),
	}
	if prewarm {
		for range cacheN {
			_ = p.cache.Push(unsafe.Pointer(ring.New(ringSize)))
		}
	}
	return p
}

// acquire returns the next write-side ring: a recycled one from the
// cache when possible, a freshly allocated one otherwise. The ring is
// recorded in inuse before it is returned, so the consumer is
// guaranteed to find it there once the producer has moved on.
// Producer side only.
func (p *bufferPool) acquire(size int) *ring.Ring {
	var b *ring.Ring
	if v, err := p.cache.Pop(); err == nil {
		b = (*ring.Ring)(v)
		p.hits.Add(1)
	} else {
		b = ring.New(size)
		p.misses.Add(1)
	}
	p.inuse.Push(unsafe.Pointer(b))
	return b
}

// nextRetired returns the oldest ring the producer has been handed, or
// nil when the producer has not moved past the consumer's position.
// Consumer side only.
func (p *bufferPool) nextRetired() *ring.Ring {
	v, err := p.inuse.Pop()
	if err != nil {
		return nil
	}
	return (*ring.Ring)(v)
}

// release resets a drained ring and returns it to the cache. When the
// cache is full the ring is dropped and the GC reclaims it, so the pool
// never holds more than cacheSize idle rings. Consumer side only.
func (p *bufferPool) release(b *ring.Ring) {
	b.Reset()
	_ = p.cache.Push(unsafe.Pointer(b))
}
