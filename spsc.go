// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ubq

import (
	"sync/atomic"
	"time"
	"unsafe"

	"code.hybscloud.com/atomix"

	"code.hybscloud.com/ubq/internal/ring"
)

// SPSC is an unbounded single-producer single-consumer FIFO queue.
//
// The queue is a dynamically-growing chain of bounded wait-free SPSC
// rings. The producer fills the write-side ring; when it is full (and
// the queue is growable) the producer acquires a fresh ring from the
// buffer pool and moves on. The consumer drains the read-side ring;
// when it is empty and no longer the write ring, the consumer advances
// to the next ring in hand-out order and releases the drained one back
// to the pool. FIFO order holds across ring boundaries.
//
// Both endpoint operations are wait-free: no locks, no retries, no
// blocking. A successful Dequeue of an element happens-after the
// Enqueue that produced it.
//
// The endpoint identities are published through atomic.Pointer cells:
// the consumer compares its read ring against the published write ring
// to distinguish "ring drained" from "queue empty", and the published
// pair keeps Len safe to call from either side. atomic.Pointer rather
// than an atomix word keeps the rings visible to the garbage collector.
//
// Memory: at most ceil(in_flight/Cap())+1 rings are live between the
// endpoints, plus up to 32 cached rings inside the pool.
type SPSC struct {
	_         pad
	r         *ring.Ring                // Read-side ring, consumer only
	rpub      atomic.Pointer[ring.Ring] // Read-side identity, published by the consumer
	_         pad
	w         *ring.Ring                // Write-side ring, producer only
	wpub      atomic.Pointer[ring.Ring] // Write-side identity, published by the producer
	_         pad
	chained   atomix.Int64 // Rings acquired by the producer, not yet reached by the consumer
	_         pad
	pool      *bufferPool
	size      int // Per-ring capacity (power of 2)
	fixedSize bool
}

// NewSPSC creates a growable unbounded SPSC queue.
// Capacity is the per-ring capacity and rounds up to the next power
// of 2. Panics if capacity < 2.
//
// Use the [Builder] for fixed-size or prewarmed queues.
func NewSPSC(capacity int) *SPSC {
	if capacity < 2 {
		panic("ubq: capacity must be >= 2")
	}
	return newSPSC(Options{capacity: capacity})
}

func newSPSC(o Options) *SPSC {
	size := roundToPow2(o.capacity)
	q := &SPSC{
		size:      size,
		fixedSize: o.fixedSize,
		pool:      newBufferPool(cacheSize, o.prewarm && !o.fixedSize, size),
	}

	// The first ring is not drawn from the pool: it starts life as both
	// endpoints and is never resident in the inuse chain.
	first := ring.New(size)
	q.r = first
	q.w = first
	q.rpub.Store(first)
	q.wpub.Store(first)
	return q
}

// Enqueue adds an element to the queue (producer only).
//
// Returns ErrNilElem for a nil element. In fixed-size mode returns
// ErrWouldBlock when the ring is full and the caller retries. In
// growable mode Enqueue always succeeds: a full ring is retired and a
// fresh one is acquired from the pool.
func (q *SPSC) Enqueue(elem unsafe.Pointer) error {
	if elem == nil {
		return ErrNilElem
	}

	if !q.w.Available() {
		if q.fixedSize {
			return ErrWouldBlock
		}
		// acquire records the fresh ring in the inuse chain before we
		// publish it as the write ring. The consumer can therefore only
		// observe a write-ring change after the chain already holds the
		// ring it will advance to.
		b := q.pool.acquire(q.size)
		q.w = b
		q.wpub.Store(b)
		q.chained.Add(1)
	}

	return q.w.Push(elem)
}

// Dequeue removes and returns the oldest element (consumer only).
// Returns (nil, ErrWouldBlock) if the queue is empty.
func (q *SPSC) Dequeue() (unsafe.Pointer, error) {
	r := q.r
	if r.Empty() {
		if r == q.wpub.Load() {
			return nil, ErrWouldBlock // genuinely empty
		}
		// The producer has moved past this ring. Re-check emptiness: it
		// may have pushed into this ring right before moving on, and
		// advancing on the stale first check would lose those elements.
		if r.Empty() {
			if next := q.pool.nextRetired(); next != nil {
				q.r = next
				q.rpub.Store(next)
				q.pool.release(r)
				q.chained.Add(-1)
				r = next
			}
		}
	}
	return r.Pop()
}

// DequeueWait dequeues like Dequeue but, when the queue is empty, keeps
// retrying with a fixed sleep between attempts until an element
// arrives. With interval 0 it degrades to a single non-blocking
// attempt. Consumer only.
//
// This is the polling consumer helper; for adaptive spinning prefer a
// caller-side iox.Backoff loop around Dequeue.
func (q *SPSC) DequeueWait(interval time.Duration) (unsafe.Pointer, error) {
	for {
		elem, err := q.Dequeue()
		if err == nil {
			return elem, nil
		}
		if interval == 0 || !IsWouldBlock(err) {
			return nil, err
		}
		time.Sleep(interval)
	}
}

// enqueueBatch publishes a whole batch through the write ring, retiring
// it and acquiring a fresh ring when it cannot take the batch. Producer
// only; callers guarantee len(batch) <= the per-ring capacity.
func (q *SPSC) enqueueBatch(batch []unsafe.Pointer) error {
	if !q.w.AvailableN(len(batch)) {
		if q.fixedSize {
			return ErrWouldBlock
		}
		b := q.pool.acquire(q.size)
		q.w = b
		q.wpub.Store(b)
		q.chained.Add(1)
	}
	return q.w.MultiPush(batch)
}

// Empty reports whether no element is currently enqueued (consumer
// only). The answer may be stale immediately: a concurrent producer may
// have pushed by the time it is returned.
func (q *SPSC) Empty() bool {
	if q.r.Empty() {
		return q.r == q.wpub.Load()
	}
	return false
}

// Available reports whether the current write ring has at least one
// free slot (producer only, advisory). A growable queue accepts
// elements even when Available is false.
func (q *SPSC) Available() bool {
	return q.w.Available()
}

// Len returns an approximate element count: the read ring's length plus
// the write ring's length when the endpoints differ. Elements resident
// in chained rings between the endpoints are not counted, so Len is a
// lower-bound estimate. Safe to call from either side.
func (q *SPSC) Len() int {
	r := q.rpub.Load()
	w := q.wpub.Load()
	n := r.Len()
	if r != w {
		n += w.Len()
	}
	return n
}

// Cap returns the per-ring capacity.
func (q *SPSC) Cap() int {
	return q.size
}

// Stats is a snapshot of the queue's pool counters.
type Stats struct {
	// PoolHits counts ring acquisitions served from the cache.
	PoolHits int64
	// PoolMisses counts ring acquisitions that had to allocate.
	PoolMisses int64
	// Chained is the number of rings the producer has acquired that the
	// consumer has not yet advanced to. The write ring counts once it
	// differs from the read ring; the read ring never counts.
	Chained int64
}

// Stats returns current observability counters. Safe to call from any
// goroutine; the fields are individually consistent, not a snapshot of
// a single instant.
func (q *SPSC) Stats() Stats {
	return Stats{
		PoolHits:   q.pool.hits.Load(),
		PoolMisses: q.pool.misses.Load(),
		Chained:    q.chained.Load(),
	}
}
