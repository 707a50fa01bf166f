// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ubq

import (
	"time"
	"unsafe"
)

// SPSCOf is a type-safe boxed-value facade over an SPSC queue.
//
// The core queue transports pointer-sized opaque words. SPSCOf boxes a
// copy of each element into a heap cell and transports the cell's
// address; the consumer receives the value back by copy and the garbage
// collector reclaims the cell. This keeps the boxing concern entirely
// outside the core: SPSCOf is a thin layer, not a queue of its own.
//
// For large element types prefer the pointer-based [SPSC] directly and
// transfer ownership instead of copying.
type SPSCOf[T any] struct {
	q *SPSC
}

// NewSPSCOf creates a growable boxed-value SPSC queue.
// Capacity semantics match [NewSPSC].
func NewSPSCOf[T any](capacity int) *SPSCOf[T] {
	return &SPSCOf[T]{q: NewSPSC(capacity)}
}

// Enqueue boxes a copy of *elem and adds it to the queue (producer
// only). The original can be modified after Enqueue returns.
// Returns ErrNilElem for a nil pointer.
func (q *SPSCOf[T]) Enqueue(elem *T) error {
	if elem == nil {
		return ErrNilElem
	}
	cell := new(T)
	*cell = *elem
	return q.q.Enqueue(unsafe.Pointer(cell))
}

// Dequeue removes and returns the oldest element (consumer only).
// Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (q *SPSCOf[T]) Dequeue() (T, error) {
	p, err := q.q.Dequeue()
	if err != nil {
		var zero T
		return zero, err
	}
	return *(*T)(p), nil
}

// DequeueWait dequeues with fixed-interval polling on empty.
// See [SPSC.DequeueWait].
func (q *SPSCOf[T]) DequeueWait(interval time.Duration) (T, error) {
	p, err := q.q.DequeueWait(interval)
	if err != nil {
		var zero T
		return zero, err
	}
	return *(*T)(p), nil
}

// Empty reports whether no element is currently enqueued (consumer
// only, advisory).
func (q *SPSCOf[T]) Empty() bool {
	return q.q.Empty()
}

// Len returns an approximate element count. See [SPSC.Len].
func (q *SPSCOf[T]) Len() int {
	return q.q.Len()
}

// Cap returns the per-ring capacity.
func (q *SPSCOf[T]) Cap() int {
	return q.q.Cap()
}

// Stats returns current observability counters. See [SPSC.Stats].
func (q *SPSCOf[T]) Stats() Stats {
	return q.q.Stats()
}

// MPMCOf is the boxed-value facade over the coarse-locked [MPMC].
type MPMCOf[T any] struct {
	q *MPMC
}

// NewMPMCOf creates a growable boxed-value multi-endpoint queue.
// Capacity semantics match [NewMPMC].
func NewMPMCOf[T any](capacity int) *MPMCOf[T] {
	return &MPMCOf[T]{q: NewMPMC(capacity)}
}

// Enqueue boxes a copy of *elem and adds it to the queue (multiple
// producers safe). Returns ErrNilElem for a nil pointer.
func (q *MPMCOf[T]) Enqueue(elem *T) error {
	if elem == nil {
		return ErrNilElem
	}
	cell := new(T)
	*cell = *elem
	return q.q.Enqueue(unsafe.Pointer(cell))
}

// Dequeue removes and returns the oldest element (multiple consumers
// safe). Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (q *MPMCOf[T]) Dequeue() (T, error) {
	p, err := q.q.Dequeue()
	if err != nil {
		var zero T
		return zero, err
	}
	return *(*T)(p), nil
}

// Empty reports whether no element is currently enqueued, serialized
// with the consumers.
func (q *MPMCOf[T]) Empty() bool {
	return q.q.Empty()
}

// Len returns an approximate element count. See [SPSC.Len].
func (q *MPMCOf[T]) Len() int {
	return q.q.Len()
}

// Cap returns the per-ring capacity.
func (q *MPMCOf[T]) Cap() int {
	return q.q.Cap()
}
