// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ubq

import "unsafe"

// SPSCBatch is a batching-producer facade over an SPSC queue.
//
// The producer collects elements in a local fixed-size batch and
// publishes the whole batch into the ring with a single tail release.
// Batching trades latency for throughput: it cuts per-element cache
// line traffic between the cores running the two endpoints, at the cost
// of elements staying invisible to the consumer until the batch fills
// or Flush is called.
//
// The local batch is producer-only state; the consumer side is the
// plain SPSC consumer.
type SPSCBatch struct {
	q *SPSC

	// Producer-local; never touched by the consumer.
	batch [batchSize]unsafe.Pointer
	mcnt  int
}

// NewSPSCBatch creates a growable batching queue. Capacity is the
// per-ring capacity and must exceed the batch size after power-of-2
// rounding; panics otherwise.
func NewSPSCBatch(capacity int) *SPSCBatch {
	if capacity < 2 {
		panic("ubq: capacity must be >= 2")
	}
	return newSPSCBatch(Options{capacity: capacity})
}

func newSPSCBatch(o Options) *SPSCBatch {
	if roundToPow2(o.capacity) <= batchSize {
		panic("ubq: batch queue capacity must exceed the batch size")
	}
	return &SPSCBatch{q: newSPSC(o)}
}

// Enqueue adds an element to the local batch, publishing the batch to
// the ring whenever it is full (producer only).
//
// Returns ErrNilElem for a nil element. In fixed-size mode returns
// ErrWouldBlock when a previously deferred publish still cannot
// proceed; the element is not accepted and the caller retries. A
// would-block on the publish that follows acceptance leaves the batch
// resident for the next call and is not an error: the element has been
// accepted.
func (q *SPSCBatch) Enqueue(elem unsafe.Pointer) error {
	if elem == nil {
		return ErrNilElem
	}

	if q.mcnt == batchSize {
		// A full batch from a previously deferred publish; there is no
		// room for elem until it goes out.
		if err := q.publish(); err != nil {
			return err
		}
	}

	q.batch[q.mcnt] = elem
	q.mcnt++

	if q.mcnt == batchSize {
		if err := q.publish(); err != nil && !IsWouldBlock(err) {
			return err
		}
	}
	return nil
}

// Flush publishes the partial batch, if any (producer only).
// Returns ErrWouldBlock when a fixed-size queue cannot take the batch;
// the batch stays resident and Flush can be retried.
func (q *SPSCBatch) Flush() error {
	if q.mcnt == 0 {
		return nil
	}
	return q.publish()
}

func (q *SPSCBatch) publish() error {
	if err := q.q.enqueueBatch(q.batch[:q.mcnt]); err != nil {
		return err
	}
	for i := range q.mcnt {
		q.batch[i] = nil
	}
	q.mcnt = 0
	return nil
}

// Dequeue removes and returns the oldest published element (consumer
// only). Elements still sitting in the producer-local batch are not
// visible; the producer publishes them on batch fill or Flush.
func (q *SPSCBatch) Dequeue() (unsafe.Pointer, error) {
	return q.q.Dequeue()
}

// Empty reports whether no published element is enqueued (consumer
// only, advisory). Unpublished batch elements are not counted.
func (q *SPSCBatch) Empty() bool {
	return q.q.Empty()
}

// Len returns the approximate number of published elements. See
// [SPSC.Len].
func (q *SPSCBatch) Len() int {
	return q.q.Len()
}

// Cap returns the per-ring capacity.
func (q *SPSCBatch) Cap() int {
	return q.q.Cap()
}

// Stats returns current observability counters. See [SPSC.Stats].
func (q *SPSCBatch) Stats() Stats {
	return q.q.Stats()
}
