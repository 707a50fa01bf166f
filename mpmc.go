// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ubq

import (
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// spinLock is a test-and-set lock with adaptive pause.
type spinLock struct {
	state atomix.Uint64
}

func (l *spinLock) lock() {
	sw := spin.Wait{}
	for !l.state.CompareAndSwapAcqRel(0, 1) {
		sw.Once()
	}
}

func (l *spinLock) unlock() {
	l.state.StoreRelease(0)
}

// MPMC is a coarse-locked multi-endpoint facade over an SPSC queue.
//
// Two independent spinlocks serialize the producer side and the
// consumer side, so any number of goroutines may enqueue and dequeue.
// FIFO order across all producers follows lock acquisition order, and
// each producer's own elements keep their relative order.
//
// Throughput does not scale with the number of producers or consumers;
// the locks exist for safety, not parallelism. Workloads with real
// multi-producer contention belong on the lock-free MPMC queues in
// code.hybscloud.com/lfq; this facade trades scalability for the
// unbounded growth the chained-ring queue provides.
type MPMC struct {
	_     pad
	plock spinLock // Guards the producer side only
	_     pad
	clock spinLock // Guards the consumer side only
	_     pad
	q     *SPSC
}

// NewMPMC creates a growable multi-endpoint queue. Capacity is the
// per-ring capacity and rounds up to the next power of 2.
// Panics if capacity < 2.
func NewMPMC(capacity int) *MPMC {
	if capacity < 2 {
		panic("ubq: capacity must be >= 2")
	}
	return newMPMC(Options{capacity: capacity})
}

func newMPMC(o Options) *MPMC {
	return &MPMC{q: newSPSC(o)}
}

// Enqueue adds an element under the producer lock (multiple producers
// safe). Error semantics match [SPSC.Enqueue].
//
// Only the scalar push path runs under the lock; batching through a
// shared producer lock is not supported.
func (q *MPMC) Enqueue(elem unsafe.Pointer) error {
	q.plock.lock()
	err := q.q.Enqueue(elem)
	q.plock.unlock()
	return err
}

// Dequeue removes and returns the oldest element under the consumer
// lock (multiple consumers safe). Error semantics match [SPSC.Dequeue].
func (q *MPMC) Dequeue() (unsafe.Pointer, error) {
	q.clock.lock()
	elem, err := q.q.Dequeue()
	q.clock.unlock()
	return elem, err
}

// Empty reports whether no element is currently enqueued, serialized
// with the consumers. The answer may be stale immediately.
func (q *MPMC) Empty() bool {
	q.clock.lock()
	empty := q.q.Empty()
	q.clock.unlock()
	return empty
}

// Len returns an approximate element count without taking either lock.
// See [SPSC.Len].
func (q *MPMC) Len() int {
	return q.q.Len()
}

// Cap returns the per-ring capacity.
func (q *MPMC) Cap() int {
	return q.q.Cap()
}

// Stats returns current observability counters. See [SPSC.Stats].
func (q *MPMC) Stats() Stats {
	return q.q.Stats()
}
