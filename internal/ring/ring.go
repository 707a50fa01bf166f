// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ring provides the bounded wait-free SPSC circular buffer that
// backs the unbounded queue. Slots carry pointer-sized opaque values.
//
// Access discipline: exactly one goroutine calls Push, MultiPush,
// Available, AvailableN (the producer); exactly one goroutine calls Pop
// and Empty (the consumer). Len may be called from either side and is
// approximate. Reset requires exclusive ownership of the whole ring.
package ring

import (
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates a full ring on Push/MultiPush or an empty ring
// on Pop. Alias of [iox.ErrWouldBlock] for ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

// ptrSize is the size of a pointer in bytes.
const ptrSize = int(unsafe.Sizeof(uintptr(0)))

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// Ring is a bounded SPSC queue of unsafe.Pointer slots.
//
// Based on Lamport's ring buffer with cached index optimization: the
// producer caches the consumer's head index and the consumer caches the
// producer's tail index, so the shared indexes are only re-read when the
// cached view says the operation cannot proceed.
type Ring struct {
	_          pad
	head       atomix.Uint64 // Consumer reads from here
	_          pad
	cachedTail uint64 // Consumer's cached view of tail
	_          pad
	tail       atomix.Uint64 // Producer writes here
	_          pad
	cachedHead uint64 // Producer's cached view of head
	_          pad
	buffer     []unsafe.Pointer
	mask       uint64
}

// New creates a ring. Capacity rounds up to the next power of 2.
// Panics if capacity < 2.
func New(capacity int) *Ring {
	if capacity < 2 {
		panic("ring: capacity must be >= 2")
	}

	n := uint64(roundToPow2(capacity))
	return &Ring{
		buffer: make([]unsafe.Pointer, n),
		mask:   n - 1,
	}
}

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// Push adds an element (producer only).
// Returns ErrWouldBlock if the ring is full.
func (r *Ring) Push(elem unsafe.Pointer) error {
	tail := r.tail.LoadRelaxed()

	if tail-r.cachedHead > r.mask {
		r.cachedHead = r.head.LoadAcquire()
		if tail-r.cachedHead > r.mask {
			return ErrWouldBlock
		}
	}

	// Pointer arithmetic avoids slice bounds checking in hot path.
	// Equivalent to r.buffer[tail&r.mask] = elem
	*(*unsafe.Pointer)(unsafe.Add(unsafe.Pointer(unsafe.SliceData(r.buffer)), int(tail&r.mask)*ptrSize)) = elem
	r.tail.StoreRelease(tail + 1)
	return nil
}

// MultiPush publishes a whole batch with a single tail release (producer
// only). Either all elements of batch are enqueued or none are.
// Returns ErrWouldBlock if fewer than len(batch) slots are free.
func (r *Ring) MultiPush(batch []unsafe.Pointer) error {
	k := uint64(len(batch))
	if k == 0 {
		return nil
	}

	tail := r.tail.LoadRelaxed()
	if tail+k-1-r.cachedHead > r.mask {
		r.cachedHead = r.head.LoadAcquire()
		if tail+k-1-r.cachedHead > r.mask {
			return ErrWouldBlock
		}
	}

	for i, elem := range batch {
		r.buffer[(tail+uint64(i))&r.mask] = elem
	}
	r.tail.StoreRelease(tail + k)
	return nil
}

// Pop removes and returns the oldest element (consumer only).
// Returns (nil, ErrWouldBlock) if the ring is empty.
func (r *Ring) Pop() (unsafe.Pointer, error) {
	head := r.head.LoadRelaxed()

	if head >= r.cachedTail {
		r.cachedTail = r.tail.LoadAcquire()
		if head >= r.cachedTail {
			return nil, ErrWouldBlock
		}
	}

	slot := (*unsafe.Pointer)(unsafe.Add(unsafe.Pointer(unsafe.SliceData(r.buffer)), int(head&r.mask)*ptrSize))
	elem := *slot
	*slot = nil // release the reference so the GC can collect the payload
	r.head.StoreRelease(head + 1)
	return elem, nil
}

// Empty reports whether a subsequent Pop would fail (consumer only).
func (r *Ring) Empty() bool {
	head := r.head.LoadRelaxed()
	if head >= r.cachedTail {
		r.cachedTail = r.tail.LoadAcquire()
		return head >= r.cachedTail
	}
	return false
}

// Available reports whether a subsequent Push would succeed (producer
// only, advisory).
func (r *Ring) Available() bool {
	return r.AvailableN(1)
}

// AvailableN reports whether a MultiPush of k elements would succeed
// (producer only, advisory).
func (r *Ring) AvailableN(k int) bool {
	tail := r.tail.LoadRelaxed()
	if tail+uint64(k)-1-r.cachedHead > r.mask {
		r.cachedHead = r.head.LoadAcquire()
		return tail+uint64(k)-1-r.cachedHead <= r.mask
	}
	return true
}

// Len returns the approximate number of enqueued elements. The value may
// be stale the moment it is returned.
func (r *Ring) Len() int {
	head := r.head.LoadRelaxed()
	tail := r.tail.LoadRelaxed()
	if tail < head {
		return 0
	}
	return int(tail - head)
}

// Cap returns the ring capacity.
func (r *Ring) Cap() int {
	return int(r.mask + 1)
}

// Reset returns the ring to its initial drained state. The caller must
// own the ring exclusively: neither endpoint may touch it concurrently.
func (r *Ring) Reset() {
	r.head.Store(0)
	r.tail.Store(0)
	r.cachedHead = 0
	r.cachedTail = 0
	for i := range r.buffer {
		r.buffer[i] = nil
	}
}
