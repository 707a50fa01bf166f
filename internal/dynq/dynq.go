// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package dynq provides an unbounded list-based SPSC FIFO queue of
// pointer-sized opaque values. It chains the in-flight ring buffers of
// the unbounded queue, so Push never blocks and never fails.
//
// Access discipline: exactly one goroutine calls Push (the producer) and
// exactly one goroutine calls Pop (the consumer).
package dynq

import (
	"sync/atomic"
	"unsafe"

	"code.hybscloud.com/iox"

	"code.hybscloud.com/ubq/internal/ring"
)

// ErrWouldBlock indicates an empty queue on Pop.
// Alias of [iox.ErrWouldBlock] for ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// node is a singly-linked list cell. The next pointer is the only field
// shared between the two endpoints: the producer publishes it with a
// release store, the consumer observes it with an acquire load.
//
// atomic.Pointer is used instead of an atomix word because the links must
// stay visible to the garbage collector: interior nodes are reachable
// only through the next chain.
type node struct {
	next atomic.Pointer[node]
	val  unsafe.Pointer
}

// Queue is an unbounded SPSC FIFO built as a linked list with a stub
// head node. Spent nodes are recycled to the producer through a bounded
// SPSC ring; when the recycling ring is full the node is dropped and the
// GC reclaims it.
type Queue struct {
	_     pad
	head  *node // Consumer side: stub node, value lives in head.next
	_     pad
	tail  *node // Producer side: last linked node
	_     pad
	cache *ring.Ring // Spent nodes: consumer pushes, producer pops
}

// New creates a queue with a node-recycling ring of nodeCache slots.
// Panics if nodeCache < 2.
func New(nodeCache int) *Queue {
	stub := &node{}
	return &Queue{
		head:  stub,
		tail:  stub,
		cache: ring.New(nodeCache),
	}
}

// Push appends elem to the queue (producer only). Push always succeeds:
// the queue grows without bound.
func (q *Queue) Push(elem unsafe.Pointer) {
	var n *node
	if v, err := q.cache.Pop(); err == nil {
		n = (*node)(v)
		n.next.Store(nil)
	} else {
		n = &node{}
	}
	n.val = elem

	q.tail.next.Store(n) // publishes n.val to the consumer
	q.tail = n
}

// Pop removes and returns the oldest element (consumer only).
// Returns (nil, ErrWouldBlock) if the queue is empty.
func (q *Queue) Pop() (unsafe.Pointer, error) {
	n := q.head.next.Load()
	if n == nil {
		return nil, ErrWouldBlock
	}

	elem := n.val
	n.val = nil
	spent := q.head
	q.head = n

	// Hand the spent stub back to the producer. Dropping it on overflow
	// is fine: the GC reclaims it.
	spent.next.Store(nil)
	_ = q.cache.Push(unsafe.Pointer(spent))
	return elem, nil
}
