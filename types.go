// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ubq

import "unsafe"

// Queue is the combined producer-consumer interface for the unbounded
// FIFO queue and its facades.
//
// Elements are pointer-sized opaque words, conventionally non-nil
// pointers: ownership of the pointed-to object transfers from producer
// to consumer. Nil can never be enqueued (it is the internal "absent"
// sentinel); Enqueue rejects it with ErrNilElem.
//
// Example:
//
//	q := ubq.NewSPSC(1024)
//
//	// Producer
//	msg := &Message{Data: payload}
//	q.Enqueue(unsafe.Pointer(msg))
//	// msg ownership transferred - do not use msg after this
//
//	// Consumer
//	p, err := q.Dequeue()
//	if err == nil {
//	    msg := (*Message)(p)
//	}
type Queue interface {
	Producer
	Consumer
	Cap() int
}

// Producer is the interface for enqueueing elements.
//
// Thread safety depends on queue type:
//   - SPSC, SPSCBatch: single producer goroutine only
//   - MPMC: multiple producers safe (spinlock serialized)
type Producer interface {
	// Enqueue adds an element to the queue (non-blocking).
	// Returns nil on success, ErrNilElem for a nil element, and
	// ErrWouldBlock when a fixed-size queue is full.
	Enqueue(elem unsafe.Pointer) error
}

// Consumer is the interface for dequeueing elements.
//
// Thread safety depends on queue type:
//   - SPSC, SPSCBatch: single consumer goroutine only
//   - MPMC: multiple consumers safe (spinlock serialized)
type Consumer interface {
	// Dequeue removes and returns the oldest element (non-blocking).
	// Returns (nil, ErrWouldBlock) if the queue is empty.
	Dequeue() (unsafe.Pointer, error)
}

// Flusher is implemented by batching producers whose elements may sit in
// a producer-local buffer until a full batch is published. Call Flush
// whenever enqueued elements must become visible to the consumer before
// the batch fills up.
type Flusher interface {
	// Flush publishes the partial batch, if any.
	// Returns ErrWouldBlock when a fixed-size queue cannot take the
	// batch; the batch stays resident and Flush can be retried.
	Flush() error
}

var (
	_ Queue   = (*SPSC)(nil)
	_ Queue   = (*MPMC)(nil)
	_ Queue   = (*SPSCBatch)(nil)
	_ Flusher = (*SPSCBatch)(nil)
)
