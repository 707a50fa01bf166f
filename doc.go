// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ubq provides an unbounded single-producer single-consumer
// FIFO queue built as a growing chain of bounded wait-free SPSC rings,
// with a recycling buffer pool that amortizes allocation.
//
// The package complements [code.hybscloud.com/lfq]: lfq's queues are
// bounded and push back on a full buffer; ubq's queue grows instead.
// Use ubq when the producer must never stall and the consumer is
// trusted to keep up on average; use lfq when backpressure is the
// desired behavior.
//
// # Quick Start
//
// Direct constructors (recommended for most cases):
//
//	q := ubq.NewSPSC(1024)        // growable, pointer payloads
//	q := ubq.NewSPSCOf[Event](1024) // growable, typed boxed values
//
// Builder API for configured queues:
//
//	q := ubq.New(1024).Build()              // growable (default)
//	q := ubq.New(1024).FixedSize().Build()  // bounded, EWOULDBLOCK on full
//	q := ubq.New(1024).Prewarm().Build()    // growth is allocation-free at first
//	q := ubq.New(1024).BuildBatch()         // batching producer
//	q := ubq.New(1024).BuildMPMC()          // coarse-locked multi-endpoint
//	q := ubq.BuildOf[Event](ubq.New(1024))  // typed boxed values
//
// # Basic Usage
//
// The queue transports pointer-sized opaque words, conventionally
// non-nil pointers whose ownership moves from producer to consumer:
//
//	q := ubq.NewSPSC(1024)
//
//	// Producer goroutine
//	msg := &Message{Data: payload}
//	if err := q.Enqueue(unsafe.Pointer(msg)); err != nil {
//	    // ErrNilElem, or ErrWouldBlock in fixed-size mode
//	}
//	// msg ownership transferred - do not use msg after this
//
//	// Consumer goroutine
//	p, err := q.Dequeue()
//	if ubq.IsWouldBlock(err) {
//	    // Queue is empty - try again later
//	}
//	msg := (*Message)(p)
//
// Nil elements are rejected with [ErrNilElem]: the nil word is the
// internal "absent" sentinel.
//
// # How It Grows
//
// The producer owns a write-side ring, the consumer a read-side ring;
// initially they are the same ring. When the producer fills the write
// ring it acquires a fresh ring from the pool, records the new ring in
// the in-flight chain, and moves on - the full ring stays behind for
// the consumer. When the consumer drains the read ring and observes
// that the producer has moved past it, it advances to the next ring in
// hand-out order and releases the drained ring back to the pool. FIFO
// order holds across ring boundaries, and both endpoints stay wait-free
// throughout: neither ever waits on the other.
//
// The pool caches up to 32 released rings; acquisitions beyond the
// cache allocate, releases beyond the cache drop the ring to the GC.
// Prewarm() fills the cache up front. [SPSC.Stats] exposes the pool
// hit/miss counters and the current chain length.
//
// # Queue Variants
//
//	SPSC       - the core: one producer goroutine, one consumer goroutine
//	SPSCBatch  - SPSC with a batching producer (fills a local batch of 16,
//	             publishes it with a single release; Flush for partials)
//	MPMC       - two-spinlock facade: any number of producers/consumers,
//	             serialized per side; safety without scalability
//	SPSCOf[T]  - typed facade boxing value copies into heap cells
//	MPMCOf[T]  - typed facade over MPMC
//
// The MPMC facade preserves each producer's relative order and orders
// producers by lock acquisition. Its throughput does not scale with
// endpoint count - that is the design: workloads with real
// multi-producer contention belong on lfq's lock-free MPMC queues.
//
// # Consumer Patterns
//
// Busy polling with adaptive backoff:
//
//	backoff := iox.Backoff{}
//	for {
//	    p, err := q.Dequeue()
//	    if err != nil {
//	        backoff.Wait()
//	        continue
//	    }
//	    backoff.Reset()
//	    process(p)
//	}
//
// Fixed-interval polling when latency does not matter:
//
//	p, err := q.DequeueWait(50 * time.Microsecond)
//
// # Error Handling
//
// Operations return [ErrWouldBlock] when they cannot proceed: Dequeue
// on an empty queue, Enqueue on a full fixed-size queue. The error is
// sourced from [code.hybscloud.com/iox] for ecosystem consistency and
// is a control flow signal, not a failure; classify with
// [IsWouldBlock], [IsSemantic], [IsNonFailure]. Constructor misuse
// (capacity < 2, batch capacity not above the batch size) panics.
//
// # Length
//
// [SPSC.Len] is approximate by design: it sums the two endpoint rings
// and ignores rings chained between them, and either endpoint may move
// while it reads. Treat it as a trend indicator, never as a
// synchronization primitive.
//
// # Thread Safety
//
// The SPSC discipline is a contract, not a suggestion: exactly one
// goroutine may call the producer operations (Enqueue, Flush,
// Available) and exactly one the consumer operations (Dequeue, Empty).
// Violating the discipline causes undefined behavior including data
// corruption. The MPMC facade exists precisely to lift this restriction
// when needed.
//
// # Race Detection
//
// Go's race detector tracks explicit synchronization primitives but
// cannot observe happens-before relationships established through
// atomix memory orderings. The endpoint protocol and the facade
// spinlocks are correct under acquire-release semantics, yet the
// detector may report false positives on concurrent use. Tests
// incompatible with race detection are excluded via //go:build !race
// and the [RaceEnabled] constant.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit
// memory ordering, and [code.hybscloud.com/spin] for CPU pause
// instructions in the facade spinlocks.
package ubq
