// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ubq

// Design constants.
const (
	// cacheSize bounds the pool of retired rings kept for reuse.
	// Rings released beyond this bound are dropped to the GC.
	cacheSize = 32

	// batchSize is the number of elements a batching producer collects
	// locally before publishing them to the ring in one step.
	batchSize = 16

	// nodeCacheSize bounds the recycled-node ring inside the chain queue.
	nodeCacheSize = 32
)

// Options configures queue creation.
type Options struct {
	// Capacity of each ring (rounds up to next power of 2)
	capacity int

	// Fixed-size mode: never grow past one ring; Enqueue reports
	// ErrWouldBlock when the ring is full
	fixedSize bool

	// Prewarm: pre-populate the pool cache with ready-to-use rings
	prewarm bool
}

// Builder creates queues with fluent configuration.
//
// Example:
//
//	// Growable SPSC queue (the default)
//	q := ubq.New(1024).Build()
//
//	// Bounded queue: a full ring reports ErrWouldBlock
//	q := ubq.New(1024).FixedSize().Build()
//
//	// Growable with a pre-populated ring cache
//	q := ubq.New(1024).Prewarm().Build()
//
//	// Batching producer facade
//	q := ubq.New(1024).BuildBatch()
//
//	// Coarse-locked multi-endpoint facade
//	q := ubq.New(1024).BuildMPMC()
type Builder struct {
	opts Options
}

// New creates a queue builder with the given per-ring capacity.
//
// Capacity rounds up to the next power of 2. For example, capacity=4
// results in actual capacity=4, capacity=1000 results in actual
// capacity=1024.
//
// Panics if capacity < 2.
func New(capacity int) *Builder {
	if capacity < 2 {
		panic("ubq: capacity must be >= 2")
	}
	return &Builder{opts: Options{capacity: capacity}}
}

// FixedSize declares that the queue must never grow past a single ring.
// A full queue then reports ErrWouldBlock from Enqueue and the caller
// retries (backpressure), exactly like the bounded SPSC queues in
// code.hybscloud.com/lfq.
func (b *Builder) FixedSize() *Builder {
	b.opts.fixedSize = true
	return b
}

// Prewarm pre-populates the ring cache so that the first ring
// acquisitions on growth are allocation-free.
// Has no observable effect in fixed-size mode.
func (b *Builder) Prewarm() *Builder {
	b.opts.prewarm = true
	return b
}

// Build creates the unbounded SPSC queue.
func (b *Builder) Build() *SPSC {
	return newSPSC(b.opts)
}

// BuildBatch creates the batching-producer facade over an SPSC queue.
// Panics if the rounded capacity does not exceed the batch size.
func (b *Builder) BuildBatch() *SPSCBatch {
	return newSPSCBatch(b.opts)
}

// BuildMPMC creates the coarse-locked multi-endpoint facade over an
// SPSC queue.
func (b *Builder) BuildMPMC() *MPMC {
	return newMPMC(b.opts)
}

// BuildOf creates the boxed-value facade over an SPSC queue with
// compile-time element type safety.
func BuildOf[T any](b *Builder) *SPSCOf[T] {
	return &SPSCOf[T]{q: newSPSC(b.opts)}
}

// BuildMPMCOf creates the boxed-value facade over the multi-endpoint
// facade with compile-time element type safety.
func BuildMPMCOf[T any](b *Builder) *MPMCOf[T] {
	return &MPMCOf[T]{q: newMPMC(b.opts)}
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte

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
