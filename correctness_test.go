// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ubq_test

import (
	"errors"
	"testing"
	"time"
	"unsafe"

	"code.hybscloud.com/ubq"
)

// TestRoundTrip checks the simplest law: push then pop on an empty
// queue yields the pushed value and leaves the queue empty.
func TestRoundTrip(t *testing.T) {
	q := ubq.NewSPSC(8)

	v := 42
	if err := q.Enqueue(unsafe.Pointer(&v)); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	p, err := q.Dequeue()
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if (*int)(p) != &v {
		t.Fatal("Dequeue returned a different word")
	}
	if !q.Empty() {
		t.Fatal("queue not empty after round trip")
	}
}

// TestEmptyIdempotent checks that Empty is stable without concurrent
// activity.
func TestEmptyIdempotent(t *testing.T) {
	q := ubq.NewSPSC(4)
	for range 3 {
		if !q.Empty() {
			t.Fatal("Empty on fresh queue: got false")
		}
	}

	v := 1
	_ = q.Enqueue(unsafe.Pointer(&v))
	for range 3 {
		if q.Empty() {
			t.Fatal("Empty with one element: got true")
		}
	}
}

// TestFIFOAcrossRings pushes and pops in skewed waves so the read and
// write rings repeatedly separate and meet again, crossing many ring
// boundaries. Order must hold throughout and drained rings must come
// back from the pool cache.
func TestFIFOAcrossRings(t *testing.T) {
	q := ubq.NewSPSC(4)

	backing := make([]int, 10000)
	next, expect := 0, 0
	for range 100 {
		// Push a wave larger than one ring, pop a smaller wave.
		for range 70 {
			backing[next] = next
			if err := q.Enqueue(unsafe.Pointer(&backing[next])); err != nil {
				t.Fatalf("Enqueue(%d): %v", next, err)
			}
			next++
		}
		for range 55 {
			p, err := q.Dequeue()
			if err != nil {
				t.Fatalf("Dequeue(%d): %v", expect, err)
			}
			if got := *(*int)(p); got != expect {
				t.Fatalf("Dequeue: got %d, want %d", got, expect)
			}
			expect++
		}
	}
	// Drain the backlog.
	for expect < next {
		p, err := q.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue(%d): %v", expect, err)
		}
		if got := *(*int)(p); got != expect {
			t.Fatalf("Dequeue: got %d, want %d", got, expect)
		}
		expect++
	}

	if !q.Empty() {
		t.Fatal("queue not empty after drain")
	}
	st := q.Stats()
	if st.PoolHits == 0 {
		t.Fatal("PoolHits: got 0, want recycled rings after many boundary crossings")
	}
	if st.Chained != 0 {
		t.Fatalf("Chained after drain: got %d, want 0", st.Chained)
	}
}

// TestPoolRecycling verifies the release/acquire cycle: a drained ring
// goes back to the cache and serves the next growth without
// allocating.
func TestPoolRecycling(t *testing.T) {
	q := ubq.NewSPSC(4)

	vs := words(8)
	for i := range 8 {
		_ = q.Enqueue(vs[i]) // one growth: miss=1
	}
	for i := range 8 {
		if _, err := q.Dequeue(); err != nil {
			t.Fatalf("Dequeue(%d): %v", i, err)
		}
	}
	if st := q.Stats(); st.PoolMisses != 1 || st.PoolHits != 0 {
		t.Fatalf("after first cycle: misses=%d hits=%d, want 1/0", st.PoolMisses, st.PoolHits)
	}

	for i := range 8 {
		_ = q.Enqueue(vs[i]) // growth served from the cache: hit=1
	}
	if st := q.Stats(); st.PoolMisses != 1 || st.PoolHits != 1 {
		t.Fatalf("after second cycle: misses=%d hits=%d, want 1/1", st.PoolMisses, st.PoolHits)
	}
}

// TestLenApprox checks the documented Len bounds: exact for a
// quiescent single-ring queue, a lower-bound estimate once rings are
// chained between the endpoints.
func TestLenApprox(t *testing.T) {
	q := ubq.New(8).FixedSize().Build()
	vs := words(16)
	for i := range 5 {
		_ = q.Enqueue(vs[i])
	}
	if got := q.Len(); got != 5 {
		t.Fatalf("fixed-size Len: got %d, want 5", got)
	}

	g := ubq.NewSPSC(4)
	for i := range 10 {
		_ = g.Enqueue(vs[i])
	}
	// 10 in flight over 4-slot rings; the chained middle ring is not
	// counted.
	if got := g.Len(); got < 10-2*4 || got > 10 {
		t.Fatalf("growable Len: got %d, want within [2,10]", got)
	}
}

// TestDequeueWait covers the polling helper in its non-blocking and
// immediate-hit forms.
func TestDequeueWait(t *testing.T) {
	q := ubq.NewSPSC(4)

	if _, err := q.DequeueWait(0); !errors.Is(err, ubq.ErrWouldBlock) {
		t.Fatalf("DequeueWait(0) on empty: got %v, want ErrWouldBlock", err)
	}

	v := 7
	_ = q.Enqueue(unsafe.Pointer(&v))
	p, err := q.DequeueWait(time.Microsecond)
	if err != nil {
		t.Fatalf("DequeueWait: %v", err)
	}
	if (*int)(p) != &v {
		t.Fatal("DequeueWait returned a different word")
	}
}

// TestFixedSizeBound checks that fixed-size mode never exceeds its
// capacity: pushes minus pops stays within the ring.
func TestFixedSizeBound(t *testing.T) {
	const capacity = 8
	q := ubq.New(capacity).FixedSize().Build()

	vs := words(64)
	inFlight := 0
	pushed, popped := 0, 0
	for i := range 64 {
		if err := q.Enqueue(vs[i%len(vs)]); err == nil {
			pushed++
			inFlight++
		} else if !errors.Is(err, ubq.ErrWouldBlock) {
			t.Fatalf("Enqueue: %v", err)
		}
		if inFlight > capacity {
			t.Fatalf("in-flight %d exceeds capacity %d", inFlight, capacity)
		}
		if i%3 == 2 {
			if _, err := q.Dequeue(); err == nil {
				popped++
				inFlight--
			}
		}
	}
	if pushed-popped != q.Len() {
		t.Fatalf("accounting: pushed-popped=%d Len=%d", pushed-popped, q.Len())
	}
}
