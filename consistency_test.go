// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ubq_test

import (
	"sync"
	"testing"
	"time"
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"

	"code.hybscloud.com/ubq"
)

// TestConcurrentFIFO runs a real producer goroutine against a real
// consumer goroutine and verifies that every element arrives, exactly
// once, in order, across many ring boundaries.
func TestConcurrentFIFO(t *testing.T) {
	if ubq.RaceEnabled {
		t.Skip("skip: endpoint protocol synchronizes through atomix, invisible to the race detector")
	}

	const total = 200000
	q := ubq.NewSPSC(64)

	backing := make([]int, total)
	done := make(chan struct{})

	go func() {
		for i := range total {
			backing[i] = i
			if err := q.Enqueue(unsafe.Pointer(&backing[i])); err != nil {
				t.Errorf("Enqueue(%d): %v", i, err)
				return
			}
		}
	}()

	go func() {
		defer close(done)
		backoff := iox.Backoff{}
		for i := 0; i < total; {
			p, err := q.Dequeue()
			if err != nil {
				backoff.Wait()
				continue
			}
			backoff.Reset()
			if got := *(*int)(p); got != i {
				t.Errorf("Dequeue: got %d, want %d", got, i)
				return
			}
			i++
		}
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("timeout: consumer did not observe all elements")
	}
	if !q.Empty() {
		t.Fatal("queue not empty after consuming all elements")
	}
}

// TestConcurrentFIFOBatch runs the batching producer against a live
// consumer, flushing at irregular points so partial batches interleave
// with full batch commits.
func TestConcurrentFIFOBatch(t *testing.T) {
	if ubq.RaceEnabled {
		t.Skip("skip: endpoint protocol synchronizes through atomix, invisible to the race detector")
	}

	const total = 100000
	q := ubq.NewSPSCBatch(64)

	backing := make([]int, total)
	done := make(chan struct{})

	go func() {
		for i := range total {
			backing[i] = i
			if err := q.Enqueue(unsafe.Pointer(&backing[i])); err != nil {
				t.Errorf("Enqueue(%d): %v", i, err)
				return
			}
			if i%37 == 0 {
				if err := q.Flush(); err != nil {
					t.Errorf("Flush at %d: %v", i, err)
					return
				}
			}
		}
		if err := q.Flush(); err != nil {
			t.Errorf("final Flush: %v", err)
		}
	}()

	go func() {
		defer close(done)
		backoff := iox.Backoff{}
		for i := 0; i < total; {
			p, err := q.Dequeue()
			if err != nil {
				backoff.Wait()
				continue
			}
			backoff.Reset()
			if got := *(*int)(p); got != i {
				t.Errorf("Dequeue: got %d, want %d", got, i)
				return
			}
			i++
		}
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("timeout: consumer did not observe all elements")
	}
}

// TestMPMCTwoProducers pushes two disjoint value streams through the
// facade and verifies the consumer collects the complete multiset with
// each stream's relative order preserved.
func TestMPMCTwoProducers(t *testing.T) {
	if ubq.RaceEnabled {
		t.Skip("skip: facade spinlocks synchronize through atomix, invisible to the race detector")
	}

	const perProducer = 1000
	q := ubq.NewMPMC(16)

	// Producer 0 pushes the even integers 0,2,4,..., producer 1 the
	// odd ones.
	backing := make([]int, 2*perProducer)
	var wg sync.WaitGroup
	for p := range 2 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			backoff := iox.Backoff{}
			for i := range perProducer {
				v := 2*i + id
				backing[v] = v
				for q.Enqueue(unsafe.Pointer(&backing[v])) != nil {
					backoff.Wait()
				}
				backoff.Reset()
			}
		}(p)
	}

	var lastEven, lastOdd = -2, -1
	seen := make([]bool, 2*perProducer)
	count := 0
	backoff := iox.Backoff{}
	deadline := time.Now().Add(30 * time.Second)
	for count < 2*perProducer {
		p, err := q.Dequeue()
		if err != nil {
			if time.Now().After(deadline) {
				t.Fatalf("timeout: consumed %d of %d", count, 2*perProducer)
			}
			backoff.Wait()
			continue
		}
		backoff.Reset()
		v := *(*int)(p)
		if seen[v] {
			t.Fatalf("duplicate element %d", v)
		}
		seen[v] = true
		if v%2 == 0 {
			if v <= lastEven {
				t.Fatalf("even stream reordered: %d after %d", v, lastEven)
			}
			lastEven = v
		} else {
			if v <= lastOdd {
				t.Fatalf("odd stream reordered: %d after %d", v, lastOdd)
			}
			lastOdd = v
		}
		count++
	}
	wg.Wait()

	for v, ok := range seen {
		if !ok {
			t.Fatalf("element %d never consumed", v)
		}
	}
}

// TestMPMCManyEndpoints churns the facade with six producers and six
// consumers and verifies global accounting.
func TestMPMCManyEndpoints(t *testing.T) {
	if ubq.RaceEnabled {
		t.Skip("skip: facade spinlocks synchronize through atomix, invisible to the race detector")
	}

	const (
		producers = 6
		consumers = 6
		perProd   = 2000
	)
	q := ubq.NewMPMC(32)

	var payload int64
	var consumed atomix.Int64
	var wg sync.WaitGroup

	for range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			backoff := iox.Backoff{}
			for range perProd {
				for q.Enqueue(unsafe.Pointer(&payload)) != nil {
					backoff.Wait()
				}
				backoff.Reset()
			}
		}()
	}

	var cwg sync.WaitGroup
	total := int64(producers * perProd)
	for range consumers {
		cwg.Add(1)
		go func() {
			defer cwg.Done()
			backoff := iox.Backoff{}
			for consumed.Load() < total {
				if _, err := q.Dequeue(); err != nil {
					backoff.Wait()
					continue
				}
				backoff.Reset()
				consumed.Add(1)
			}
		}()
	}

	wg.Wait()
	cwg.Wait()

	if got := consumed.Load(); got != total {
		t.Fatalf("consumed: got %d, want %d", got, total)
	}
	if !q.Empty() {
		t.Fatal("queue not empty after all elements consumed")
	}
}
