// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring_test

import (
	"errors"
	"testing"
	"unsafe"

	"code.hybscloud.com/ubq/internal/ring"
)

func words(n int) []unsafe.Pointer {
	backing := make([]int, n)
	ptrs := make([]unsafe.Pointer, n)
	for i := range n {
		backing[i] = i
		ptrs[i] = unsafe.Pointer(&backing[i])
	}
	return ptrs
}

func TestPushPop(t *testing.T) {
	r := ring.New(3)
	if r.Cap() != 4 {
		t.Fatalf("Cap: got %d, want 4", r.Cap())
	}

	vs := words(5)
	for i := range 4 {
		if err := r.Push(vs[i]); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}
	if err := r.Push(vs[4]); !errors.Is(err, ring.ErrWouldBlock) {
		t.Fatalf("Push on full: got %v, want ErrWouldBlock", err)
	}

	for i := range 4 {
		p, err := r.Pop()
		if err != nil {
			t.Fatalf("Pop(%d): %v", i, err)
		}
		if p != vs[i] {
			t.Fatalf("Pop(%d): wrong element", i)
		}
	}
	if _, err := r.Pop(); !errors.Is(err, ring.ErrWouldBlock) {
		t.Fatalf("Pop on empty: got %v, want ErrWouldBlock", err)
	}
}

// TestWraparound drives the indexes far past the capacity so the mask
// arithmetic wraps many times.
func TestWraparound(t *testing.T) {
	r := ring.New(4)
	vs := words(3)

	for round := range 1000 {
		for i := range 3 {
			if err := r.Push(vs[i]); err != nil {
				t.Fatalf("round %d Push(%d): %v", round, i, err)
			}
		}
		for i := range 3 {
			p, err := r.Pop()
			if err != nil {
				t.Fatalf("round %d Pop(%d): %v", round, i, err)
			}
			if p != vs[i] {
				t.Fatalf("round %d Pop(%d): wrong element", round, i)
			}
		}
	}
	if !r.Empty() {
		t.Fatal("ring not empty after balanced rounds")
	}
}

func TestEmptyAvailable(t *testing.T) {
	r := ring.New(2)
	vs := words(2)

	if !r.Empty() || !r.Available() {
		t.Fatal("fresh ring: want empty and available")
	}
	_ = r.Push(vs[0])
	if r.Empty() {
		t.Fatal("Empty after push: got true")
	}
	_ = r.Push(vs[1])
	if r.Available() {
		t.Fatal("Available on full: got true")
	}
	_, _ = r.Pop()
	if !r.Available() {
		t.Fatal("Available after pop: got false")
	}
}

func TestMultiPush(t *testing.T) {
	r := ring.New(8)
	vs := words(8)

	if err := r.MultiPush(vs[:5]); err != nil {
		t.Fatalf("MultiPush(5): %v", err)
	}
	if got := r.Len(); got != 5 {
		t.Fatalf("Len: got %d, want 5", got)
	}

	// 3 free slots: a batch of 4 must be rejected whole.
	if err := r.MultiPush(vs[:4]); !errors.Is(err, ring.ErrWouldBlock) {
		t.Fatalf("MultiPush over capacity: got %v, want ErrWouldBlock", err)
	}
	if got := r.Len(); got != 5 {
		t.Fatalf("Len after rejected batch: got %d, want 5", got)
	}

	if err := r.MultiPush(vs[5:8]); err != nil {
		t.Fatalf("MultiPush(3): %v", err)
	}
	for i := range 8 {
		p, err := r.Pop()
		if err != nil {
			t.Fatalf("Pop(%d): %v", i, err)
		}
		if p != vs[i] {
			t.Fatalf("Pop(%d): wrong element", i)
		}
	}

	if err := r.MultiPush(nil); err != nil {
		t.Fatalf("MultiPush(empty): %v", err)
	}
}

func TestAvailableN(t *testing.T) {
	r := ring.New(8)
	vs := words(6)

	if !r.AvailableN(8) {
		t.Fatal("AvailableN(8) on fresh ring: got false")
	}
	_ = r.MultiPush(vs[:6])
	if r.AvailableN(3) {
		t.Fatal("AvailableN(3) with 2 free: got true")
	}
	if !r.AvailableN(2) {
		t.Fatal("AvailableN(2) with 2 free: got false")
	}
}

func TestReset(t *testing.T) {
	r := ring.New(4)
	vs := words(4)

	_ = r.MultiPush(vs)
	_, _ = r.Pop()
	r.Reset()

	if !r.Empty() {
		t.Fatal("Empty after Reset: got false")
	}
	if got := r.Len(); got != 0 {
		t.Fatalf("Len after Reset: got %d, want 0", got)
	}
	// A reset ring behaves like a fresh one.
	for i := range 4 {
		if err := r.Push(vs[i]); err != nil {
			t.Fatalf("Push(%d) after Reset: %v", i, err)
		}
	}
	for i := range 4 {
		p, err := r.Pop()
		if err != nil {
			t.Fatalf("Pop(%d) after Reset: %v", i, err)
		}
		if p != vs[i] {
			t.Fatalf("Pop(%d) after Reset: wrong element", i)
		}
	}
}

func TestNewPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("New(1): expected panic")
		}
	}()
	ring.New(1)
}
