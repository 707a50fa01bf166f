// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"unsafe"

	"code.hybscloud.com/ubq"
)

// chanQueue adapts a buffered channel to the queue interface so the
// bench has a standard-runtime baseline to compare against.
type chanQueue struct {
	ch chan unsafe.Pointer
}

func newChanQueue(capacity int) *chanQueue {
	return &chanQueue{ch: make(chan unsafe.Pointer, capacity)}
}

func (q *chanQueue) Enqueue(elem unsafe.Pointer) error {
	if elem == nil {
		return ubq.ErrNilElem
	}
	select {
	case q.ch <- elem:
		return nil
	default:
		return ubq.ErrWouldBlock
	}
}

func (q *chanQueue) Dequeue() (unsafe.Pointer, error) {
	select {
	case elem := <-q.ch:
		return elem, nil
	default:
		return nil, ubq.ErrWouldBlock
	}
}

func (q *chanQueue) Cap() int {
	return cap(q.ch)
}
