// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package testbench runs timed throughput measurements over the queue
// variants. It is shared by the bench command and the integrity tests.
package testbench

import (
	"context"
	"runtime"
	"sync"
	"time"
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"

	"code.hybscloud.com/ubq"
	"code.hybscloud.com/ubq/internal/affinity"
)

// Config describes one measurement: how many producers and consumers,
// and whether to pin each endpoint goroutine to its own CPU.
type Config struct {
	NumProducers int
	NumConsumers int
	PinCPUs      bool
}

// Result is the outcome of one timed run.
type Result struct {
	Produced int64
	Consumed int64
	Elapsed  time.Duration
}

// payload is the word every producer enqueues. The queue transports
// opaque references; throughput measurement does not need distinct
// ones.
var payload int64

// RunTimed spawns producers and consumers that run for the given
// duration, then stops the producers, flushes any batching producer,
// and lets the consumers drain the queue completely. Once the run
// finishes, Produced == Consumed.
func RunTimed(q ubq.Queue, cfg Config, duration time.Duration) Result {
	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	var produced, consumed atomix.Int64
	var stop, prodDone atomix.Int64

	start := time.Now()

	go func() {
		<-ctx.Done()
		stop.Store(1)
	}()

	var prodWg sync.WaitGroup
	for i := range cfg.NumProducers {
		prodWg.Add(1)
		go func(id int) {
			defer prodWg.Done()
			if cfg.PinCPUs {
				runtime.LockOSThread()
				_ = affinity.Pin(id % runtime.NumCPU())
			}
			backoff := iox.Backoff{}
			for stop.Load() == 0 {
				if err := q.Enqueue(unsafe.Pointer(&payload)); err != nil {
					backoff.Wait() // fixed-size backpressure
					continue
				}
				backoff.Reset()
				produced.Add(1)
			}
		}(i)
	}

	var consWg sync.WaitGroup
	for i := range cfg.NumConsumers {
		consWg.Add(1)
		go func(id int) {
			defer consWg.Done()
			if cfg.PinCPUs {
				runtime.LockOSThread()
				_ = affinity.Pin((cfg.NumProducers + id) % runtime.NumCPU())
			}
			for {
				if _, err := q.Dequeue(); err == nil {
					consumed.Add(1)
					continue
				}
				// prodDone is raised only after every producer has
				// returned and partial batches were flushed, so an
				// empty queue observed after it is final.
				if prodDone.Load() == 1 {
					for {
						if _, err := q.Dequeue(); err != nil {
							return
						}
						consumed.Add(1)
					}
				}
				runtime.Gosched()
			}
		}(i)
	}

	<-ctx.Done()
	prodWg.Wait()
	if f, ok := q.(ubq.Flusher); ok {
		_ = f.Flush()
	}
	prodDone.Store(1)
	consWg.Wait()

	return Result{
		Produced: produced.Load(),
		Consumed: consumed.Load(),
		Elapsed:  time.Since(start),
	}
}
