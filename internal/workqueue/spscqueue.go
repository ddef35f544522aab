/*
 * MIT License
 *
 * Copyright (c) 2026 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package workqueue

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// spscRing is a single-producer/single-consumer ring buffer, a direct
// port of LockFreeQueue_SPSC<T> in original_source/inc/lockfree.h: one
// slot is always kept empty so writer_ptr==reader_ptr unambiguously means
// empty, and (writer_ptr+1)%len==reader_ptr means full. The C++ template
// uses acquire/release fences on the two index atomics; sync/atomic's
// default operations are sequentially consistent, a safe (if marginally
// more conservative) superset of that ordering — noted in DESIGN.md.
type spscRing struct {
	buf    []Job
	writer atomic.Uint64
	reader atomic.Uint64
	avail  *semaphore.Weighted
}

func newSPSCRing(capacity int) *spscRing {
	if capacity < 2 {
		capacity = 2
	}
	// Start the counting semaphore at zero: every token is held until a
	// push releases one.
	avail := semaphore.NewWeighted(int64(capacity - 1))
	_ = avail.TryAcquire(int64(capacity - 1))
	return &spscRing{
		buf:   make([]Job, capacity),
		avail: avail,
	}
}

func (r *spscRing) push(job Job) bool {
	writer := r.writer.Load()
	next := (writer + 1) % uint64(len(r.buf))
	if next == r.reader.Load() {
		return false
	}
	r.buf[writer] = job
	r.writer.Store(next)
	r.avail.Release(1)
	return true
}

func (r *spscRing) pop() (Job, bool) {
	reader := r.reader.Load()
	if reader == r.writer.Load() {
		return Job{}, false
	}
	job := r.buf[reader]
	next := (reader + 1) % uint64(len(r.buf))
	r.reader.Store(next)
	return job, true
}

// spscRingQueue is an array of N rings, one per worker, with round-robin
// dispatch on Push standing in for the original's per-thread queue
// assignment in thread_pool.h's lock-free variant.
type spscRingQueue struct {
	rings []*spscRing
	next  atomic.Uint64
}

// NewSPSCRingQueue builds workers independent single-producer/single-
// consumer rings, each able to hold perRingCapacity-1 jobs (the SPSC
// design always reserves one slot), and returns the Queue.
func NewSPSCRingQueue(workers, perRingCapacity int) Queue {
	if workers <= 0 {
		workers = 1
	}
	rings := make([]*spscRing, workers)
	for i := range rings {
		rings[i] = newSPSCRing(perRingCapacity)
	}
	return &spscRingQueue{rings: rings}
}

func (q *spscRingQueue) Push(job Job) bool {
	idx := q.next.Add(1) - 1
	ring := q.rings[idx%uint64(len(q.rings))]
	return ring.push(job)
}

// Run drives ring 0 only. Jobs pushed to the other rings are picked up
// only by RunRing goroutines started for their indices in
// [0, RingCount()).
func (q *spscRingQueue) Run(ctx context.Context, handle func(Job)) {
	q.RunRing(ctx, 0, handle)
}

// RunRing drives the ring at index ringIdx exclusively; use this instead
// of Run when wiring one worker goroutine per ring explicitly.
func (q *spscRingQueue) RunRing(ctx context.Context, ringIdx int, handle func(Job)) {
	ring := q.rings[ringIdx%len(q.rings)]
	for {
		if err := ring.avail.Acquire(ctx, 1); err != nil {
			return
		}
		job, ok := ring.pop()
		if !ok {
			continue
		}
		handle(job)
	}
}

// RingCount reports how many independent rings back this queue, so
// callers know how many Run/RunRing goroutines to start.
func (q *spscRingQueue) RingCount() int {
	return len(q.rings)
}
