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
	"sync"

	"golang.org/x/sync/semaphore"
)

// mutexQueue is the Go rendition of thread_pool.h's mutex+condvar-backed
// shared FIFO, with the condvar replaced by a counting semaphore (the
// Go idiom the rest of this module's stack reaches for; see DESIGN.md).
type mutexQueue struct {
	mu   sync.Mutex
	jobs []Job
	max  int
	// avail is released once per enqueued job and acquired once per
	// dequeue, giving a worker a blocking wait with ctx cancellation
	// instead of a busy poll.
	avail *semaphore.Weighted
}

// NewMutexQueue builds a shared-FIFO queue with room for max pending
// jobs — REDESIGN FLAG fixed: full is size >= max, never size > max,
// which in the original let exactly one too many jobs through.
func NewMutexQueue(max int) Queue {
	if max <= 0 {
		max = 1
	}
	// Weighted starts with every token free; holding them all makes it a
	// counting semaphore at zero, so Run blocks until the first Push.
	avail := semaphore.NewWeighted(int64(max))
	_ = avail.TryAcquire(int64(max))
	return &mutexQueue{
		max:   max,
		avail: avail,
	}
}

func (q *mutexQueue) Push(job Job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) >= q.max {
		return false
	}
	q.jobs = append(q.jobs, job)
	q.avail.Release(1)
	return true
}

func (q *mutexQueue) pop() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return Job{}, false
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return job, true
}

// Run is worker.run() from the original: acquire the availability token,
// pop, dispatch, repeat until ctx is done.
func (q *mutexQueue) Run(ctx context.Context, handle func(Job)) {
	for {
		if err := q.avail.Acquire(ctx, 1); err != nil {
			return
		}
		job, ok := q.pop()
		if !ok {
			// Spurious: a Push/pop race already drained it elsewhere.
			continue
		}
		handle(job)
	}
}
