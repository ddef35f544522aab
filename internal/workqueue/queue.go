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

// Package workqueue is the bounded handoff between reactors and the
// worker pool, ported from original_source/inc/thread_pool.h's two
// #ifdef-selected backing stores. Both implementations satisfy Queue;
// internal/config's UseLockFreeQueue picks between them at startup the
// way the original's preprocessor switch does at compile time.
//
// Job is a single unit of work: a connection slot index ready for
// internal/httpconn's Process step. The queue only ever moves that index
// around — the Conn itself stays put in internal/slottable.
package workqueue

import "context"

// Job is the unit of work handed from a reactor to a worker: which slot
// table index has a fully parsed request waiting on Process.
type Job struct {
	SlotIndex int
}

// Queue is satisfied by both the shared mutex+semaphore FIFO and the
// per-worker SPSC ring implementation.
type Queue interface {
	// Push enqueues job, returning false if the queue is at capacity
	// (spec.md §9's off-by-one fix: full is size >= max, not size > max).
	Push(job Job) bool
	// Run is the worker loop: it blocks pulling jobs and invoking handle
	// until ctx is cancelled, then returns.
	Run(ctx context.Context, handle func(Job))
}

// RingAware is implemented by queues backed by more than one independent
// worker-side channel (currently only *spscRingQueue), letting
// cmd/webserverd start exactly one worker goroutine per ring instead of
// racing several goroutines over a single Run.
type RingAware interface {
	RingCount() int
	RunRing(ctx context.Context, ringIdx int, handle func(Job))
}
