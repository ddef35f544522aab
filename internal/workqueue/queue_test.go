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

package workqueue_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/a18361351/webserver/internal/workqueue"
)

func TestMutexQueueRejectsAtCapacity(t *testing.T) {
	q := workqueue.NewMutexQueue(2)
	if !q.Push(workqueue.Job{SlotIndex: 1}) {
		t.Fatalf("expected first push to succeed")
	}
	if !q.Push(workqueue.Job{SlotIndex: 2}) {
		t.Fatalf("expected second push to succeed")
	}
	if q.Push(workqueue.Job{SlotIndex: 3}) {
		t.Errorf("expected third push to be rejected at capacity 2 (size >= max)")
	}
}

func TestMutexQueueRunDeliversJobsInOrder(t *testing.T) {
	q := workqueue.NewMutexQueue(4)
	q.Push(workqueue.Job{SlotIndex: 1})
	q.Push(workqueue.Job{SlotIndex: 2})

	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	var got []int
	done := make(chan struct{})
	go func() {
		q.Run(ctx, func(j workqueue.Job) {
			mu.Lock()
			got = append(got, j.SlotIndex)
			mu.Unlock()
			if len(got) == 2 {
				cancel()
				close(done)
			}
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for jobs to be delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("expected [1 2] in order, got %v", got)
	}
}

func TestSPSCRingQueueRoundRobinsAcrossRings(t *testing.T) {
	q := workqueue.NewSPSCRingQueue(2, 4)
	ra, ok := q.(workqueue.RingAware)
	if !ok {
		t.Fatalf("expected *spscRingQueue to implement RingAware")
	}
	if ra.RingCount() != 2 {
		t.Fatalf("expected 2 rings, got %d", ra.RingCount())
	}

	q.Push(workqueue.Job{SlotIndex: 10})
	q.Push(workqueue.Job{SlotIndex: 11})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var mu sync.Mutex
	got := map[int]bool{}
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			ra.RunRing(ctx, idx, func(j workqueue.Job) {
				mu.Lock()
				got[j.SlotIndex] = true
				mu.Unlock()
				if len(got) == 2 {
					cancel()
				}
			})
		}(i)
	}
	wg.Wait()

	if !got[10] || !got[11] {
		t.Errorf("expected both jobs delivered across rings, got %v", got)
	}
}

func TestSPSCRingQueueFullRingRejectsPush(t *testing.T) {
	q := workqueue.NewSPSCRingQueue(1, 2) // capacity 2 means 1 usable slot
	if !q.Push(workqueue.Job{SlotIndex: 1}) {
		t.Fatalf("expected first push into a fresh ring to succeed")
	}
	if q.Push(workqueue.Job{SlotIndex: 2}) {
		t.Errorf("expected push into a full single-slot ring to be rejected")
	}
}
