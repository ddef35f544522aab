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

package slottable_test

import (
	"testing"

	"github.com/a18361351/webserver/internal/slottable"
	"github.com/a18361351/webserver/internal/werrors"
)

func TestAcquireAndRelease(t *testing.T) {
	tbl := slottable.New(4)
	if tbl.Capacity() != 4 {
		t.Fatalf("expected capacity 4, got %d", tbl.Capacity())
	}

	c, err := tbl.Acquire(0, 9, "127.0.0.1:1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Fd != 9 {
		t.Errorf("expected Fd 9, got %d", c.Fd)
	}
	if tbl.Count() != 1 {
		t.Errorf("expected Count 1, got %d", tbl.Count())
	}

	tbl.Release(0)
	if tbl.Count() != 0 {
		t.Errorf("expected Count 0 after release, got %d", tbl.Count())
	}
	if tbl.Lookup(0) != nil {
		t.Errorf("expected nil occupant after release")
	}
}

func TestAcquireRejectsDoubleOccupancy(t *testing.T) {
	tbl := slottable.New(2)
	if _, err := tbl.Acquire(0, 1, "a", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := tbl.Acquire(0, 2, "b", 0)
	if werrors.StatusOf(err) != 503 {
		t.Errorf("expected Overloaded (503) status, got %v", err)
	}
}

func TestAcquireRejectsOutOfRangeIndex(t *testing.T) {
	tbl := slottable.New(1)
	_, err := tbl.Acquire(5, 1, "a", 0)
	if werrors.StatusOf(err) != 503 {
		t.Errorf("expected Overloaded (503) status for out-of-range slot, got %v", err)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	tbl := slottable.New(1)
	if _, err := tbl.Acquire(0, 1, "a", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tbl.Release(0)
	tbl.Release(0)
	if tbl.Count() != 0 {
		t.Errorf("expected Count 0, got %d", tbl.Count())
	}
}
