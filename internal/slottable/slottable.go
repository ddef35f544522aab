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

// Package slottable is the fd-indexed connection arena, the Go stand-in
// for the preallocated HTTPConn users[MAX_FD] array in
// original_source/inc/http_conn.h. Rather than a raw mutable-object array
// indexed unsafely by fd, each slot is option-typed: either empty or
// holding exactly one live *httpconn.Conn, and acquisition/release is the
// only way to transition between the two.
package slottable

import (
	"sync"
	"sync/atomic"

	"github.com/a18361351/webserver/internal/httpconn"
	"github.com/a18361351/webserver/internal/werrors"
)

type slot struct {
	mu   sync.Mutex
	conn *httpconn.Conn
}

// Table is a fixed-capacity table of connection slots. The caller picks
// the slot index passed to Acquire; every caller in this module uses the
// fd itself, so an fd at or beyond Capacity cannot be acquired. Capacity
// is fixed at construction, mirroring MAX_FD's compile-time constant in
// the original.
type Table struct {
	slots []slot
	count atomic.Int32
}

// New builds a Table with room for capacity simultaneous connections,
// matching MaxConnections in internal/config.
func New(capacity int) *Table {
	if capacity <= 0 {
		capacity = 1
	}
	return &Table{slots: make([]slot, capacity)}
}

// Capacity is the fixed number of slots, the Go equivalent of MAX_FD.
func (t *Table) Capacity() int {
	return len(t.slots)
}

// Count is the number of currently occupied slots, the running
// replacement for the original's global user_count admission counter.
func (t *Table) Count() int32 {
	return t.count.Load()
}

// Acquire claims slot index idx for fd, initializing a *httpconn.Conn in
// it. It returns werrors.Overloaded if idx is out of range or already
// occupied — the table itself refuses to hand out a second tenant for a
// slot still in use, closing the gap the original leaves open by trusting
// its caller never to double-assign an fd.
func (t *Table) Acquire(idx, fd int, peerAddr string, owningReactor int) (*httpconn.Conn, error) {
	if idx < 0 || idx >= len(t.slots) {
		return nil, werrors.New(werrors.Overloaded, nil)
	}
	s := &t.slots[idx]
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return nil, werrors.New(werrors.Overloaded, nil)
	}
	c := &httpconn.Conn{}
	c.Init(fd, peerAddr, owningReactor)
	s.conn = c
	t.count.Add(1)
	return c, nil
}

// Lookup returns the slot's current occupant, or nil if the slot is free.
func (t *Table) Lookup(idx int) *httpconn.Conn {
	if idx < 0 || idx >= len(t.slots) {
		return nil
	}
	s := &t.slots[idx]
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// Release closes and evicts the occupant of slot idx, a no-op if the slot
// is already empty. Safe to call more than once for the same idx.
func (t *Table) Release(idx int) {
	if idx < 0 || idx >= len(t.slots) {
		return
	}
	s := &t.slots[idx]
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return
	}
	s.conn.Close()
	s.conn = nil
	t.count.Add(-1)
}
