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

//go:build linux

// Package reactor is a single worker reactor: an event loop owning a
// disjoint subset of connection slots, generalized from the per-fd
// dispatch block in original_source/src/server.cpp's epoll_wait loop
// (the EPOLLRDHUP/EPOLLERR/EPOLLIN/EPOLLOUT branches), minus the
// listener-acceptance branch, which internal/acceptor owns instead.
//
// A Reactor never calls Conn.Process itself — readable fds that finish a
// full request are handed to the work queue (Enqueue) and the reactor
// moves on; it only re-arms writable interest once Process has built a
// response elsewhere. This is the two-phase ownership handoff spec.md §5
// requires: the one-shot flag on the connection's epoll registration is
// what makes it safe.
package reactor

import (
	"golang.org/x/sys/unix"

	"github.com/a18361351/webserver/internal/epoll"
	"github.com/a18361351/webserver/internal/httpconn"
	"github.com/a18361351/webserver/internal/metrics"
	"github.com/a18361351/webserver/internal/slottable"
	"github.com/a18361351/webserver/internal/wlog"
	"github.com/a18361351/webserver/internal/workqueue"
)

const maxEvents = 1024

// Reactor owns one epoll instance and a disjoint subset of connection
// slots (enforced by construction: internal/acceptor only ever assigns a
// given slot index to one Reactor for the slot's entire lifetime).
type Reactor struct {
	ID      int
	notify  *epoll.Notifier
	slots   *slottable.Table
	queue   workqueue.Queue
	metrics *metrics.Registry
	log     wlog.Logger
}

// New builds a worker reactor with its own epoll instance.
func New(id int, slots *slottable.Table, queue workqueue.Queue, reg *metrics.Registry, log wlog.Logger) (*Reactor, error) {
	n, err := epoll.New()
	if err != nil {
		return nil, err
	}
	return &Reactor{ID: id, notify: n, slots: slots, queue: queue, metrics: reg, log: log}, nil
}

// Close releases the reactor's epoll instance.
func (r *Reactor) Close() error {
	return r.notify.Close()
}

// Adopt registers a freshly accepted connection slot with this reactor
// for read readiness, the handoff point from internal/acceptor's round-
// robin assignment. slotIndex must equal fd: the slot table is indexed
// directly by fd, mirroring the original's users[MAX_FD] array, so that
// an epoll event's raw fd is itself the slot index dispatch needs.
func (r *Reactor) Adopt(slotIndex, fd int) error {
	return r.notify.RegisterOneShot(fd, epoll.Readable)
}

// Run drives the event loop until stop is closed.
func (r *Reactor) Run(stop <-chan struct{}) {
	buf := make([]unix.EpollEvent, maxEvents)
	for {
		select {
		case <-stop:
			return
		default:
		}

		events, err := r.notify.Wait(buf, 1000)
		if err != nil {
			r.log.WithField("reactor", r.ID).WithField("error", err).Error("epoll wait failed")
			return
		}
		for _, ev := range events {
			r.dispatch(ev)
		}
	}
}

func (r *Reactor) dispatch(ev epoll.Event) {
	slotIndex := int(ev.Fd)
	conn := r.slots.Lookup(slotIndex)
	if conn == nil {
		return
	}

	switch {
	case ev.Mask&(unix.EPOLLRDHUP|unix.EPOLLHUP) != 0:
		r.closeSlot(slotIndex, conn)
	case ev.Mask&unix.EPOLLERR != 0:
		r.closeSlot(slotIndex, conn)
	case ev.Mask&unix.EPOLLIN != 0:
		r.handleReadable(slotIndex, conn)
	case ev.Mask&unix.EPOLLOUT != 0:
		r.handleWritable(slotIndex, conn)
	}
}

func (r *Reactor) handleReadable(slotIndex int, conn *httpconn.Conn) {
	switch conn.ReadNonblock() {
	case httpconn.NeedMore:
		_ = r.notify.Modify(conn.Fd, epoll.Readable)
	case httpconn.Enqueue:
		if !r.queue.Push(workqueue.Job{SlotIndex: slotIndex}) {
			// Work queue full: synthesize 503 inline and arm write
			// interest, per spec.md §4.6's fallback on append failure.
			r.metrics.QueueRejected()
			conn.RespondOverloaded()
			_ = r.notify.Modify(conn.Fd, epoll.Writable)
		}
	case httpconn.WriteReady:
		_ = r.notify.Modify(conn.Fd, epoll.Writable)
	case httpconn.Close:
		r.closeSlot(slotIndex, conn)
	}
}

func (r *Reactor) handleWritable(slotIndex int, conn *httpconn.Conn) {
	switch conn.WriteNonblock() {
	case httpconn.WriteReady:
		_ = r.notify.Modify(conn.Fd, epoll.Writable)
	case httpconn.Done:
		r.metrics.RequestServed(conn.Status())
		if conn.KeepAlive {
			conn.Reset()
			_ = r.notify.Modify(conn.Fd, epoll.Readable)
		} else {
			// Half-close the write side; the slot is closed once the peer
			// hangs up (EPOLLRDHUP on the re-armed registration).
			_ = unix.Shutdown(conn.Fd, unix.SHUT_WR)
			_ = r.notify.Modify(conn.Fd, epoll.Readable)
		}
	case httpconn.Close:
		r.closeSlot(slotIndex, conn)
	}
}

func (r *Reactor) closeSlot(slotIndex int, conn *httpconn.Conn) {
	_ = r.notify.Unregister(conn.Fd)
	_ = unix.Close(conn.Fd)
	r.slots.Release(slotIndex)
	r.metrics.ConnectionClosed()
}
