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

// Package epoll is the readiness layer adapter: a thin wrapper over Linux
// epoll (golang.org/x/sys/unix) hiding the platform-specific register/
// modify/unregister/wait vocabulary behind the shape spec.md §4.1 asks for.
// Grounded on the addfd/removefd/modfd trio in
// original_source/src/http_conn.cpp and server.cpp, and on the syscall
// sequencing of the raw-epoll Go reference server in other_examples/.
package epoll

import (
	"golang.org/x/sys/unix"
)

// Interest bundles the event mask flags a caller asks for; ET/OneShot are
// applied by RegisterOneShot/Modify for connection fds per spec.md §4.1, never by
// the caller directly, so the one-shot discipline can't be bypassed by a
// call site forgetting a flag.
type Interest uint32

const (
	Readable Interest = 1 << iota
	Writable
)

// Event is one readiness notification, carrying the fd and raw mask so
// callers can check RDHUP/ERR/HUP themselves (spec.md §4.6 dispatches on
// those explicitly, ahead of plain readable/writable).
type Event struct {
	Fd   int32
	Mask uint32
}

// Notifier owns one epoll instance. Each worker reactor and the acceptor
// reactor own exactly one; spec.md's multi-reactor fabric is realized as
// one Notifier per goroutine, never shared.
type Notifier struct {
	fd int
}

// New creates a fresh epoll instance.
func New() (*Notifier, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &Notifier{fd: fd}, nil
}

// Close releases the underlying epoll fd.
func (n *Notifier) Close() error {
	return unix.Close(n.fd)
}

// RegisterOneShot registers fd edge-triggered, one-shot, with peer-hangup
// interest — the mode every connection fd uses per spec.md §4.1/§4.6.
func (n *Notifier) RegisterOneShot(fd int, in Interest) error {
	return unix.EpollCtl(n.fd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{
		Events: maskOf(in) | unix.EPOLLET | unix.EPOLLONESHOT | unix.EPOLLRDHUP,
		Fd:     int32(fd),
	})
}

// RegisterPersistent registers fd level-triggered without one-shot — used
// only for the listening socket and the signal-funnel read end, both of
// which must remain perpetually ready per spec.md §4.1.
func (n *Notifier) RegisterPersistent(fd int, in Interest) error {
	return unix.EpollCtl(n.fd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{
		Events: maskOf(in),
		Fd:     int32(fd),
	})
}

// Modify re-arms a one-shot fd with a (possibly different) interest set.
// This is the worker-to-reactor handoff-back point described in spec.md
// §5: until Modify is called after a one-shot delivery, no further event
// for that fd can arrive, which is what makes the handoff safe without
// additional locking.
func (n *Notifier) Modify(fd int, in Interest) error {
	return unix.EpollCtl(n.fd, unix.EPOLL_CTL_MOD, fd, &unix.EpollEvent{
		Events: maskOf(in) | unix.EPOLLET | unix.EPOLLONESHOT | unix.EPOLLRDHUP,
		Fd:     int32(fd),
	})
}

// Unregister removes fd from this notifier. Callers must unregister before
// close(fd) per spec.md §8's quantified invariant.
func (n *Notifier) Unregister(fd int) error {
	return unix.EpollCtl(n.fd, unix.EPOLL_CTL_DEL, fd, nil)
}

// Wait blocks until at least one event is ready (or timeoutMs elapses;
// -1 blocks indefinitely) and returns the ready events. Implementations
// calling Wait must themselves drain readable/writable fds until EAGAIN,
// per the edge-triggered contract in spec.md §4.1 — Wait itself does not
// loop on a single fd.
func (n *Notifier) Wait(buf []unix.EpollEvent, timeoutMs int) ([]Event, error) {
	cnt, err := unix.EpollWait(n.fd, buf, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, err
	}
	out := make([]Event, cnt)
	for i := 0; i < cnt; i++ {
		out[i] = Event{Fd: buf[i].Fd, Mask: buf[i].Events}
	}
	return out, nil
}

func maskOf(in Interest) uint32 {
	var m uint32
	if in&Readable != 0 {
		m |= unix.EPOLLIN
	}
	if in&Writable != 0 {
		m |= unix.EPOLLOUT
	}
	return m
}
