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

// Package acceptor is the listening-socket reactor: accept-loop,
// MAX_FD/user_count admission control, round-robin worker-reactor
// assignment, and the self-pipe signal funnel. Grounded on
// original_source/src/server.cpp's main() listener setup and its
// epoll_wait dispatch's listenfd branch, plus addsig()/show_error().
package acceptor

import (
	"errors"
	"net"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/a18361351/webserver/internal/epoll"
	"github.com/a18361351/webserver/internal/metrics"
	"github.com/a18361351/webserver/internal/reactor"
	"github.com/a18361351/webserver/internal/slottable"
	"github.com/a18361351/webserver/internal/wlog"
)

const maxEvents = 64

// busyMessage is show_error()'s literal text in server.cpp, sent verbatim
// before closing a connection rejected purely on admission grounds
// (distinct from the work-queue-full 503 case, which is a real HTTP
// response built by internal/httpconn).
const busyMessage = "Internal server busy"

// Acceptor owns the listening socket, its own epoll instance, and the
// self-pipe signal funnel, and fans accepted connections out across a
// fixed set of worker reactors by round robin.
type Acceptor struct {
	listenFd int
	notify   *epoll.Notifier
	slots    *slottable.Table
	reactors []*reactor.Reactor
	next     int
	metrics  *metrics.Registry
	log      wlog.Logger
	sigRead  int
	sigWrite int
	signalCh chan os.Signal
}

// New binds and listens on intf:port (SO_LINGER/SO_REUSEADDR set exactly
// as server.cpp does), builds the self-pipe signal funnel, and registers
// both the listener and the funnel's read end as level-triggered readable
// fds on a fresh epoll instance.
func New(intf string, port int, slots *slottable.Table, reactors []*reactor.Reactor, reg *metrics.Registry, log wlog.Logger) (*Acceptor, error) {
	listenFd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, err
	}
	if err := unix.SetsockoptLinger(listenFd, unix.SOL_SOCKET, unix.SO_LINGER, &unix.Linger{Onoff: 1, Linger: 0}); err != nil {
		unix.Close(listenFd)
		return nil, err
	}
	if err := unix.SetsockoptInt(listenFd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(listenFd)
		return nil, err
	}

	addr, err := sockaddrFor(intf, port)
	if err != nil {
		unix.Close(listenFd)
		return nil, err
	}
	if err := unix.Bind(listenFd, addr); err != nil {
		unix.Close(listenFd)
		return nil, err
	}
	if err := unix.Listen(listenFd, 100); err != nil {
		unix.Close(listenFd)
		return nil, err
	}
	if err := unix.SetNonblock(listenFd, true); err != nil {
		unix.Close(listenFd)
		return nil, err
	}

	notify, err := epoll.New()
	if err != nil {
		unix.Close(listenFd)
		return nil, err
	}
	if err := notify.RegisterPersistent(listenFd, epoll.Readable); err != nil {
		unix.Close(listenFd)
		notify.Close()
		return nil, err
	}

	sigFds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		unix.Close(listenFd)
		notify.Close()
		return nil, err
	}
	if err := unix.SetNonblock(sigFds[0], true); err != nil {
		unix.Close(listenFd)
		unix.Close(sigFds[0])
		unix.Close(sigFds[1])
		notify.Close()
		return nil, err
	}
	if err := notify.RegisterPersistent(sigFds[0], epoll.Readable); err != nil {
		unix.Close(listenFd)
		unix.Close(sigFds[0])
		unix.Close(sigFds[1])
		notify.Close()
		return nil, err
	}

	a := &Acceptor{
		listenFd: listenFd,
		notify:   notify,
		slots:    slots,
		reactors: reactors,
		metrics:  reg,
		log:      log,
		sigRead:  sigFds[0],
		sigWrite: sigFds[1],
		signalCh: make(chan os.Signal, 8),
	}

	// SIGPIPE is ignored process-wide by the caller (cmd/webserverd, via
	// signal.Ignore) before this funnel is built, the Go equivalent of
	// addsig(SIGPIPE, SIG_IGN) in server.cpp — it never reaches this
	// channel. Only the two shutdown signals are funneled through.
	signal.Notify(a.signalCh, syscall.SIGINT, syscall.SIGTERM)
	go a.pumpSignals()

	return a, nil
}

// pumpSignals is the goroutine side of the self-pipe funnel: the
// asynchronous os/signal delivery is translated into a single byte
// written to the funnel, so the acceptor's synchronous epoll loop is the
// only place signal-triggered shutdown logic runs.
func (a *Acceptor) pumpSignals() {
	for sig := range a.signalCh {
		var code byte
		switch sig {
		case syscall.SIGINT, syscall.SIGTERM:
			code = 1
		default:
			continue // SIGPIPE: ignored, never forwarded through the funnel.
		}
		if _, err := unix.Write(a.sigWrite, []byte{code}); err != nil {
			return
		}
	}
}

// Close releases the acceptor's own fds; worker reactors are closed
// separately by their owners.
func (a *Acceptor) Close() {
	signal.Stop(a.signalCh)
	close(a.signalCh)
	_ = unix.Close(a.sigRead)
	_ = unix.Close(a.sigWrite)
	_ = a.notify.Close()
	_ = unix.Close(a.listenFd)
}

// Run drives the acceptor's event loop until a shutdown signal arrives on
// the funnel or stop is closed.
func (a *Acceptor) Run(stop <-chan struct{}) {
	buf := make([]unix.EpollEvent, maxEvents)
	for {
		select {
		case <-stop:
			return
		default:
		}

		events, err := a.notify.Wait(buf, 1000)
		if err != nil {
			a.log.WithField("error", err).Error("acceptor epoll wait failed")
			return
		}
		for _, ev := range events {
			switch int(ev.Fd) {
			case a.listenFd:
				a.acceptLoop()
			case a.sigRead:
				if a.drainShutdownSignal() {
					return
				}
			}
		}
	}
}

// drainShutdownSignal reads pending bytes off the funnel, returning true
// if a shutdown code (SIGINT/SIGTERM) was observed.
func (a *Acceptor) drainShutdownSignal() bool {
	buf := make([]byte, 64)
	shutdown := false
	for {
		n, err := unix.Read(a.sigRead, buf)
		if err != nil {
			break
		}
		if n == 0 {
			break
		}
		for _, b := range buf[:n] {
			if b == 1 {
				shutdown = true
			}
		}
	}
	return shutdown
}

// acceptLoop drains the listener with accept() until EAGAIN, per the
// edge-triggered/non-blocking discipline server.cpp's inner while(true)
// follows (the listener itself is level-triggered here since it's a
// perpetually-interesting fd, but the accept-until-EAGAIN drain is kept
// identical either way).
func (a *Acceptor) acceptLoop() {
	for {
		connFd, _, err := unix.Accept(a.listenFd)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) {
				return
			}
			continue
		}

		if int(a.slots.Count()) >= a.slots.Capacity() {
			a.metrics.QueueRejected()
			_, _ = unix.Write(connFd, []byte(busyMessage))
			_ = unix.Close(connFd)
			continue
		}
		if err := unix.SetNonblock(connFd, true); err != nil {
			_ = unix.Close(connFd)
			continue
		}

		r := a.reactors[a.next%len(a.reactors)]
		a.next++

		if _, err := a.slots.Acquire(connFd, connFd, "", r.ID); err != nil {
			_, _ = unix.Write(connFd, []byte(busyMessage))
			_ = unix.Close(connFd)
			continue
		}
		if err := r.Adopt(connFd, connFd); err != nil {
			a.slots.Release(connFd)
			_ = unix.Close(connFd)
			continue
		}
		a.metrics.ConnectionOpened()
	}
}

func sockaddrFor(intf string, port int) (unix.Sockaddr, error) {
	ip := net.ParseIP(intf)
	if ip == nil {
		return nil, errors.New("acceptor: invalid listen interface address: " + intf)
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return nil, errors.New("acceptor: only IPv4 listen addresses are supported: " + intf)
	}
	var addr [4]byte
	copy(addr[:], ip4)
	return &unix.SockaddrInet4{Port: port, Addr: addr}, nil
}
