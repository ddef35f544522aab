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

// Package httpconn is the per-slot connection state: fixed read/write
// buffers, parser cursors, the resolved file mapping, and the read/
// process/write lifecycle methods. Ported from the HTTPConn class in
// original_source/inc/http_conn.h + src/http_conn.cpp: init(), read(),
// process_read(), do_request(), write(), process(), unmap().
//
// Exactly one goroutine touches a given Conn at a time: the owning worker
// reactor calls ReadNonblock/WriteNonblock, and exactly one worker-pool
// goroutine calls Process between a ReadNonblock that returned Enqueue and
// the re-arm that follows — the one-shot handoff spec.md §5 describes.
// Nothing in this package enforces that by itself; it is upheld by
// construction in internal/reactor and internal/workqueue.
package httpconn

import (
	"errors"

	"golang.org/x/sys/unix"

	"github.com/a18361351/webserver/internal/parser"
	"github.com/a18361351/webserver/internal/resolver"
	"github.com/a18361351/webserver/internal/response"
	"github.com/a18361351/webserver/internal/werrors"
)

// readBufSize mirrors READ_BUFFER_SIZE in original_source/inc/http_conn.h.
const readBufSize = 2048

// Action tells the calling reactor what to do with the fd next.
type Action int

const (
	// NeedMore means re-arm read interest; no full request yet.
	NeedMore Action = iota
	// Enqueue means a full request was parsed; hand the connection to the
	// worker pool (spec.md §4.6's read-then-enqueue path).
	Enqueue
	// WriteReady means a response is built; re-arm write interest.
	WriteReady
	// Done means all response bytes were flushed: reset for keep-alive or
	// half-close, per KeepAlive.
	Done
	// Close means close the fd unconditionally (read/write error, peer
	// close, or an unrecoverable parse failure).
	Close
)

// Conn is one fd-indexed connection slot (spec.md §3).
type Conn struct {
	Fd            int
	PeerAddr      string
	OwningReactor int

	readBuf [readBufSize]byte
	readEnd int
	cur     parser.Cursors
	state   parser.State
	req     parser.Request

	mapping *resolver.Mapping
	resp    *response.Response
	sent    int

	KeepAlive bool
}

// Init activates a freshly accepted slot, the Go equivalent of the
// original's full init() buffer reset — every field is zeroed so no state
// leaks between a free slot and its next tenant at the same fd index.
func (c *Conn) Init(fd int, peerAddr string, owningReactor int) {
	*c = Conn{Fd: fd, PeerAddr: peerAddr, OwningReactor: owningReactor}
}

// Reset clears parser/response state for a keep-alive connection while
// preserving Fd/PeerAddr/OwningReactor, mirroring the original's reset
// path on successful keep-alive write.
func (c *Conn) Reset() {
	c.releaseMapping()
	c.readEnd = 0
	c.cur = parser.Cursors{}
	c.state = parser.State(0)
	c.req.Reset()
	c.resp = nil
	c.sent = 0
	c.KeepAlive = false
}

func (c *Conn) releaseMapping() {
	if c.mapping != nil {
		_ = c.mapping.Release()
		c.mapping = nil
	}
}

// Close releases any held file mapping before the fd itself is closed by
// the caller, satisfying spec.md §8's exactly-once-munmap invariant on
// every exit path, including one discovered mid-response.
func (c *Conn) Close() {
	c.releaseMapping()
}

// ReadNonblock drains the socket until EAGAIN (the edge-triggered
// discipline spec.md §4.1 requires), then drives the parser over whatever
// arrived. It never blocks: a socket registered edge-triggered one-shot
// must never be read in a blocking loop, since exactly one readable event
// is ever delivered per arm.
func (c *Conn) ReadNonblock() Action {
	for {
		if c.readEnd >= len(c.readBuf) {
			return Close
		}
		n, err := unix.Read(c.Fd, c.readBuf[c.readEnd:])
		if err != nil {
			if errors.Is(err, unix.EAGAIN) {
				break
			}
			return Close
		}
		if n == 0 {
			return Close
		}
		c.readEnd += n
	}

	outcome, err := parser.Drive(c.readBuf[:], c.readEnd, &c.cur, &c.state, &c.req)
	if err != nil {
		c.buildErrorResponse(werrors.StatusOf(err), false)
		return WriteReady
	}
	if outcome == parser.Incomplete {
		return NeedMore
	}
	return Enqueue
}

// Process resolves the parsed request and builds a response. It is the
// method the worker pool calls (process() in the original): the sole
// CPU-bound step, decoupled from the reactor by the work queue.
func (c *Conn) Process(res *resolver.Resolver) Action {
	result, err := res.Resolve(c.req.Target)
	if err != nil {
		c.buildErrorResponse(werrors.StatusOf(err), c.req.KeepAlive)
		return WriteReady
	}
	c.mapping = result.Mapping

	resp, err := response.BuildFile(result.Mapping.Bytes(), c.req.KeepAlive)
	if err != nil {
		c.releaseMapping()
		c.buildErrorResponse(500, false)
		return WriteReady
	}
	c.resp = resp
	c.KeepAlive = resp.KeepAlive
	return WriteReady
}

// RespondOverloaded synthesizes the 503 response the reactor arms write
// interest for when the work queue rejects an Enqueue (spec.md §4.6's
// append-failure fallback), bypassing Process entirely since there is no
// parsed request to resolve against in this path.
func (c *Conn) RespondOverloaded() {
	c.buildErrorResponse(503, false)
}

func (c *Conn) buildErrorResponse(status int, keepAlive bool) {
	resp, err := response.BuildError(status, keepAlive)
	if err != nil {
		// The canned body itself overflowed the write buffer: fall back to
		// the canned 500 with the connection closing, matching the
		// original's escalation of a response-build failure to a closed
		// connection rather than a corrupt reply.
		resp, _ = response.BuildError(500, false)
	}
	c.resp = resp
	c.KeepAlive = resp.KeepAlive
}

// Status returns the HTTP status code of the built response, for metrics
// and logging. Only meaningful after Process/RespondOverloaded has run.
func (c *Conn) Status() int {
	if c.resp == nil {
		return 0
	}
	return c.resp.Status
}

// WriteNonblock performs the scatter-gather write loop (writev) over the
// built response. Returns WriteReady if a partial write leaves bytes
// pending (re-arm writable and wait for the next edge), Done once every
// byte is flushed, or Close on a write error.
func (c *Conn) WriteNonblock() Action {
	if c.resp == nil {
		return Close
	}
	segs := c.resp.IOVecs()
	total := c.resp.BytesToSend()

	for c.sent < total {
		iovs := remainingIovecs(segs, c.sent)
		if len(iovs) == 0 {
			break
		}
		n, err := writev(c.Fd, iovs)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) {
				return WriteReady
			}
			return Close
		}
		if n == 0 {
			return Close
		}
		c.sent += n
	}

	return Done
}

// remainingIovecs builds the slice of not-yet-sent byte ranges across the
// response's segments, given how many bytes have already been flushed
// cumulatively.
func remainingIovecs(segs [][]byte, sent int) [][]byte {
	var out [][]byte
	skip := sent
	for _, seg := range segs {
		if skip >= len(seg) {
			skip -= len(seg)
			continue
		}
		out = append(out, seg[skip:])
		skip = 0
	}
	return out
}

func writev(fd int, bufs [][]byte) (int, error) {
	iovs := make([]unix.Iovec, 0, len(bufs))
	for _, b := range bufs {
		if len(b) == 0 {
			continue
		}
		iov := unix.Iovec{Base: &b[0]}
		iov.SetLen(len(b))
		iovs = append(iovs, iov)
	}
	if len(iovs) == 0 {
		return 0, nil
	}
	n, err := unix.Writev(fd, iovs)
	return int(n), err
}
