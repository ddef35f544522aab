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

// Package response builds the status-line/header buffer and scatter-gather
// descriptor set for a reply. Ported from add_response/add_status_line/
// add_headers/add_content_length/add_linger/add_blank_line/process_write
// in original_source/src/http_conn.cpp, including its fixed-capacity
// write buffer and overflow-escalates-to-500 behavior.
package response

import (
	"fmt"

	"github.com/a18361351/webserver/internal/werrors"
)

// writeBufSize mirrors WRITE_BUFFER_SIZE in original_source/inc/http_conn.h.
const writeBufSize = 1024

var reasons = map[int]string{
	200: "OK",
	400: "Bad Request",
	403: "Forbidden",
	404: "Not Found",
	500: "Internal Server Error",
	503: "Service Unavailable",
}

// cannedBodies mirrors the literal HTML bodies in http_conn.cpp for every
// non-file outcome.
var cannedBodies = map[int]string{
	400: "<html><title>Bad Request</title><body>Your request has bad syntax or is inherently impossible to satisfy.</body></html>",
	403: "<html><title>Forbidden</title><body>You do not have permission to get file from this server.</body></html>",
	404: "<html><title>Not Found</title><body>The requested file was not found on this server.</body></html>",
	500: "<html><title>Internal Error</title><body>There was an unusual problem serving the requested file.</body></html>",
	503: "<html><title>Service Unavailable</title><body>The server is temporarily overloaded.</body></html>",
}

// emptyFilePlaceholder is substituted as the body when a resolved file
// has zero length, exactly as spec.md §4.5 and the original require.
const emptyFilePlaceholder = "<html><body></body></html>"

// Response is the built reply: a header buffer plus up to one additional
// scatter-gather segment pointing into a memory-mapped file.
type Response struct {
	Header    []byte
	FileBody  []byte // nil unless this is a 200 FILE_REQUEST response
	KeepAlive bool
	Status    int
}

// IOVecs returns the scatter-gather buffer list spec.md §4.5 describes:
// one element for header-only responses, two when a file body is present.
func (r *Response) IOVecs() [][]byte {
	if r.FileBody != nil {
		return [][]byte{r.Header, r.FileBody}
	}
	return [][]byte{r.Header}
}

// BytesToSend is the total length across all scatter-gather segments.
func (r *Response) BytesToSend() int {
	n := len(r.Header)
	if r.FileBody != nil {
		n += len(r.FileBody)
	}
	return n
}

// builder is the capacity-guarded append primitive (add_response in the
// original): appends beyond writeBufSize return an error that the caller
// escalates to Internal, never a partial/corrupt buffer.
type builder struct {
	buf []byte
}

func (b *builder) appendf(format string, args ...interface{}) error {
	s := fmt.Sprintf(format, args...)
	if len(b.buf)+len(s) >= writeBufSize {
		return werrors.New(werrors.Internal, nil)
	}
	b.buf = append(b.buf, s...)
	return nil
}

// BuildFile builds the 200 OK response carrying a memory-mapped file body
// (or the empty-file placeholder when the mapped file has zero length).
func BuildFile(fileBody []byte, keepAlive bool) (*Response, error) {
	body := fileBody
	if len(body) == 0 {
		body = []byte(emptyFilePlaceholder)
	}
	b := &builder{}
	if err := writeStatusAndHeaders(b, 200, len(body), keepAlive); err != nil {
		return nil, err
	}
	return &Response{Header: b.buf, FileBody: body, KeepAlive: keepAlive, Status: 200}, nil
}

// BuildError builds a canned-body error response for one of the status
// codes in spec.md §4.5's table (400/403/404/500/503). A 503 always
// forces Connection: close per spec.md §7, regardless of what the
// request asked for.
func BuildError(status int, keepAlive bool) (*Response, error) {
	if status == 503 {
		keepAlive = false
	}
	body := cannedBodies[status]
	b := &builder{}
	if err := writeStatusAndHeaders(b, status, len(body), keepAlive); err != nil {
		return nil, err
	}
	if err := b.appendf("%s", body); err != nil {
		return nil, err
	}
	return &Response{Header: b.buf, KeepAlive: keepAlive, Status: status}, nil
}

func writeStatusAndHeaders(b *builder, status int, contentLength int, keepAlive bool) error {
	reason := reasons[status]
	if reason == "" {
		reason = "Unknown"
	}
	if err := b.appendf("HTTP/1.1 %d %s\r\n", status, reason); err != nil {
		return err
	}
	if err := b.appendf("Content-Length: %d\r\n", contentLength); err != nil {
		return err
	}
	conn := "close"
	if keepAlive {
		conn = "keep-alive"
	}
	if err := b.appendf("Connection: %s\r\n", conn); err != nil {
		return err
	}
	return b.appendf("\r\n")
}
