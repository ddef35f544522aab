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

// Package werrors is a slimmed adaptation of nabbar/golib/errors, trading
// its multi-package MinPkgXxx code-space partitioning (meant to let dozens
// of independent packages share one global registry without collision) for
// a single block of constants whose values are the HTTP statuses
// themselves, since this module owns its entire error taxonomy.
// The CodeError/registry/Message shape is otherwise the same idiom.
package werrors

// CodeError is a numeric error code, reused directly as the HTTP status
// this server will emit for it (per the table in spec.md's response
// builder section); UnknownError is the zero value.
type CodeError uint16

const (
	UnknownError CodeError = 0

	// BadRequest covers every parse-level rejection: non-GET method,
	// unsupported/malformed HTTP version, missing leading slash on the
	// request target, unrecognized Connection value, a directory
	// requested instead of a file, and internal buffer-overflow escalation
	// paths that have nowhere else to go.
	BadRequest CodeError = 400

	// Forbidden covers traversal attempts and permission-denied stats.
	Forbidden CodeError = 403

	// NotFound covers missing files and canonicalization failures.
	NotFound CodeError = 404

	// Internal covers response-buffer overflow and otherwise-impossible
	// parser states.
	Internal CodeError = 500

	// Overloaded is the error slottable.Acquire returns for an occupied or
	// out-of-range slot. Its status, 503, is also the one sent when the
	// work queue is full, always paired with Connection: close.
	Overloaded CodeError = 503
)

var messages = map[CodeError]string{
	BadRequest: "bad request",
	Forbidden:  "forbidden",
	NotFound:   "not found",
	Internal:   "internal server error",
	Overloaded: "service unavailable",
}

// Message returns the registered text for a code, or "unknown error" for
// anything not in the taxonomy above.
func (c CodeError) Message() string {
	if m, ok := messages[c]; ok {
		return m
	}
	return "unknown error"
}

// Status returns the HTTP status this code should be reported as. For the
// codes above it is simply the numeric value; any other code is reported
// as 500, since the parser/resolver/builder never produce a CodeError
// outside this taxonomy.
func (c CodeError) Status() int {
	switch c {
	case BadRequest, Forbidden, NotFound, Internal, Overloaded:
		return int(c)
	default:
		return int(Internal)
	}
}
