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

package werrors

import "fmt"

// Error pairs a CodeError with an optional wrapped cause, mirroring the
// Code+Parent shape of nabbar/golib/errors.Error without its multi-parent
// tree (this module never needs to merge several causes into one error).
type Error struct {
	Code   CodeError
	Cause  error
	Detail string
}

func (e *Error) Error() string {
	msg := e.Code.Message()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an Error for code, optionally wrapping cause.
func New(code CodeError, cause error) *Error {
	return &Error{Code: code, Cause: cause}
}

// Newf builds an Error for code with a formatted detail string.
func Newf(code CodeError, format string, args ...interface{}) *Error {
	return &Error{Code: code, Detail: fmt.Sprintf(format, args...)}
}

// StatusOf extracts the HTTP status an error should be reported as; a nil
// error reports as 200, and one that is not a *Error reports as Internal.
func StatusOf(err error) int {
	if err == nil {
		return 200
	}
	var we *Error
	if e, ok := err.(*Error); ok {
		we = e
	} else {
		return int(Internal)
	}
	return we.Code.Status()
}
