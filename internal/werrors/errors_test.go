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

package werrors_test

import (
	"errors"
	"testing"

	"github.com/a18361351/webserver/internal/werrors"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, 200},
		{werrors.New(werrors.BadRequest, nil), 400},
		{werrors.New(werrors.Forbidden, nil), 403},
		{werrors.New(werrors.NotFound, nil), 404},
		{werrors.New(werrors.Internal, nil), 500},
		{werrors.New(werrors.Overloaded, nil), 503},
		{errors.New("plain"), 500},
	}
	for _, c := range cases {
		if got := werrors.StatusOf(c.err); got != c.want {
			t.Errorf("StatusOf(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("stat failed")
	e := werrors.New(werrors.NotFound, cause)
	if !errors.Is(e, cause) {
		t.Errorf("expected errors.Is to find wrapped cause")
	}
}

func TestNewfDetail(t *testing.T) {
	e := werrors.Newf(werrors.BadRequest, "bad method %q", "POST")
	if e.Detail != `bad method "POST"` {
		t.Errorf("unexpected detail: %q", e.Detail)
	}
}
