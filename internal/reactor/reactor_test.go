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

package reactor_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/sirupsen/logrus"

	"github.com/a18361351/webserver/internal/reactor"
	"github.com/a18361351/webserver/internal/resolver"
	"github.com/a18361351/webserver/internal/slottable"
	"github.com/a18361351/webserver/internal/wlog"
	"github.com/a18361351/webserver/internal/workqueue"
)

func TestReactorServesAFileEndToEnd(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "index.html"), []byte("hi world\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	res, err := resolver.New(root)
	if err != nil {
		t.Fatalf("resolver.New: %v", err)
	}

	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	defer unix.Close(fds[1])
	if err := unix.SetNonblock(fds[0], true); err != nil {
		t.Fatalf("SetNonblock: %v", err)
	}

	// The slot table is indexed directly by fd, mirroring the original's
	// users[MAX_FD] array indexed by connfd; capacity must cover whatever
	// fd value the kernel hands back.
	slots := slottable.New(65536)
	queue := workqueue.NewMutexQueue(4)
	log := wlog.New(logrus.ErrorLevel)

	r, err := reactor.New(0, slots, queue, nil, log)
	if err != nil {
		t.Fatalf("reactor.New: %v", err)
	}
	defer r.Close()

	slotIndex := fds[0]
	conn, err := slots.Acquire(slotIndex, fds[0], "test-peer", 0)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := r.Adopt(slotIndex, conn.Fd); err != nil {
		t.Fatalf("Adopt: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan struct{})
	go r.Run(stop)
	go queue.Run(ctx, func(j workqueue.Job) {
		if c := slots.Lookup(j.SlotIndex); c != nil {
			c.Process(res)
		}
	})
	defer func() {
		close(stop)
		cancel()
	}()

	if _, err := unix.Write(fds[1], []byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n")); err != nil {
		t.Fatalf("write request: %v", err)
	}

	buf := make([]byte, 4096)
	deadline := time.Now().Add(3 * time.Second)
	var n int
	for time.Now().Before(deadline) {
		_ = unix.SetNonblock(fds[1], true)
		got, rerr := unix.Read(fds[1], buf)
		if rerr == nil && got > 0 {
			n = got
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if n == 0 {
		t.Fatal("timed out waiting for a response")
	}
	want := "HTTP/1.1 200 OK\r\nContent-Length: 9\r\nConnection: close\r\n\r\nhi world\n"
	if string(buf[:n]) != want {
		t.Errorf("got %q, want %q", buf[:n], want)
	}
}
