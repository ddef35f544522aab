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

// Command webserverd is the static-file HTTP/1.x server binary: cobra CLI
// over the engine wired up in internal/{acceptor,reactor,workqueue,
// slottable,admission,metrics,resolver,wlog}.
//
// Argument handling is the Go-idiomatic fix for the REDESIGN FLAG bug in
// original_source/src/server.cpp's main(): the original reads
// atoi(argv[2]) before checking argc, so a one-argument invocation reads
// past the end of argv. cobra.MaximumNArgs(2) validates the argument
// count before Run ever indexes args, closing that off by construction.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/a18361351/webserver/internal/acceptor"
	"github.com/a18361351/webserver/internal/admission"
	"github.com/a18361351/webserver/internal/config"
	"github.com/a18361351/webserver/internal/metrics"
	"github.com/a18361351/webserver/internal/reactor"
	"github.com/a18361351/webserver/internal/resolver"
	"github.com/a18361351/webserver/internal/slottable"
	"github.com/a18361351/webserver/internal/wlog"
	"github.com/a18361351/webserver/internal/workqueue"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := config.Default()
	var logLevel string

	cmd := &cobra.Command{
		Use:   "webserverd [ip] [port]",
		Short: "Event-driven static-file HTTP/1.x server",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applyPositionalArgs(&cfg, args); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", logLevel, err)
			}
			return run(cfg, wlog.New(level))
		},
	}

	cmd.Flags().StringVar(&cfg.DocRoot, "doc-root", cfg.DocRoot, "document root directory")
	cmd.Flags().IntVar(&cfg.SubReactors, "sub-reactors", cfg.SubReactors, "number of worker reactor threads")
	cmd.Flags().IntVar(&cfg.WorkerThreads, "worker-threads", cfg.WorkerThreads, "number of worker pool threads")
	cmd.Flags().BoolVar(&cfg.UseSendfile, "use-sendfile", cfg.UseSendfile, "reserved for a future sendfile(2) fast path")
	cmd.Flags().IntVar(&cfg.MaxRequests, "max-requests", cfg.MaxRequests, "bounded work-queue capacity")
	cmd.Flags().IntVar(&cfg.MaxConnections, "max-connections", cfg.MaxConnections, "connection slot table capacity")
	cmd.Flags().BoolVar(&cfg.UseLockFreeQueue, "lockfree-queue", cfg.UseLockFreeQueue, "use the per-worker SPSC ring queue instead of the shared mutex FIFO")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	return cmd
}

// applyPositionalArgs mirrors the argc==1|2|3 dispatch in server.cpp's
// main(), but only after cobra has already validated len(args) <= 2 —
// args[0]/args[1] are never read until that check has run.
func applyPositionalArgs(cfg *config.Config, args []string) error {
	switch len(args) {
	case 0:
		// Keep defaults (0.0.0.0:1234).
	case 1:
		port, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", args[0], err)
		}
		cfg.ListenPort = port
	case 2:
		if net.ParseIP(args[0]) == nil {
			return fmt.Errorf("invalid ip %q", args[0])
		}
		port, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", args[1], err)
		}
		cfg.ListenIntf = args[0]
		cfg.ListenPort = port
	}
	return nil
}

// run wires the configured engine together and blocks until a shutdown
// signal is observed through the acceptor's self-pipe funnel.
func run(cfg config.Config, log wlog.Logger) error {
	res, err := resolver.New(cfg.DocRoot)
	if err != nil {
		return fmt.Errorf("resolver: %w", err)
	}

	reg := metrics.New()
	slots := slottable.New(cfg.MaxConnections)

	var queue workqueue.Queue
	if cfg.UseLockFreeQueue {
		queue = workqueue.NewSPSCRingQueue(cfg.WorkerThreads, cfg.MaxRequests)
	} else {
		queue = workqueue.NewMutexQueue(cfg.MaxRequests)
	}

	reactors := make([]*reactor.Reactor, cfg.SubReactors)
	for i := range reactors {
		r, err := reactor.New(i, slots, queue, reg, log.WithField("reactor", i))
		if err != nil {
			return fmt.Errorf("reactor %d: %w", i, err)
		}
		reactors[i] = r
	}

	// SIGPIPE is ignored process-wide, the Go equivalent of
	// addsig(SIGPIPE, SIG_IGN): a write to a half-closed peer must surface
	// as an EPIPE error on that write, never terminate the process. This
	// must run before acceptor.New installs its own signal.Notify, so
	// SIGPIPE never reaches the shutdown funnel.
	signal.Ignore(syscall.SIGPIPE)

	acc, err := acceptor.New(cfg.ListenIntf, cfg.ListenPort, slots, reactors, reg, log.WithField("component", "acceptor"))
	if err != nil {
		return fmt.Errorf("acceptor: %w", err)
	}
	defer acc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gate := admission.New(cfg.WorkerThreads)
	handle := func(j workqueue.Job) {
		conn := slots.Lookup(j.SlotIndex)
		if conn == nil {
			return
		}
		_ = gate.Run(ctx, func() {
			conn.Process(res)
		})
	}

	if ringAware, ok := queue.(workqueue.RingAware); ok {
		for i := 0; i < ringAware.RingCount(); i++ {
			go ringAware.RunRing(ctx, i, handle)
		}
	} else {
		for i := 0; i < cfg.WorkerThreads; i++ {
			go queue.Run(ctx, handle)
		}
	}

	stop := make(chan struct{})
	for _, r := range reactors {
		go r.Run(stop)
	}

	log.Info("webserverd listening")
	acc.Run(stop)

	close(stop)
	for _, r := range reactors {
		_ = r.Close()
	}
	return nil
}
