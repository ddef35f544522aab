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

// Package config holds the server's static configuration struct.
//
// There is deliberately no file or environment parsing here: the core engine
// only consumes an already-populated Config value, built by cmd/webserverd
// from CLI flags. Struct tags are kept anyway (mapstructure/json/yaml) to
// match the convention every other configuration struct in this codebase's
// lineage uses, even though nothing decodes into them today.
package config

import (
	validator "github.com/go-playground/validator/v10"
)

// Config mirrors the original C++ server's defaults struct
// (sub_reactors, worker_threads, use_sendfile, listen_port, listen_intf).
type Config struct {
	SubReactors   int    `mapstructure:"sub_reactors" json:"sub_reactors" yaml:"sub_reactors" validate:"required,gte=1"`
	WorkerThreads int    `mapstructure:"worker_threads" json:"worker_threads" yaml:"worker_threads" validate:"required,gte=1"`
	UseSendfile   bool   `mapstructure:"use_sendfile" json:"use_sendfile" yaml:"use_sendfile"`
	ListenPort    int    `mapstructure:"listen_port" json:"listen_port" yaml:"listen_port" validate:"required,gte=1,lte=65535"`
	ListenIntf    string `mapstructure:"listen_intf" json:"listen_intf" yaml:"listen_intf" validate:"required"`

	// DocRoot is not part of the original defaults struct (the original pins
	// it at compile time via DOC_ROOT) but must be configurable in a module
	// meant to be run outside of its author's own filesystem layout.
	DocRoot string `mapstructure:"doc_root" json:"doc_root" yaml:"doc_root" validate:"required"`

	// MaxRequests bounds the work queue (shared-FIFO capacity, or per-ring
	// capacity-1 in the SPSC variant). Not present in the original defaults
	// struct either (it was a ThreadPool constructor argument); promoted
	// here since it is load-bearing for admission behavior.
	MaxRequests int `mapstructure:"max_requests" json:"max_requests" yaml:"max_requests" validate:"required,gte=1"`

	// MaxConnections bounds the fd-indexed slot table (MAX_FD in the original).
	MaxConnections int `mapstructure:"max_connections" json:"max_connections" yaml:"max_connections" validate:"required,gte=1"`

	// UseLockFreeQueue selects the per-worker SPSC ring queue implementation
	// over the shared mutex+semaphore FIFO. Compile-time #ifdef in the
	// original; a runtime switch here.
	UseLockFreeQueue bool `mapstructure:"use_lockfree_queue" json:"use_lockfree_queue" yaml:"use_lockfree_queue"`
}

// Default returns the exact defaults the original Config::init_default sets:
// 1 sub-reactor, 1 worker thread, sendfile disabled, port 1234, "0.0.0.0".
func Default() Config {
	return Config{
		SubReactors:      1,
		WorkerThreads:    1,
		UseSendfile:      false,
		ListenPort:       1234,
		ListenIntf:       "0.0.0.0",
		DocRoot:          "/var/www/html",
		MaxRequests:      1000,
		MaxConnections:   65536,
		UseLockFreeQueue: false,
	}
}

// Validate checks struct tags via go-playground/validator. It is the Go
// stand-in for the original's absence of any validation at all (the C++
// init_default simply cannot produce an invalid Config); user-supplied CLI
// overrides can, so this is exercised by cmd/webserverd before startup.
func (c Config) Validate() error {
	return validator.New().Struct(c)
}
