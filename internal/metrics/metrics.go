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

// Package metrics is a small, fixed, always-on set of prometheus
// counters/gauges wiring github.com/prometheus/client_golang (seen in
// nabbar-golib/prometheus/), not a reintroduction of the dynamic,
// pluggable metrics/monitoring registry spec.md §1 excludes as a
// Non-goal. The server runs correctly with a nil *Registry; every method
// on *Registry is a nil-receiver no-op so call sites never need a
// separate "metrics enabled" branch.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the fixed set of collectors this server exposes.
type Registry struct {
	ActiveConnections  prometheus.Gauge
	RequestsTotal      *prometheus.CounterVec
	QueueRejectedTotal prometheus.Counter
	reg                *prometheus.Registry
}

// New builds a Registry with its own prometheus.Registry, reachable
// through Gatherer. cmd/webserverd builds one but does not serve it over
// HTTP.
func New() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "webserverd",
			Name:      "active_connections",
			Help:      "Number of currently open connection slots.",
		}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "webserverd",
			Name:      "requests_total",
			Help:      "Total requests served, labeled by response status.",
		}, []string{"status"}),
		QueueRejectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "webserverd",
			Name:      "queue_rejected_total",
			Help:      "Total connections rejected because the work queue or slot table was full.",
		}),
	}

	reg.MustRegister(r.ActiveConnections, r.RequestsTotal, r.QueueRejectedTotal)
	return r
}

// Gatherer exposes the underlying prometheus.Gatherer for an HTTP
// /metrics handler, or nil if r is nil.
func (r *Registry) Gatherer() prometheus.Gatherer {
	if r == nil {
		return nil
	}
	return r.reg
}

// ConnectionOpened increments ActiveConnections; a no-op on a nil Registry.
func (r *Registry) ConnectionOpened() {
	if r == nil {
		return
	}
	r.ActiveConnections.Inc()
}

// ConnectionClosed decrements ActiveConnections; a no-op on a nil Registry.
func (r *Registry) ConnectionClosed() {
	if r == nil {
		return
	}
	r.ActiveConnections.Dec()
}

// RequestServed increments RequestsTotal for the given HTTP status; a
// no-op on a nil Registry.
func (r *Registry) RequestServed(status int) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(statusLabel(status)).Inc()
}

// QueueRejected increments QueueRejectedTotal; a no-op on a nil Registry.
func (r *Registry) QueueRejected() {
	if r == nil {
		return
	}
	r.QueueRejectedTotal.Inc()
}

func statusLabel(status int) string {
	switch status {
	case 200, 400, 403, 404, 500, 503:
		return strconv.Itoa(status)
	default:
		return "other"
	}
}
