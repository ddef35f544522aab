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

package metrics_test

import (
	"testing"

	dto "github.com/prometheus/client_model/go"

	"github.com/a18361351/webserver/internal/metrics"
)

func gaugeValue(t *testing.T, g interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if m.Gauge != nil {
		return m.Gauge.GetValue()
	}
	return m.Counter.GetValue()
}

func TestConnectionOpenedAndClosedTrackActiveGauge(t *testing.T) {
	r := metrics.New()
	r.ConnectionOpened()
	r.ConnectionOpened()
	r.ConnectionClosed()

	if got := gaugeValue(t, r.ActiveConnections); got != 1 {
		t.Errorf("expected ActiveConnections 1, got %v", got)
	}
}

func TestRequestServedLabelsByStatus(t *testing.T) {
	r := metrics.New()
	r.RequestServed(200)
	r.RequestServed(200)
	r.RequestServed(404)

	if got := gaugeValue(t, r.RequestsTotal.WithLabelValues("200")); got != 2 {
		t.Errorf("expected 2 requests labeled 200, got %v", got)
	}
	if got := gaugeValue(t, r.RequestsTotal.WithLabelValues("404")); got != 1 {
		t.Errorf("expected 1 request labeled 404, got %v", got)
	}
}

func TestQueueRejectedIncrements(t *testing.T) {
	r := metrics.New()
	r.QueueRejected()
	r.QueueRejected()

	if got := gaugeValue(t, r.QueueRejectedTotal); got != 2 {
		t.Errorf("expected QueueRejectedTotal 2, got %v", got)
	}
}

func TestNilRegistryMethodsAreNoOps(t *testing.T) {
	var r *metrics.Registry
	r.ConnectionOpened()
	r.ConnectionClosed()
	r.RequestServed(200)
	r.QueueRejected()
	if r.Gatherer() != nil {
		t.Errorf("expected nil Gatherer on a nil Registry")
	}
}
