// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jeranaias/shopassist/internal/model"
)

// =============================================================================
// METRICS
// =============================================================================

// Metrics holds the collectors recorded around gateway calls.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetrics creates and registers the gateway collectors on reg. A nil reg
// leaves them unregistered, which tests use.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopassist",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Agent gateway calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shopassist",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Agent gateway call latency.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"op"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.latency)
	}
	return m
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = TypeOf(err).String()
	}
	m.requests.WithLabelValues(op, outcome).Inc()
	m.latency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// instrumented decorates a Gateway with Metrics.
type instrumented struct {
	next    Gateway
	metrics *Metrics
}

// Instrument wraps g so every call is counted and timed.
func Instrument(g Gateway, m *Metrics) Gateway {
	if m == nil {
		return g
	}
	return &instrumented{next: g, metrics: m}
}

func (i *instrumented) ListPersonas(ctx context.Context) (p []model.Persona, err error) {
	defer func(start time.Time) { i.metrics.observe("list_personas", start, err) }(time.Now())
	return i.next.ListPersonas(ctx)
}

func (i *instrumented) Chat(ctx context.Context, req ChatRequest) (r *Reply, err error) {
	defer func(start time.Time) { i.metrics.observe("chat", start, err) }(time.Now())
	return i.next.Chat(ctx, req)
}

func (i *instrumented) SwitchPersona(ctx context.Context, personaType string) (err error) {
	defer func(start time.Time) { i.metrics.observe("switch_persona", start, err) }(time.Now())
	return i.next.SwitchPersona(ctx, personaType)
}

func (i *instrumented) ProductInquiry(ctx context.Context, productID, question string) (r *Reply, err error) {
	defer func(start time.Time) { i.metrics.observe("product_inquiry", start, err) }(time.Now())
	return i.next.ProductInquiry(ctx, productID, question)
}

func (i *instrumented) OrderStatus(ctx context.Context, orderID string) (r *Reply, err error) {
	defer func(start time.Time) { i.metrics.observe("order_status", start, err) }(time.Now())
	return i.next.OrderStatus(ctx, orderID)
}
