// Copyright 2024-2026 Aiku AI

package monitor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aiku/telegram-keyword-bot/pkg/rules"
)

// Metrics holds the Prometheus collectors of the bot. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	messages        *prometheus.CounterVec // by outcome
	classifyLatency prometheus.Histogram
	commands        *prometheus.CounterVec // by verb and result
	deliveries      *prometheus.CounterVec // by sink and status
	activeRules     *prometheus.GaugeVec   // by kind
	invalidRules    prometheus.Gauge
	eventPanics     *prometheus.CounterVec // by stream
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil
	}
	m := &Metrics{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "keyword_bot",
			Name:      "messages_total",
			Help:      "Messages classified, by outcome",
		}, []string{"outcome"}),
		classifyLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "keyword_bot",
			Name:      "classify_duration_seconds",
			Help:      "Time spent classifying one message",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "keyword_bot",
			Name:      "commands_total",
			Help:      "Bot commands handled, by verb and result",
		}, []string{"verb", "result"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "keyword_bot",
			Name:      "notifications_total",
			Help:      "Notification deliveries, by sink and status",
		}, []string{"sink", "status"}),
		activeRules: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "keyword_bot",
			Name:      "active_rules",
			Help:      "Compiled rules in the current rule set, by kind",
		}, []string{"kind"}),
		invalidRules: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "keyword_bot",
			Name:      "invalid_rules",
			Help:      "Rule texts that failed to compile",
		}),
		eventPanics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "keyword_bot",
			Name:      "event_panics_total",
			Help:      "Events dropped after a panic, by stream",
		}, []string{"stream"}),
	}
	for _, c := range []prometheus.Collector{
		m.messages, m.classifyLatency, m.commands, m.deliveries, m.activeRules, m.invalidRules, m.eventPanics,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) recordOutcome(o Outcome, d time.Duration) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(o.String()).Inc()
	m.classifyLatency.Observe(d.Seconds())
}

func (m *Metrics) recordCommand(verb, result string) {
	if m == nil {
		return
	}
	switch verb {
	case VerbStart, VerbAddKeyword, VerbRemoveKeyword, VerbAddExclude, VerbRemoveExclude, VerbListKeywords:
	default:
		verb = "other"
	}
	m.commands.WithLabelValues(verb, result).Inc()
}

func (m *Metrics) recordDelivery(sink string, ok bool) {
	if m == nil {
		return
	}
	status := "sent"
	if !ok {
		status = "failed"
	}
	m.deliveries.WithLabelValues(sink, status).Inc()
}

func (m *Metrics) recordRules(rs *rules.RuleSet) {
	if m == nil || rs == nil {
		return
	}
	m.activeRules.WithLabelValues(rules.Include.String()).Set(float64(len(rs.Include)))
	m.activeRules.WithLabelValues(rules.Exclude.String()).Set(float64(len(rs.Exclude)))
	m.invalidRules.Set(float64(len(rs.Failures)))
}

func (m *Metrics) recordPanic(stream string) {
	if m == nil {
		return
	}
	m.eventPanics.WithLabelValues(stream).Inc()
}
