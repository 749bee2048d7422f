package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsCollector struct {
	chatRequests      *prometheus.CounterVec
	toolCalls         *prometheus.CounterVec
	lineTransitions   *prometheus.CounterVec
	serviceAdditions  *prometheus.CounterVec
	modelCallDuration *prometheus.HistogramVec
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		chatRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "telcodesk_chat_requests_total",
				Help: "Chat turns processed, by outcome",
			},
			[]string{"outcome"},
		),
		toolCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "telcodesk_assistant_tool_total",
				Help: "Assistant tool executions, by tool and result",
			},
			[]string{"tool", "result"},
		),
		lineTransitions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "telcodesk_line_transitions_total",
				Help: "Line status transitions, by operation and result",
			},
			[]string{"operation", "result"},
		),
		serviceAdditions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "telcodesk_service_additions_total",
				Help: "Service subscriptions created, by service type",
			},
			[]string{"service_type"},
		),
		modelCallDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "telcodesk_model_call_duration_seconds",
				Help:    "Latency of chat completion calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"model"},
		),
	}
}

func (m *MetricsCollector) RecordChatRequest(outcome string) {
	m.chatRequests.WithLabelValues(outcome).Inc()
}

func (m *MetricsCollector) RecordToolCall(tool, result string) {
	m.toolCalls.WithLabelValues(tool, result).Inc()
}

func (m *MetricsCollector) RecordLineTransition(operation, result string) {
	m.lineTransitions.WithLabelValues(operation, result).Inc()
}

func (m *MetricsCollector) RecordServiceAddition(serviceType string) {
	m.serviceAdditions.WithLabelValues(serviceType).Inc()
}

func (m *MetricsCollector) ObserveModelCall(model string, seconds float64) {
	m.modelCallDuration.WithLabelValues(model).Observe(seconds)
}
