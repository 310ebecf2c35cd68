package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	KafkaMessagesConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_consumed_total",
			Help: "Number of messages fetched from Kafka",
		},
		[]string{"topic"},
	)
	KafkaMessagesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_processed_total",
			Help: "Number of messages processed successfully",
		},
		[]string{"topic"},
	)
	KafkaMessagesFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_failed_total",
			Help: "Number of messages failed to process",
		},
		[]string{"topic"},
	)
	KafkaMessagesProduced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_produced_total",
			Help: "Number of messages written to Kafka",
		},
		[]string{"topic"},
	)
)

var (
	CacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Cache operations",
		},
		[]string{"op"}, // hit|miss|expired|evicted|set|deleted
	)
	CacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_size",
			Help: "Number of items currently in cache",
		},
	)
)

var (
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Requests to the vehicle search upstream by outcome",
		},
		[]string{"outcome"}, // ok|http_error|timeout|protocol|network
	)
	UpstreamDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Latency of vehicle search upstream requests",
			Buckets: prometheus.DefBuckets,
		},
	)
	ToolCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcp_tool_calls_total",
			Help: "MCP tool invocations",
		},
		[]string{"tool", "status"},
	)
	Leads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_total",
			Help: "Lead submissions by outcome",
		},
		[]string{"outcome"}, // created|invalid|rate_limited|failed|ingested|forward_failed
	)
)

var registerOnce sync.Once

// MustRegister — регистрирует все метрики в глобальном реестре; повторный вызов безопасен.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			KafkaMessagesConsumed, KafkaMessagesProcessed, KafkaMessagesFailed, KafkaMessagesProduced,
			CacheOps, CacheSize,
			UpstreamRequests, UpstreamDuration, ToolCalls, Leads,
		)
	})
}
