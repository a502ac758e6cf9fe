// Package metrics holds the Prometheus collectors of the archive tool.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals
var (
	// APIRequests counts Zulip API calls by endpoint and result (success, error, rate_limited).
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zulip_archive_api_requests_total",
			Help: "Zulip API requests by endpoint and result.",
		},
		[]string{"endpoint", "result"},
	)

	// RateLimitWaits counts how often the server asked us to back off.
	RateLimitWaits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zulip_archive_rate_limit_waits_total",
			Help: "Number of RATE_LIMIT_HIT responses waited out.",
		},
	)

	// MessagesFetched counts messages written to the JSON cache.
	MessagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zulip_archive_messages_fetched_total",
			Help: "Messages fetched from Zulip, by populate mode.",
		},
		[]string{"mode"},
	)

	// PagesWritten counts generated HTML pages by kind (index, stream, topic).
	PagesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zulip_archive_pages_written_total",
			Help: "Generated archive pages by kind.",
		},
		[]string{"kind"},
	)
)
