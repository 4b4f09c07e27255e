// Package metrics holds Prometheus instruments that are used across the
// backend.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ActiveBoards = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_boards",
			Help: "Number of board handles currently open in memory.",
		})

	BoardOpenTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "board_open_total",
			Help: "Cumulative number of board handles successfully opened.",
		})

	BoardOpenErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "board_open_errors_total",
			Help: "Cumulative number of board handle open failures.",
		})

	BoardEvictTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "board_evict_total",
			Help: "Cumulative number of board handles evicted from the registry.",
		})

	BoardCreateTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "board_create_total",
			Help: "Cumulative number of boards provisioned by the admin API.",
		})

	BoardArchiveTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "board_archive_total",
			Help: "Cumulative number of boards archived by the admin API.",
		})
)

func init() {
	prometheus.MustRegister(
		ActiveBoards,
		BoardOpenTotal,
		BoardOpenErrorsTotal,
		BoardEvictTotal,
		BoardCreateTotal,
		BoardArchiveTotal,
	)
}
