package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	botStarts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nexus",
			Subsystem: "bot",
			Name:      "starts_total",
			Help:      "Number of successful bot process starts.",
		}, []string{"type"},
	)
	botStops = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nexus",
			Subsystem: "bot",
			Name:      "stops_total",
			Help:      "Number of bot process stops (requested or exit).",
		}, []string{"type"},
	)
	botsRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "nexus",
			Subsystem: "bot",
			Name:      "running",
			Help:      "Current number of live bot processes.",
		},
	)
	logEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nexus",
			Subsystem: "console",
			Name:      "entries_total",
			Help:      "Log entries appended to the shared console buffer.",
		}, []string{"channel"},
	)
	terminalCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nexus",
			Subsystem: "terminal",
			Name:      "commands_total",
			Help:      "Shell commands executed through the web terminal.",
		}, []string{"role"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{botStarts, botStops, botsRunning, logEntries, terminalCommands}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler returns an http.Handler serving Prometheus metrics for the
// DefaultGatherer. The caller wires the route.
func Handler() http.Handler { return promhttp.Handler() }

// Helpers below no-op until Register has been called.

func IncBotStart(botType string) {
	if regOK.Load() {
		botStarts.WithLabelValues(botType).Inc()
	}
}

func IncBotStop(botType string) {
	if regOK.Load() {
		botStops.WithLabelValues(botType).Inc()
	}
}

func SetBotsRunning(n int) {
	if regOK.Load() {
		botsRunning.Set(float64(n))
	}
}

func IncLogEntry(channel string) {
	if regOK.Load() {
		logEntries.WithLabelValues(channel).Inc()
	}
}

func IncTerminalCommand(role string) {
	if regOK.Load() {
		terminalCommands.WithLabelValues(role).Inc()
	}
}
