// Package metrics provides Prometheus metrics for pyshell.
//
// All collectors describe the single backend process owned by the shell.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/randomizedcoder/pyshell/internal/supervisor"
)

// Metric names, shared with the status client.
const (
	NameInfo          = "pyshell_info"
	NameBackendState  = "pyshell_backend_state"
	NameBackendUp     = "pyshell_backend_up"
	NameBackendPID    = "pyshell_backend_pid"
	NameBackendStart  = "pyshell_backend_start_time_seconds"
	NameSpawnAttempts = "pyshell_backend_spawn_attempts_total"
	NameSpawnFailures = "pyshell_backend_spawn_failures_total"
	NameExits         = "pyshell_backend_exits_total"
	NameTerminations  = "pyshell_backend_terminations_total"
)

// CollectorConfig holds the static labels of the info metric.
type CollectorConfig struct {
	Version     string
	Interpreter string
	Script      string
}

// Collector records the backend lifecycle.
type Collector struct {
	info          *prometheus.GaugeVec
	state         *prometheus.GaugeVec
	up            prometheus.Gauge
	pid           prometheus.Gauge
	startTime     prometheus.Gauge
	spawnAttempts prometheus.Counter
	spawnFailures *prometheus.CounterVec
	exits         prometheus.Counter
	terminations  prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewCollector creates a collector on its own registry, which also carries
// the Go runtime and process collectors.
func NewCollector(cfg CollectorConfig) *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewCollectorWithRegistry(cfg, registry)
}

// NewCollectorWithRegistry creates a collector registered with registry.
func NewCollectorWithRegistry(cfg CollectorConfig, registry prometheus.Registerer) *Collector {
	c := &Collector{
		info: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: NameInfo,
				Help: "Information about the shell (value always 1)",
			},
			[]string{"version", "interpreter", "script"},
		),
		state: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: NameBackendState,
				Help: "Backend lifecycle state (1 for the current state)",
			},
			[]string{"state"},
		),
		up: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: NameBackendUp,
			Help: "1 while the backend process is running",
		}),
		pid: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: NameBackendPID,
			Help: "PID of the tracked backend process (0 = none)",
		}),
		startTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: NameBackendStart,
			Help: "Unix time the backend was spawned",
		}),
		spawnAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: NameSpawnAttempts,
			Help: "Spawn calls issued for the backend",
		}),
		spawnFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: NameSpawnFailures,
				Help: "Backend launch failures by kind",
			},
			[]string{"kind"},
		),
		exits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: NameExits,
			Help: "Backend exits not caused by the shell",
		}),
		terminations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: NameTerminations,
			Help: "Kills issued to the backend on shutdown",
		}),
	}

	registry.MustRegister(
		c.info,
		c.state,
		c.up,
		c.pid,
		c.startTime,
		c.spawnAttempts,
		c.spawnFailures,
		c.exits,
		c.terminations,
	)

	if g, ok := registry.(prometheus.Gatherer); ok {
		c.gatherer = g
	}

	c.info.WithLabelValues(cfg.Version, cfg.Interpreter, cfg.Script).Set(1)

	// Pre-create label values so they are exported from the start
	for _, kind := range []supervisor.FailureKind{supervisor.FailureInterpreterNotFound, supervisor.FailureSpawnFailed} {
		c.spawnFailures.WithLabelValues(kind.String())
	}
	c.SetState(supervisor.StateNotStarted)

	return c
}

// Gatherer returns the registry backing this collector, if it has one.
func (c *Collector) Gatherer() prometheus.Gatherer {
	return c.gatherer
}

// SetState marks s as the current backend state.
func (c *Collector) SetState(s supervisor.State) {
	for _, st := range supervisor.States() {
		v := 0.0
		if st == s {
			v = 1
		}
		c.state.WithLabelValues(st.String()).Set(v)
	}
	if s != supervisor.StateRunning {
		c.up.Set(0)
	}
}

// RecordStart records a successful spawn.
func (c *Collector) RecordStart(pid int, at time.Time) {
	c.spawnAttempts.Inc()
	c.up.Set(1)
	c.pid.Set(float64(pid))
	c.startTime.Set(float64(at.Unix()))
}

// RecordFailure records a launch failure. Only spawn failures count as
// spawn attempts.
func (c *Collector) RecordFailure(kind supervisor.FailureKind) {
	if kind == supervisor.FailureSpawnFailed {
		c.spawnAttempts.Inc()
	}
	c.spawnFailures.WithLabelValues(kind.String()).Inc()
	c.up.Set(0)
}

// RecordExit records the backend exiting on its own.
func (c *Collector) RecordExit() {
	c.exits.Inc()
	c.up.Set(0)
}

// RecordTermination records the kill issued on shutdown.
func (c *Collector) RecordTermination() {
	c.terminations.Inc()
	c.up.Set(0)
}

// Callbacks returns supervisor callbacks that feed this collector.
func (c *Collector) Callbacks() supervisor.Callbacks {
	return supervisor.Callbacks{
		OnStateChange: func(_, newState supervisor.State) { c.SetState(newState) },
		OnStart:       func(pid int) { c.RecordStart(pid, time.Now()) },
		OnExit:        func(int, int) { c.RecordExit() },
		OnFailure:     func(err *supervisor.LaunchError) { c.RecordFailure(err.Kind) },
		OnTerminate:   func(int) { c.RecordTermination() },
	}
}
