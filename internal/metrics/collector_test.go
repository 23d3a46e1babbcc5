package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/randomizedcoder/pyshell/internal/supervisor"
)

// =============================================================================
// Test Helpers
// =============================================================================

// newTestCollector creates a collector with a test registry.
func newTestCollector() (*Collector, *prometheus.Registry) {
	registry := prometheus.NewRegistry()
	c := NewCollectorWithRegistry(CollectorConfig{
		Version:     "test",
		Interpreter: "python",
		Script:      "/opt/app/resources/server/main.py",
	}, registry)
	return c, registry
}

// gather returns the metric families keyed by name.
func gather(t *testing.T, registry *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	mfs, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	out := make(map[string]*dto.MetricFamily, len(mfs))
	for _, mf := range mfs {
		out[mf.GetName()] = mf
	}
	return out
}

// currentState returns the state label whose gauge is 1.
func currentState(t *testing.T, registry *prometheus.Registry) string {
	t.Helper()
	return statusFromFamilies(gather(t, registry)).State
}

// =============================================================================
// Tests
// =============================================================================

func TestNewCollector_Initial(t *testing.T) {
	c, registry := newTestCollector()
	if c.Gatherer() == nil {
		t.Fatal("Gatherer() should be the registry")
	}

	families := gather(t, registry)
	for _, name := range []string{NameInfo, NameBackendState, NameBackendUp, NameSpawnAttempts, NameSpawnFailures, NameExits, NameTerminations} {
		if _, ok := families[name]; !ok {
			t.Errorf("metric %s not exported", name)
		}
	}

	st := statusFromFamilies(families)
	if st.State != "not_started" {
		t.Errorf("state = %q, want not_started", st.State)
	}
	if st.Up {
		t.Error("backend should not be up")
	}
	if st.Interpreter != "python" || st.Version != "test" {
		t.Errorf("info labels = %q/%q", st.Version, st.Interpreter)
	}
	if len(st.Failures) != 2 {
		t.Errorf("failure kinds = %v, want both pre-created", st.Failures)
	}
}

func TestNewCollector_OwnRegistry(t *testing.T) {
	// Two collectors must not collide on registration
	a := NewCollector(CollectorConfig{Version: "a"})
	b := NewCollector(CollectorConfig{Version: "b"})

	for _, c := range []*Collector{a, b} {
		mfs, err := c.Gatherer().Gather()
		if err != nil {
			t.Fatalf("Gather() error: %v", err)
		}
		if len(mfs) == 0 {
			t.Error("no metrics gathered")
		}
	}
}

func TestCollector_Lifecycle(t *testing.T) {
	c, registry := newTestCollector()
	cb := c.Callbacks()

	start := time.Unix(1_700_000_000, 0)
	cb.OnStateChange(supervisor.StateNotStarted, supervisor.StateRunning)
	c.RecordStart(4242, start)

	st := statusFromFamilies(gather(t, registry))
	if st.State != "running" || !st.Up || st.PID != 4242 {
		t.Errorf("status after start = %+v", st)
	}
	if !st.StartedAt.Equal(start) {
		t.Errorf("StartedAt = %v, want %v", st.StartedAt, start)
	}
	if got := counterValue(gather(t, registry), NameSpawnAttempts); got != 1 {
		t.Errorf("spawn attempts = %v, want 1", got)
	}

	cb.OnStateChange(supervisor.StateRunning, supervisor.StateTerminated)
	cb.OnTerminate(4242)

	st = statusFromFamilies(gather(t, registry))
	if st.State != "terminated" || st.Up {
		t.Errorf("status after terminate = %+v", st)
	}
	if st.Terminations != 1 {
		t.Errorf("terminations = %d, want 1", st.Terminations)
	}
}

func TestCollector_Failures(t *testing.T) {
	testCases := []struct {
		name         string
		kind         supervisor.FailureKind
		wantAttempts float64
	}{
		{"interpreter not found", supervisor.FailureInterpreterNotFound, 0},
		{"spawn failed", supervisor.FailureSpawnFailed, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, registry := newTestCollector()
			cb := c.Callbacks()

			cb.OnStateChange(supervisor.StateNotStarted, supervisor.StateFailedToStart)
			cb.OnFailure(&supervisor.LaunchError{Kind: tc.kind})

			families := gather(t, registry)
			st := statusFromFamilies(families)
			if st.State != "failed_to_start" {
				t.Errorf("state = %q", st.State)
			}
			if st.Failures[tc.kind.String()] != 1 {
				t.Errorf("failures = %v", st.Failures)
			}
			if got := counterValue(families, NameSpawnAttempts); got != tc.wantAttempts {
				t.Errorf("spawn attempts = %v, want %v", got, tc.wantAttempts)
			}
		})
	}
}

func TestCollector_Exit(t *testing.T) {
	c, registry := newTestCollector()
	cb := c.Callbacks()

	c.RecordStart(10, time.Now())
	cb.OnStateChange(supervisor.StateRunning, supervisor.StateExited)
	cb.OnExit(10, 1)

	st := statusFromFamilies(gather(t, registry))
	if st.State != "exited" || st.Up || st.Exits != 1 {
		t.Errorf("status = %+v", st)
	}
	if currentState(t, registry) != "exited" {
		t.Error("state gauge should track the last transition")
	}
}
