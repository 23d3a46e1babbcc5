package metrics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// BackendStatus is the backend state as exported by a running shell.
type BackendStatus struct {
	State        string
	Up           bool
	PID          int
	StartedAt    time.Time
	Failures     map[string]int
	Exits        int
	Terminations int
	Version      string
	Interpreter  string
	Script       string
}

// FetchStatus scrapes a shell's metrics endpoint and extracts the backend
// status. addr is host:port or a full URL.
func FetchStatus(ctx context.Context, client *http.Client, addr string) (*BackendStatus, error) {
	url := addr
	if !strings.Contains(url, "://") {
		url = "http://" + addr + "/metrics"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}

	families, err := decodeFamilies(resp.Body)
	if err != nil {
		return nil, err
	}
	return statusFromFamilies(families), nil
}

// decodeFamilies parses Prometheus text format.
func decodeFamilies(r io.Reader) (map[string]*dto.MetricFamily, error) {
	decoder := expfmt.NewDecoder(r, expfmt.FmtText)
	parsed := make(map[string]*dto.MetricFamily)

	for {
		var mf dto.MetricFamily
		if err := decoder.Decode(&mf); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("decode error: %w", err)
		}
		parsed[mf.GetName()] = &mf
	}

	return parsed, nil
}

func statusFromFamilies(families map[string]*dto.MetricFamily) *BackendStatus {
	st := &BackendStatus{
		State:    "unknown",
		Failures: make(map[string]int),
	}

	if mf, ok := families[NameBackendState]; ok {
		for _, m := range mf.GetMetric() {
			if m.GetGauge().GetValue() == 1 {
				st.State = labelValue(m, "state")
			}
		}
	}

	st.Up = gaugeValue(families, NameBackendUp) == 1
	st.PID = int(gaugeValue(families, NameBackendPID))
	if start := gaugeValue(families, NameBackendStart); start > 0 {
		st.StartedAt = time.Unix(int64(start), 0)
	}
	st.Exits = int(counterValue(families, NameExits))
	st.Terminations = int(counterValue(families, NameTerminations))

	if mf, ok := families[NameSpawnFailures]; ok {
		for _, m := range mf.GetMetric() {
			st.Failures[labelValue(m, "kind")] = int(m.GetCounter().GetValue())
		}
	}

	if mf, ok := families[NameInfo]; ok && len(mf.GetMetric()) > 0 {
		m := mf.GetMetric()[0]
		st.Version = labelValue(m, "version")
		st.Interpreter = labelValue(m, "interpreter")
		st.Script = labelValue(m, "script")
	}

	return st
}

func gaugeValue(families map[string]*dto.MetricFamily, name string) float64 {
	mf, ok := families[name]
	if !ok || len(mf.GetMetric()) == 0 {
		return 0
	}
	return mf.GetMetric()[0].GetGauge().GetValue()
}

func counterValue(families map[string]*dto.MetricFamily, name string) float64 {
	mf, ok := families[name]
	if !ok || len(mf.GetMetric()) == 0 {
		return 0
	}
	return mf.GetMetric()[0].GetCounter().GetValue()
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
