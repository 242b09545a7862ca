package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sam1101-sys/reconkit/internal/probe"
	"github.com/sam1101-sys/reconkit/internal/targets"
)

// slowProber is a scripted prober whose per-target outcomes and delays
// are fixed up front.
type slowProber struct {
	mu       sync.Mutex
	seen     []string
	delay    time.Duration
	detected map[string]bool
}

func (p *slowProber) Service() string     { return "fake" }
func (p *slowProber) DefaultPorts() []int { return []int{7} }

func (p *slowProber) Probe(ctx context.Context, target string, port int) probe.Result {
	time.Sleep(p.delay)
	p.mu.Lock()
	p.seen = append(p.seen, target)
	p.mu.Unlock()

	r := probe.Result{Target: target, Port: port, Service: "fake", Findings: map[string]any{}}
	r.Reachable = true
	r.Detected = p.detected[target]
	return r
}

func TestRunKeepsInputOrder(t *testing.T) {
	p := &slowProber{delay: 5 * time.Millisecond, detected: map[string]bool{"b": true}}
	ts := []targets.Target{{Host: "a"}, {Host: "b"}, {Host: "c"}}

	report := Run(context.Background(), p, ts, nil, Options{Concurrency: 3})

	require.Len(t, report.Results, 3)
	assert.Equal(t, "a", report.Results[0].Target)
	assert.Equal(t, "b", report.Results[1].Target)
	assert.Equal(t, "c", report.Results[2].Target)
	assert.Equal(t, []int{7}, report.Ports)
}

func TestRunSummaryCounters(t *testing.T) {
	p := &slowProber{detected: map[string]bool{"a": true, "c": true}}
	ts := []targets.Target{{Host: "a"}, {Host: "b"}, {Host: "c"}}

	report := Run(context.Background(), p, ts, []int{7, 8}, Options{})

	assert.Equal(t, 3, report.Summary.TotalTargets)
	assert.Equal(t, 6, report.Summary.TotalChecks)
	assert.Equal(t, 6, report.Summary.Reachable)
	assert.Equal(t, 4, report.Summary.Detected)
}

func TestRunExplicitTargetPortWins(t *testing.T) {
	p := &slowProber{detected: map[string]bool{}}
	ts := []targets.Target{{Host: "a", Port: 2222}, {Host: "b"}}

	report := Run(context.Background(), p, ts, []int{7}, Options{})

	require.Len(t, report.Results, 2)
	assert.Equal(t, 2222, report.Results[0].Port)
	assert.Equal(t, 7, report.Results[1].Port)
}

func TestRunEmptyInput(t *testing.T) {
	p := &slowProber{}
	report := Run(context.Background(), p, nil, nil, Options{})

	assert.Empty(t, report.Results)
	assert.Equal(t, 0, report.Summary.TotalTargets)
	assert.Equal(t, 0, report.Summary.TotalChecks)
}

func TestRunCancelledContextStopsLaunching(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &slowProber{}
	ts := []targets.Target{{Host: "a"}, {Host: "b"}}
	report := Run(ctx, p, ts, nil, Options{Concurrency: 1})

	p.mu.Lock()
	launched := len(p.seen)
	p.mu.Unlock()
	assert.Zero(t, launched)
	assert.Len(t, report.Results, 2) // zero-valued placeholders keep positions
}

func TestWriteJSONShape(t *testing.T) {
	p := &slowProber{detected: map[string]bool{"a": true}}
	report := Run(context.Background(), p, []targets.Target{{Host: "a"}}, nil, Options{})

	var buf bytes.Buffer
	require.NoError(t, report.WriteJSON(&buf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "generated_at")
	assert.Contains(t, decoded, "summary")
	assert.Contains(t, decoded, "results")
	summary := decoded["summary"].(map[string]any)
	assert.Equal(t, float64(1), summary["total_targets"])
}
