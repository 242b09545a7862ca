// Package runner fans a prober out over a target list with a bounded
// worker pool and assembles the run report.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/sam1101-sys/reconkit/internal/probe"
	"github.com/sam1101-sys/reconkit/internal/targets"
)

// DefaultConcurrency bounds simultaneous probes unless overridden.
const DefaultConcurrency = 20

type Options struct {
	Concurrency int
	// RateLimit caps probe starts per second. Zero means unlimited.
	RateLimit float64
	// Progress draws a progress bar; it is suppressed automatically
	// when stderr is not a terminal.
	Progress bool
}

// Summary counts outcomes across one run.
type Summary struct {
	TotalTargets int `json:"total_targets"`
	TotalChecks  int `json:"total_checks"`
	Reachable    int `json:"reachable"`
	Detected     int `json:"detected"`
}

// Report is the JSON document a run produces.
type Report struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Service     string         `json:"service"`
	Ports       []int          `json:"ports"`
	Summary     Summary        `json:"summary"`
	Results     []probe.Result `json:"results"`
}

type job struct {
	index int
	host  string
	port  int
}

// Run probes every target/port pair and returns the report. Results
// keep input order regardless of completion order; individual probe
// failures are recorded in their result and never abort the batch.
// Cancelling ctx stops launching new probes.
func Run(ctx context.Context, p probe.Prober, ts []targets.Target, ports []int, opts Options) *Report {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if len(ports) == 0 {
		ports = p.DefaultPorts()
	}

	var jobs []job
	for _, t := range ts {
		if t.Port != 0 {
			jobs = append(jobs, job{index: len(jobs), host: t.Host, port: t.Port})
			continue
		}
		for _, port := range ports {
			jobs = append(jobs, job{index: len(jobs), host: t.Host, port: port})
		}
	}

	var bar *pb.ProgressBar
	if opts.Progress && isatty.IsTerminal(os.Stderr.Fd()) {
		bar = pb.New(len(jobs)).SetWriter(os.Stderr)
		bar.Start()
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	results := make([]probe.Result, len(jobs))
	sem := semaphore.NewWeighted(int64(opts.Concurrency))
	var wg sync.WaitGroup
	for _, j := range jobs {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				break
			}
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			defer sem.Release(1)
			results[j.index] = p.Probe(ctx, j.host, j.port)
			if bar != nil {
				bar.Increment()
			}
		}(j)
	}
	wg.Wait()
	if bar != nil {
		bar.Finish()
	}

	report := &Report{
		GeneratedAt: time.Now().UTC(),
		Service:     p.Service(),
		Ports:       ports,
		Results:     results,
	}
	report.Summary = summarize(results, len(ts))
	return report
}

func summarize(results []probe.Result, totalTargets int) Summary {
	s := Summary{TotalTargets: totalTargets, TotalChecks: len(results)}
	for _, r := range results {
		if r.Reachable {
			s.Reachable++
		}
		if r.Detected {
			s.Detected++
		}
	}
	return s
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// PrintSummary writes the human-readable run summary.
func (r *Report) PrintSummary(w io.Writer) {
	bold := color.New(color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(w, "%s %s on ports %v\n", bold("reconkit enum"), r.Service, r.Ports)
	fmt.Fprintf(w, "  targets:   %d\n", r.Summary.TotalTargets)
	fmt.Fprintf(w, "  checks:    %d\n", r.Summary.TotalChecks)
	fmt.Fprintf(w, "  reachable: %s\n", yellow(fmt.Sprint(r.Summary.Reachable)))
	fmt.Fprintf(w, "  detected:  %s\n", green(fmt.Sprint(r.Summary.Detected)))
}
