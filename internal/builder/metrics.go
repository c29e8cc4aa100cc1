package builder

import (
	"sync"
	"time"
)

// MetricsSink receives build counters and timings.
type MetricsSink interface {
	Count(name string, delta int)
	Observe(name string, d time.Duration)
}

type nopSink struct{}

func (nopSink) Count(string, int)             {}
func (nopSink) Observe(string, time.Duration) {}

// Recorder is an in-memory MetricsSink.
type Recorder struct {
	mu        sync.Mutex
	counts    map[string]int
	durations map[string][]time.Duration
}

func NewRecorder() *Recorder {
	return &Recorder{
		counts:    make(map[string]int),
		durations: make(map[string][]time.Duration),
	}
}

func (r *Recorder) Count(name string, delta int) {
	r.mu.Lock()
	r.counts[name] += delta
	r.mu.Unlock()
}

func (r *Recorder) Observe(name string, d time.Duration) {
	r.mu.Lock()
	r.durations[name] = append(r.durations[name], d)
	r.mu.Unlock()
}

// Counter returns the current value of a counter.
func (r *Recorder) Counter(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[name]
}

// Observations returns a copy of the timings recorded under name.
func (r *Recorder) Observations(name string) []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.durations[name]...)
}

// Metric names reported to the MetricsSink.
const (
	MetricBuilds       = "graph.builds"
	MetricNodes        = "graph.nodes"
	MetricEdges        = "graph.edges"
	MetricPlaceholders = "graph.placeholders"
	MetricBuildTime    = "graph.build"
	MetricLayoutTime   = "graph.layout"
	MetricWebBuilds    = "graph.web_builds"
)
