package game

import (
	"log/slog"
	"sort"
	"time"
)

// Phase names recorded by the step loop.
const (
	PhaseDecide    = "decide"
	PhaseObstacles = "obstacles"
	PhaseCollide   = "collide"
	PhaseBounds    = "bounds"
	PhaseCompact   = "compact"
)

// PerfStats tracks a rolling window of durations per step phase.
type PerfStats struct {
	samples    map[string][]time.Duration
	maxSamples int
}

// NewPerfStats creates a tracker keeping the last window samples per phase.
func NewPerfStats(window int) *PerfStats {
	if window <= 0 {
		window = 1000
	}
	return &PerfStats{
		samples:    make(map[string][]time.Duration),
		maxSamples: window,
	}
}

// Record adds a duration sample for the named phase.
func (p *PerfStats) Record(name string, d time.Duration) {
	s := append(p.samples[name], d)
	if len(s) > p.maxSamples {
		s = s[1:]
	}
	p.samples[name] = s
}

// Avg returns the average duration for the named phase.
func (p *PerfStats) Avg(name string) time.Duration {
	s := p.samples[name]
	if len(s) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range s {
		total += d
	}
	return total / time.Duration(len(s))
}

// Total returns the sum of all phase averages, roughly the cost of one tick.
func (p *PerfStats) Total() time.Duration {
	var total time.Duration
	for name := range p.samples {
		total += p.Avg(name)
	}
	return total
}

// SortedNames returns phase names sorted by average duration (descending).
func (p *PerfStats) SortedNames() []string {
	names := make([]string, 0, len(p.samples))
	for name := range p.samples {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return p.Avg(names[i]) > p.Avg(names[j])
	})
	return names
}

// Log writes one record with the average per phase.
func (p *PerfStats) Log(logger *slog.Logger, msg string) {
	attrs := []any{slog.Duration("tick", p.Total())}
	for _, name := range p.SortedNames() {
		attrs = append(attrs, slog.Duration(name, p.Avg(name)))
	}
	logger.Info(msg, attrs...)
}

// timer records the time since the previous mark into p. A nil p makes every call a no-op.
type timer struct {
	p    *PerfStats
	last time.Time
}

func (p *PerfStats) start() timer {
	if p == nil {
		return timer{}
	}
	return timer{p: p, last: time.Now()}
}

func (t *timer) mark(name string) {
	if t.p == nil {
		return
	}
	now := time.Now()
	t.p.Record(name, now.Sub(t.last))
	t.last = now
}
