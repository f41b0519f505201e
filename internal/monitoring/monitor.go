// Package monitoring samples process and server gauges on an interval and
// warns when the goroutine count crosses a threshold.
package monitoring

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultInterval  = 30 * time.Second
	DefaultThreshold = 1000
	alertCooldown    = 5 * time.Minute
)

// Gauge reports the current value of a watched quantity.
type Gauge func() int

// Snapshot is the result of one sample.
type Snapshot struct {
	Goroutines int            `json:"goroutines"`
	Baseline   int            `json:"baseline"`
	Peak       int            `json:"peak"`
	Gauges     map[string]int `json:"gauges"`
	TakenAt    time.Time      `json:"taken_at"`
}

// Growth is the goroutine count above the baseline.
func (s Snapshot) Growth() int { return s.Goroutines - s.Baseline }

// Monitor samples the goroutine count plus any registered gauges, such as
// the number of hosted environments.
type Monitor struct {
	mu        sync.RWMutex
	interval  time.Duration
	threshold int
	baseline  int
	peak      int
	lastAlert time.Time
	gauges    map[string]Gauge
	last      Snapshot

	numGoroutine func() int
	logger       zerolog.Logger
}

// NewMonitor records the current goroutine count as the baseline.
// Non-positive interval or threshold fall back to the defaults.
func NewMonitor(interval time.Duration, threshold int, logger zerolog.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	baseline := runtime.NumGoroutine()
	return &Monitor{
		interval:     interval,
		threshold:    threshold,
		baseline:     baseline,
		peak:         baseline,
		gauges:       make(map[string]Gauge),
		numGoroutine: runtime.NumGoroutine,
		logger:       logger.With().Str("component", "monitor").Logger(),
	}
}

// Watch registers a gauge sampled alongside the goroutine count.
func (m *Monitor) Watch(name string, g Gauge) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[name] = g
}

// Run samples every interval until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	m.logger.Info().Int("baseline", m.baseline).Dur("interval", m.interval).Msg("Started monitoring")

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.Sample(now)
		}
	}
}

// Sample takes one reading, logs it and warns at most once per cooldown
// while the goroutine count exceeds the threshold.
func (m *Monitor) Sample(now time.Time) Snapshot {
	current := m.numGoroutine()

	m.mu.Lock()
	if current > m.peak {
		m.peak = current
	}
	snap := Snapshot{
		Goroutines: current,
		Baseline:   m.baseline,
		Peak:       m.peak,
		Gauges:     make(map[string]int, len(m.gauges)),
		TakenAt:    now,
	}
	for name, g := range m.gauges {
		snap.Gauges[name] = g()
	}
	alert := current > m.threshold && now.Sub(m.lastAlert) > alertCooldown
	if alert {
		m.lastAlert = now
	}
	m.last = snap
	m.mu.Unlock()

	ev := m.logger.Debug().
		Int("goroutines", current).
		Int("peak", snap.Peak).
		Int("growth", snap.Growth())
	for _, name := range sortedKeys(snap.Gauges) {
		ev = ev.Int(name, snap.Gauges[name])
	}
	ev.Msg("Monitor sample")

	if alert {
		m.logger.Warn().
			Int("goroutines", current).
			Int("threshold", m.threshold).
			Msg("High goroutine count detected - possible leak")
	}
	return snap
}

// Last returns the most recent sample.
func (m *Monitor) Last() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
