package observability

import (
	"sync/atomic"
	"time"
)

// SweepStats are in-process counters for the reset-token sweeper.
type SweepStats struct {
	runs    atomic.Uint64
	failed  atomic.Uint64
	cleared atomic.Uint64

	// duration stats (nanoseconds)
	durationCount atomic.Uint64
	durationTotal atomic.Int64
	durationMax   atomic.Int64
}

func NewSweepStats() *SweepStats {
	return &SweepStats{}
}

func (m *SweepStats) IncRuns() {
	m.runs.Add(1)
}

func (m *SweepStats) IncFailed() {
	m.failed.Add(1)
}

func (m *SweepStats) AddCleared(n uint64) {
	m.cleared.Add(n)
}

func (m *SweepStats) ObserveDuration(d time.Duration) {
	ns := d.Nanoseconds()
	m.durationCount.Add(1)
	m.durationTotal.Add(ns)

	// max update

	for {
		curr := m.durationMax.Load()

		if ns <= curr {
			return
		}

		if m.durationMax.CompareAndSwap(curr, ns) {
			return
		}
	}
}

type SweepStatsSnapshot struct {
	Runs            uint64
	Failed          uint64
	Cleared         uint64
	AverageDuration time.Duration
	MaxDuration     time.Duration
}

func (m *SweepStats) Snapshot() SweepStatsSnapshot {
	count := m.durationCount.Load()
	total := m.durationTotal.Load()

	var avg time.Duration

	if count > 0 {
		avg = time.Duration(total / int64(count))
	}

	return SweepStatsSnapshot{
		Runs:            m.runs.Load(),
		Failed:          m.failed.Load(),
		Cleared:         m.cleared.Load(),
		AverageDuration: avg,
		MaxDuration:     time.Duration(m.durationMax.Load()),
	}
}
