package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/geocoder89/bootcamphub/internal/observability"
)

// TokenSweeper clears reset tokens whose expiry has passed.
type TokenSweeper interface {
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

type Config struct {
	Interval   time.Duration
	Timeout    time.Duration
	MaxBackoff time.Duration
}

type Sweeper struct {
	cfg   Config
	repo  TokenSweeper
	log   *slog.Logger
	prom  *observability.Prom
	stats *observability.SweepStats
	now   func() time.Time

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, repo TokenSweeper, log *slog.Logger, prom *observability.Prom) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 10 * cfg.Interval
	}

	return &Sweeper{
		cfg:   cfg,
		repo:  repo,
		log:   log,
		prom:  prom,
		stats: observability.NewSweepStats(),
		now:   time.Now,
	}
}

func (s *Sweeper) Stats() *observability.SweepStats {
	return s.stats
}

func (s *Sweeper) setReady(v bool) {
	s.readyMu.Lock()
	s.ready = v
	s.readyMu.Unlock()
}

func (s *Sweeper) isReady() bool {
	s.readyMu.RLock()
	defer s.readyMu.RUnlock()
	return s.ready
}

// SweepOnce runs a single pass and reports how many tokens were cleared.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	start := time.Now()

	sweepCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	n, err := s.repo.ClearExpiredResetTokens(sweepCtx, s.now().UTC())

	elapsed := time.Since(start)
	s.stats.ObserveDuration(elapsed)

	result := "ok"
	if err != nil {
		result = "error"
		s.stats.IncFailed()
	} else {
		s.stats.AddCleared(uint64(n))
	}
	s.stats.IncRuns()

	if s.prom != nil {
		s.prom.SweepDuration.WithLabelValues(result).Observe(elapsed.Seconds())
		if n > 0 {
			s.prom.SweepCleared.Add(float64(n))
		}
	}

	return n, err
}

// Run sweeps every Interval until ctx is cancelled. Failed sweeps are retried
// with exponential backoff.
func (s *Sweeper) Run(ctx context.Context) error {
	s.setReady(true)
	defer s.setReady(false)

	failures := 0
	wait := time.Duration(0)

	for {
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info("sweeper received shutdown signal")
			return nil

		case <-timer.C:
			n, err := s.SweepOnce(ctx)
			if err != nil {
				failures++
				wait = backoff(s.cfg.Interval, s.cfg.MaxBackoff, failures)
				s.log.Error("reset_token_sweep_failed", "err", err, "failures", failures, "retry_in", wait)
				continue
			}

			failures = 0
			wait = s.cfg.Interval

			if n > 0 {
				s.log.Info("reset_tokens_cleared", "count", n)
			}
		}
	}
}
