package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type sweepRunner interface {
	Sweep(ctx context.Context) (int64, error)
}

// Sweeper runs the boost expiry sweep on a fixed interval until its context
// ends or Stop is called.
type Sweeper struct {
	boosts   sweepRunner
	interval time.Duration
	logger   zerolog.Logger
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewSweeper(boosts sweepRunner, interval time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		boosts:   boosts,
		interval: interval,
		logger:   logger.With().Str("component", "sweeper").Logger(),
		stopChan: make(chan struct{}),
	}
}

func (sw *Sweeper) Start(ctx context.Context) {
	if sw.interval <= 0 {
		sw.logger.Info().Msg("boost sweeper disabled")
		return
	}
	sw.logger.Info().Dur("interval", sw.interval).Msg("starting boost sweeper")

	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sw.runOnce(ctx)

		case <-sw.stopChan:
			sw.logger.Info().Msg("stopping boost sweeper")
			return

		case <-ctx.Done():
			sw.logger.Info().Msg("context cancelled, stopping boost sweeper")
			return
		}
	}
}

func (sw *Sweeper) runOnce(ctx context.Context) {
	n, err := sw.boosts.Sweep(ctx)
	if err != nil {
		sw.logger.Error().Err(err).Msg("scheduled boost sweep failed")
		return
	}
	if n > 0 {
		sw.logger.Info().Int64("deactivated", n).Msg("expired boosts deactivated")
	}
}

// Stop ends Start. It is safe to call more than once.
func (sw *Sweeper) Stop() {
	sw.stopOnce.Do(func() { close(sw.stopChan) })
}
