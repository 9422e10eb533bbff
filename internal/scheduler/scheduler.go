// Package scheduler drives the aligned polling loop. When alignment is on,
// poll cycles land on wall-clock bucket boundaries (e.g. :00, :15, :30 for a
// 15 minute interval), so concurrent replicas contend for the same bucket.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// PollFunc is invoked on every aligned interval.
type PollFunc func(ctx context.Context, bucket time.Time) error

// Options tune scheduler behaviour.
type Options struct {
	Interval     time.Duration
	AlignToStart bool
	StartupDelay time.Duration
}

// Scheduler drives aligned execution of polling cycles.
type Scheduler struct {
	opts   Options
	logger zerolog.Logger
}

// New constructs a Scheduler instance.
func New(opts Options, logger zerolog.Logger) *Scheduler {
	if opts.Interval <= 0 {
		panic("scheduler interval must be positive")
	}
	return &Scheduler{opts: opts, logger: logger.With().Str("component", "scheduler").Logger()}
}

// Run blocks, invoking the poll function at each aligned interval until ctx
// is cancelled. A failed cycle is logged and does not stop the loop.
func (s *Scheduler) Run(ctx context.Context, poll PollFunc) error {
	if s.opts.StartupDelay > 0 {
		if err := s.sleepUntil(ctx, time.Now().Add(s.opts.StartupDelay)); err != nil {
			return err
		}
	}

	next := s.nextTick(time.Now().UTC())
	for {
		if time.Until(next) < 0 {
			// A slow cycle overran its slot; skip to the upcoming one.
			next = s.nextTick(time.Now().UTC())
		}

		s.logger.Debug().Time("next_bucket", next).Msg("waiting for next poll cycle")
		if err := s.sleepUntil(ctx, next); err != nil {
			return err
		}

		bucket := s.bucketStart(next)
		s.logger.Info().Time("bucket", bucket).Msg("executing poll cycle")
		if err := poll(ctx, bucket); err != nil {
			s.logger.Error().Err(err).Time("bucket", bucket).Msg("poll cycle failed")
		}

		next = next.Add(s.opts.Interval)
	}
}

func (s *Scheduler) sleepUntil(ctx context.Context, t time.Time) error {
	timer := time.NewTimer(time.Until(t))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Scheduler) nextTick(now time.Time) time.Time {
	if !s.opts.AlignToStart {
		return now.Add(s.opts.Interval)
	}
	bucket := now.Truncate(s.opts.Interval)
	if !bucket.After(now) {
		bucket = bucket.Add(s.opts.Interval)
	}
	return bucket
}

func (s *Scheduler) bucketStart(t time.Time) time.Time {
	if !s.opts.AlignToStart {
		return t
	}
	return t.Truncate(s.opts.Interval)
}
