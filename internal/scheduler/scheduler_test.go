package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestNextTickAligned(t *testing.T) {
	s := New(Options{Interval: 15 * time.Minute, AlignToStart: true}, zerolog.Nop())

	now := time.Date(2026, 8, 29, 10, 7, 30, 0, time.UTC)
	next := s.nextTick(now)

	want := time.Date(2026, 8, 29, 10, 15, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("expected aligned tick %v, got %v", want, next)
	}
}

func TestNextTickOnBoundary(t *testing.T) {
	s := New(Options{Interval: 15 * time.Minute, AlignToStart: true}, zerolog.Nop())

	now := time.Date(2026, 8, 29, 10, 15, 0, 0, time.UTC)
	next := s.nextTick(now)

	// A tick exactly on the boundary schedules the following bucket.
	want := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("expected next bucket %v, got %v", want, next)
	}
}

func TestNextTickUnaligned(t *testing.T) {
	s := New(Options{Interval: 10 * time.Minute}, zerolog.Nop())

	now := time.Date(2026, 8, 29, 10, 7, 30, 0, time.UTC)
	next := s.nextTick(now)

	if !next.Equal(now.Add(10 * time.Minute)) {
		t.Fatalf("unaligned mode should add the interval, got %v", next)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	s := New(Options{Interval: time.Hour}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Run(ctx, func(ctx context.Context, bucket time.Time) error { return nil })
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunExecutesPoll(t *testing.T) {
	s := New(Options{Interval: 20 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	polls := make(chan time.Time, 1)
	go func() {
		_ = s.Run(ctx, func(ctx context.Context, bucket time.Time) error {
			select {
			case polls <- bucket:
			default:
			}
			return nil
		})
	}()

	select {
	case <-polls:
	case <-time.After(2 * time.Second):
		t.Fatal("poll function was never invoked")
	}
}
