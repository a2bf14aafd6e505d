// Package schedule runs the daily push loop: wait until the configured
// fire time, run one report cycle, re-arm for the next day.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Huahuatgc/ribao/internal/config"
	"github.com/Huahuatgc/ribao/internal/storage"
)

// Default fire time used when the configured value does not parse.
const (
	defaultFireHour   = 8
	defaultFireMinute = 0
)

// Job runs one full report cycle (aggregate, render, deliver) for the
// given destinations. A returned error ends the cycle, not the loop.
type Job func(ctx context.Context, destinations []string) error

// Scheduler drives the push loop. States: waiting for the fire time,
// firing a cycle, or sleeping out an error backoff. Cancelling the context
// stops the loop at the next suspension point; an in-flight cycle is not
// preempted mid-step.
type Scheduler struct {
	cfg    *config.ScheduleConfig
	store  storage.Store
	job    Job
	clock  Clock
	logger *slog.Logger
}

// New creates a Scheduler. store may be nil when only configured
// destinations are used.
func New(cfg *config.ScheduleConfig, store storage.Store, job Job, clock Clock, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		store:  store,
		job:    job,
		clock:  clock,
		logger: logger.With("component", "scheduler"),
	}
}

// ParseFireTime parses an "HH:MM" wall-clock time of day.
func ParseFireTime(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("fire time %q is not HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("fire time %q has invalid hour", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("fire time %q has invalid minute", s)
	}
	return hour, minute, nil
}

// NextFire returns the next occurrence of hour:minute strictly after now:
// later today if the time is still ahead, otherwise the same time tomorrow.
func NextFire(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Run executes the push loop until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	hour, minute, err := ParseFireTime(s.cfg.FireTime)
	if err != nil {
		s.logger.Error("invalid fire time, using default",
			"fire_time", s.cfg.FireTime,
			"default", fmt.Sprintf("%02d:%02d", defaultFireHour, defaultFireMinute),
			"error", err,
		)
		hour, minute = defaultFireHour, defaultFireMinute
	}

	for {
		next := NextFire(s.clock.Now(), hour, minute)
		s.logger.Info("next push scheduled", "at", next.Format("2006-01-02 15:04:05"))

		if !s.sleep(ctx, next.Sub(s.clock.Now())) {
			return
		}

		destinations := s.destinations(ctx)
		if len(destinations) == 0 {
			s.logger.Warn("push enabled but no destinations configured, backing off",
				"backoff", s.cfg.ErrorBackoff)
			if !s.sleep(ctx, s.cfg.ErrorBackoff) {
				return
			}
			continue
		}

		if panicked := s.fire(ctx, destinations); panicked {
			if !s.sleep(ctx, s.cfg.ErrorBackoff) {
				return
			}
		}
	}
}

// fire runs one cycle and reports whether it escaped via panic. Job errors
// are logged and the loop simply re-arms.
func (s *Scheduler) fire(ctx context.Context, destinations []string) (panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("push cycle panicked", "panic", fmt.Sprint(r))
			panicked = true
		}
	}()

	s.logger.Info("starting scheduled push", "destinations", len(destinations))
	if err := s.job(ctx, destinations); err != nil {
		s.logger.Error("push cycle failed", "error", err)
	}
	return false
}

// destinations merges the configured list with stored subscriptions.
func (s *Scheduler) destinations(ctx context.Context) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(dest string) {
		if dest == "" || seen[dest] {
			return
		}
		seen[dest] = true
		out = append(out, dest)
	}

	for _, d := range s.cfg.Destinations {
		add(d)
	}
	if s.store != nil {
		stored, err := s.store.List(ctx)
		if err != nil {
			s.logger.Warn("listing subscriptions failed", "error", err)
		}
		for _, d := range stored {
			add(d)
		}
	}
	return out
}

// sleep suspends for d, returning false if ctx was cancelled first.
func (s *Scheduler) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		s.logger.Info("scheduler stopped")
		return false
	case <-s.clock.After(d):
		return true
	}
}
