package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

type Scheduler struct {
	interval   time.Duration
	tickFn     func(context.Context)
	log        zerolog.Logger
	runOnStart bool

	running atomic.Bool
	ticks   atomic.Int64
	lastRun atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Scheduler)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Scheduler) { s.log = log }
}

// WithRunOnStart controls the immediate tick on Start. It is on by default.
func WithRunOnStart(on bool) Option {
	return func(s *Scheduler) { s.runOnStart = on }
}

type Status struct {
	Running    bool       `json:"running"`
	Interval   string     `json:"interval"`
	Ticks      int64      `json:"ticks"`
	LastTickAt *time.Time `json:"lastTickAt,omitempty"`
}

func New(interval time.Duration, tickFn func(context.Context), opts ...Option) (*Scheduler, error) {
	if interval <= 0 {
		return nil, errors.New("interval must be > 0")
	}
	if tickFn == nil {
		return nil, errors.New("tickFn must not be nil")
	}
	s := &Scheduler{
		interval:   interval,
		tickFn:     tickFn,
		log:        zerolog.Nop(),
		runOnStart: true,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start moves the scheduler from idle to running. It returns false if it was
// already running.
func (s *Scheduler) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running.Store(true)

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.log.Info().Str("interval", s.interval.String()).Msg("scheduler started")

		if s.runOnStart {
			s.safeTick(ctx)
		}

		for {
			select {
			case <-ctx.Done():
				s.log.Info().Msg("scheduler stopping")
				return
			case <-ticker.C:
				s.safeTick(ctx)
			}
		}
	}()

	return true
}

// Stop cancels future ticks and waits for the current one to finish. It
// returns false if the scheduler was idle.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return false
	}

	s.cancel()
	<-s.done
	s.running.Store(false)

	s.log.Info().Msg("scheduler stopped")
	return true
}

func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

func (s *Scheduler) Status() Status {
	st := Status{
		Running:  s.running.Load(),
		Interval: s.interval.String(),
		Ticks:    s.ticks.Load(),
	}
	if ns := s.lastRun.Load(); ns != 0 {
		t := time.Unix(0, ns).UTC()
		st.LastTickAt = &t
	}
	return st
}

func (s *Scheduler) safeTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("scheduler tick panic recovered")
		}
	}()

	start := time.Now()
	s.ticks.Add(1)
	s.lastRun.Store(start.UnixNano())

	s.tickFn(ctx)
	s.log.Debug().Int64("duration_ms", time.Since(start).Milliseconds()).Msg("scheduler tick completed")
}
