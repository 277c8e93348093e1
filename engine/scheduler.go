package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler drives the periodic price update. It is idle until Start and
// then ticks forever; nothing short of process exit stops it in normal
// play, but Stop exists for tests and clean shutdown.
type Scheduler struct {
	engine   *Engine
	interval time.Duration
	log      *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewScheduler returns an idle scheduler ticking at the given interval.
func NewScheduler(e *Engine, interval time.Duration, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Scheduler{engine: e, interval: interval, log: log}
}

// Running reports whether the tick loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start loads the market (seed or rehydrate), runs the first tick
// immediately, and schedules the rest. Starting twice is a no-op. A panic
// inside any single tick is recovered and logged; the next tick still runs
// on schedule.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	s.engine.LoadStocks()

	logger := cronLogger{log: s.log}
	s.cron = cron.New(cron.WithChain(cron.Recover(logger)))
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), s.tick); err != nil {
		return fmt.Errorf("schedule tick: %w", err)
	}

	s.tickSafe() // first tick runs before any delay
	s.cron.Start()
	s.running = true
	s.log.Info("price updates started", "interval", s.interval.String())
	return nil
}

// Stop halts future ticks. The in-flight tick, if any, completes.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
}

func (s *Scheduler) tick() {
	s.engine.Tick()
}

// tickSafe mirrors the cron.Recover chain for the immediate first tick,
// which runs outside cron.
func (s *Scheduler) tickSafe() {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("tick panicked", "panic", r)
		}
	}()
	s.tick()
}

// cronLogger adapts slog to the cron.Logger interface so recovered panics
// land in the same log as everything else.
type cronLogger struct {
	log *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Info(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error(msg, append([]interface{}{"err", err}, keysAndValues...)...)
}
