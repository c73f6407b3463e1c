package game

import (
	"context"
	"log"
	"time"
)

// Scheduler drives the engine's periodic work from a single goroutine, so
// tick bodies never run concurrently with each other. Pausing tears the
// timers down entirely; resuming re-establishes them with fresh periods,
// so missed ticks are never replayed.
type Scheduler struct {
	engine *Engine
	logger *log.Logger
	ctrl   chan bool
}

func NewScheduler(engine *Engine, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{
		engine: engine,
		logger: logger,
		ctrl:   make(chan bool, 4),
	}
}

// Pause suspends all periodic work. Idempotent.
func (s *Scheduler) Pause() {
	s.ctrl <- true
}

// Resume re-establishes all timers with fresh periods.
func (s *Scheduler) Resume() {
	s.ctrl <- false
}

// Run blocks until the context is cancelled. All timers share this single
// goroutine; ending the session cancels every pending tick outright.
func (s *Scheduler) Run(ctx context.Context) {
	cfg := s.engine.cfg
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }

	for {
		spawnInterval := s.engine.SpawnInterval()
		spawn := time.NewTicker(spawnInterval)
		sweep := time.NewTicker(ms(cfg.DropSweepIntervalMS))
		eventCheck := time.NewTicker(ms(cfg.EventCheckIntervalMS))
		income := time.NewTicker(time.Second)
		interest := time.NewTicker(time.Second)
		bottles := time.NewTicker(ms(cfg.BottleProductionIntervalMS))

		stopAll := func() {
			spawn.Stop()
			sweep.Stop()
			eventCheck.Stop()
			income.Stop()
			interest.Stop()
			bottles.Stop()
		}

	running:
		for {
			select {
			case <-ctx.Done():
				stopAll()
				return

			case paused := <-s.ctrl:
				if !paused {
					continue
				}
				stopAll()
				s.engine.Pause()
				if !s.waitResume(ctx) {
					return
				}
				s.engine.Resume()
				break running // rebuild every ticker with a fresh period

			case <-spawn.C:
				s.engine.SpawnTick()

			case <-sweep.C:
				s.engine.SweepTick()

			case <-eventCheck.C:
				s.engine.EventTick(ctx)
				// The outage and the moon run change the spawn cadence.
				if s.engine.SpawnInterval() != spawnInterval {
					stopAll()
					break running
				}

			case <-income.C:
				s.engine.IncomeTick(ctx)

			case <-interest.C:
				s.engine.InterestTick(ctx)

			case <-bottles.C:
				s.engine.BottleTick(ctx)
			}
		}
	}
}

func (s *Scheduler) waitResume(ctx context.Context) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case paused := <-s.ctrl:
			if !paused {
				return true
			}
		}
	}
}
