package main

import (
	"github.com/rs/zerolog"

	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/runner"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/tuning"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/world"
)

type matchConfig struct {
	Tuning   tuning.Tuning
	Strategy world.StrategyFactory
	// MaxTime caps simulated seconds; 0 runs until an outcome.
	MaxTime  float64
	Sink     world.TickSink
	Recorder runner.MatchRecorder
	Logger   *zerolog.Logger
}

type matchResult struct {
	RunID    string
	Seed     uint64
	Ticks    uint64
	Elapsed  float64
	Finished bool
	Outcome  world.Outcome
	Digest   string
}

// runMatch plays one match unpaused from start to outcome or time cap.
func runMatch(cfg matchConfig) (matchResult, error) {
	w, err := world.New(world.WorldConfig{
		Tuning:   cfg.Tuning,
		Strategy: cfg.Strategy,
		Logger:   cfg.Logger,
	})
	if err != nil {
		return matchResult{}, err
	}
	if cfg.Sink != nil {
		w.SetTickSink(cfg.Sink)
	}
	if cfg.Recorder != nil {
		cfg.Recorder.RunStarted(w)
	}

	dt := cfg.Tuning.Game.UpdateTimeStep
	w.SetRunning(true)
	for {
		if _, done := w.Finished(); done {
			break
		}
		if cfg.MaxTime > 0 && w.Elapsed() >= cfg.MaxTime {
			break
		}
		w.Step(dt)
	}

	out, done := w.Finished()
	if done && cfg.Recorder != nil {
		cfg.Recorder.RunFinished(w, out)
	}
	return matchResult{
		RunID:    w.RunID().String(),
		Seed:     w.Seed(),
		Ticks:    w.Tick(),
		Elapsed:  w.Elapsed(),
		Finished: done,
		Outcome:  out,
		Digest:   w.Digest(),
	}, nil
}
