package main

import (
	"fmt"

	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/tuning"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/world"
)

// verifier steps a fresh world alongside a tick log. Records may be sampled; the
// run state between two records is taken from the later one.
type verifier struct {
	w   *world.World
	dt  float64
	run string

	checked uint64
}

func newVerifier(tn tuning.Tuning, strategy world.StrategyFactory, runID string) (*verifier, error) {
	w, err := world.New(world.WorldConfig{Tuning: tn, Strategy: strategy})
	if err != nil {
		return nil, err
	}
	return &verifier{w: w, dt: tn.Game.UpdateTimeStep, run: runID}, nil
}

// check advances to rec.Tick and compares digests. Records of other runs are skipped.
func (v *verifier) check(rec world.TickRecord) error {
	if v.run == "" {
		v.run = rec.RunID
	}
	if rec.RunID != v.run {
		return nil
	}
	if rec.Tick < v.w.Tick() {
		return fmt.Errorf("tick %d out of order (world at %d)", rec.Tick, v.w.Tick())
	}
	v.w.SetRunning(rec.Running)
	for v.w.Tick() <= rec.Tick {
		v.w.Step(v.dt)
	}
	v.checked++
	if got := v.w.Digest(); got != rec.Digest {
		return fmt.Errorf("digest mismatch at tick %d: got=%s want=%s", rec.Tick, got, rec.Digest)
	}
	return nil
}
