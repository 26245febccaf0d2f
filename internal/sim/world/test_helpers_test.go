package world

import (
	"testing"

	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/tuning"
)

func newTestWorld(t *testing.T, edit func(*tuning.Tuning), strat StrategyFactory) *World {
	t.Helper()
	tn := tuning.Defaults()
	tn.Game.Seed = 42
	if edit != nil {
		edit(&tn)
	}
	w, err := New(WorldConfig{Tuning: tn, Strategy: strat})
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	return w
}

// spawnThree mirrors the stock team setup: three base robots at start.
func spawnThree(ctx *ThinkContext) Strategy {
	for i := 0; i < 3; i++ {
		ctx.Spawn(AttributeModifiers{})
	}
	return nopStrategy{}
}

func mustSpawn(t *testing.T, w *World, p *Player) *Unit {
	t.Helper()
	id, ok := w.spawnRobot(p, AttributeModifiers{})
	if !ok {
		t.Fatalf("spawn failed for player %d with %v", p.id, p.resources)
	}
	return w.Unit(id)
}
