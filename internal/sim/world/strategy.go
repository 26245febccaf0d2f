package world

import (
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/rng"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/tuning"
)

// Strategy is a player's decision function. Think runs once per step while the
// simulation is running, before the player's units are updated.
type Strategy interface {
	Think(ctx *ThinkContext, dt float64)
}

// StrategyFunc adapts a plain function to Strategy.
type StrategyFunc func(ctx *ThinkContext, dt float64)

func (f StrategyFunc) Think(ctx *ThinkContext, dt float64) { f(ctx, dt) }

// StrategyFactory is called once per player at world start, right after its
// headquarters is placed. It may spawn starting units through ctx.
type StrategyFactory func(ctx *ThinkContext) Strategy

type nopStrategy struct{}

func (nopStrategy) Think(*ThinkContext, float64) {}

// ThinkContext is the view a strategy has of the world: its own player and the
// operations it is allowed to perform.
type ThinkContext struct {
	w *World
	p *Player
}

func (c *ThinkContext) Player() *Player { return c.p }

// Units returns the player's units; index 0 is the headquarters.
func (c *ThinkContext) Units() []*Unit { return c.p.units }

// HQ returns the headquarters, or nil once it was destroyed.
func (c *ThinkContext) HQ() *Unit { return c.p.HQ() }

// Spawn buys a robot with the given upgrades next to the headquarters.
func (c *ThinkContext) Spawn(mods AttributeModifiers) (ID, bool) {
	return c.w.spawnRobot(c.p, mods)
}

// Rand returns the agent stream for the current run state.
func (c *ThinkContext) Rand() *rng.Stream { return c.w.agentRand() }

func (c *ThinkContext) Tuning() *tuning.Tuning { return &c.w.tn }

// Elapsed is the simulated time of the run in seconds.
func (c *ThinkContext) Elapsed() float64 { return c.w.elapsed }

func (c *ThinkContext) Running() bool { return c.w.running }
