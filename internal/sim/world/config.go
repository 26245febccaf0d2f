package world

import (
	"github.com/rs/zerolog"

	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/tuning"
)

type WorldConfig struct {
	// Tuning holds every game constant. A zero value is replaced by tuning.Defaults().
	Tuning tuning.Tuning

	// Strategy builds the decision function of every non-neutral player at world start.
	// If nil, players never act.
	Strategy StrategyFactory

	// Logger receives diagnostics. If nil, logging is disabled.
	Logger *zerolog.Logger

	// Rejection sampling for resource placement gives up after this many tries.
	MaxPlacementAttempts int
}

func (c *WorldConfig) applyDefaults() {
	if c.Tuning.Game.UpdateTimeStep <= 0 {
		c.Tuning = tuning.Defaults()
	}
	if c.Strategy == nil {
		c.Strategy = func(*ThinkContext) Strategy { return nopStrategy{} }
	}
	if c.Logger == nil {
		l := zerolog.Nop()
		c.Logger = &l
	}
	if c.MaxPlacementAttempts <= 0 {
		c.MaxPlacementAttempts = 100_000
	}
}
