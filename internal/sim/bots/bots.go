// Package bots holds the built-in player decision functions.
package bots

import (
	"fmt"
	"sort"

	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/world"
)

// StartingRobots is how many base robots every built-in bot buys at start.
const StartingRobots = 3

// Idle buys the starting robots and then does nothing, like the stock team template.
func Idle(ctx *world.ThinkContext) world.Strategy {
	spawnStarting(ctx)
	return world.StrategyFunc(func(*world.ThinkContext, float64) {})
}

func spawnStarting(ctx *world.ThinkContext) {
	for i := 0; i < StartingRobots; i++ {
		ctx.Spawn(world.AttributeModifiers{})
	}
}

var registry = map[string]world.StrategyFactory{
	"idle":     Idle,
	"gatherer": NewGatherer,
}

// ByName resolves a bot for command line flags and config.
func ByName(name string) (world.StrategyFactory, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown bot %q (known: %v)", name, Names())
	}
	return f, nil
}

func Names() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
