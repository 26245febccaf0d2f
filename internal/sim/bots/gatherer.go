package bots

import (
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/world"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/world/logic/mathx"
)

const (
	// maxRobots caps the fleet; the headquarters is not counted.
	maxRobots = 6
	// borderMargin is how close to the edge a wandering robot turns back.
	borderMargin = 10.0
	// retargetAfter is the simulated time between random wander turns.
	retargetAfter = 4.0
)

// robotMemory is what a Gatherer remembers about one robot between steps.
type robotMemory struct {
	est      world.Vec2
	fixed    bool
	fresh    bool
	wander   float64
	turnAt   float64
	lastMove bool
}

// Gatherer is the reference economy bot. Robots navigate on satellite fixes built
// from checksum-valid ranging frames only, collect the nearest visible resource,
// bring it home and keep buying robots while the budget allows.
type Gatherer struct {
	mem map[world.ID]*robotMemory
}

func NewGatherer(ctx *world.ThinkContext) world.Strategy {
	spawnStarting(ctx)
	return &Gatherer{mem: map[world.ID]*robotMemory{}}
}

func (g *Gatherer) Think(ctx *world.ThinkContext, dt float64) {
	units := ctx.Units()
	if len(units) == 0 {
		return
	}
	g.buy(ctx)

	live := make(map[world.ID]bool, len(units))
	for _, u := range units {
		if u.Kind() != world.KindRobot {
			continue
		}
		live[u.ID()] = true
		g.drive(ctx, u, g.memory(ctx, u), dt)
	}
	for id := range g.mem {
		if !live[id] {
			delete(g.mem, id)
		}
	}
}

func (g *Gatherer) memory(ctx *world.ThinkContext, u *world.Unit) *robotMemory {
	m, ok := g.mem[u.ID()]
	if !ok {
		// Robots spawn a few meters from the headquarters.
		m = &robotMemory{est: ctx.Player().HQPosition(), wander: u.Heading()}
		g.mem[u.ID()] = m
	}
	return m
}

func (g *Gatherer) buy(ctx *world.ThinkContext) {
	if len(ctx.Units())-1 >= maxRobots {
		return
	}
	tn := ctx.Tuning()
	have := ctx.Player().Resources()
	bigger := world.AttributeModifiers{ContainerSize: 1}
	if affordable(have, bigger.Cost(tn.Costs)) {
		ctx.Spawn(bigger)
		return
	}
	if affordable(have, world.AttributeModifiers{}.Cost(tn.Costs)) {
		ctx.Spawn(world.AttributeModifiers{})
	}
}

func affordable(have, cost world.Amounts) bool {
	for t := range have {
		if have[t] < cost[t] {
			return false
		}
	}
	return true
}

// locate updates the position estimate. Frames were measured before the previous
// update, so a fresh fix is advanced by the move made since.
func (g *Gatherer) locate(ctx *world.ThinkContext, u *world.Unit, m *robotMemory, dt float64) {
	p, ok := trilaterate(validRanges(u.SatelliteMeasurements()))
	m.fresh = ok
	if ok {
		m.est = p
		m.fixed = true
	}
	if m.lastMove {
		speed := u.Speed()
		if u.Cargo().Amount > 0 {
			speed -= ctx.Tuning().Units.CarrySpeedPenalty
		}
		m.est = m.est.Add(mathx.Direction(u.Heading()).Scale(speed * dt))
	}
	m.lastMove = false
}

func (g *Gatherer) drive(ctx *world.ThinkContext, u *world.Unit, m *robotMemory, dt float64) {
	g.locate(ctx, u, m, dt)

	if target, ok := nearestVirus(u); ok && !u.Reloading() {
		u.Attack(target)
		return
	}

	if u.Cargo().Amount > 0 {
		home := ctx.Player().HQPosition()
		if hq, ok := visibleHQ(ctx, u); ok {
			if hq.Distance <= u.DropOffRange() {
				u.DropOffAtHQ()
				return
			}
			g.move(u, m, hq.Heading)
			return
		}
		if m.est.Within(home, u.DropOffRange()) {
			u.DropOffAtHQ()
			return
		}
		g.move(u, m, mathx.Bearing(m.est, home))
		return
	}

	if r, ok := nearestResource(u); ok {
		if r.Distance <= u.CollectRange() {
			u.Collect(r.ResourceID)
			return
		}
		g.move(u, m, r.Heading)
		return
	}

	g.wander(ctx, u, m)
}

func (g *Gatherer) move(u *world.Unit, m *robotMemory, heading float64) {
	u.Move(heading)
	m.lastMove = true
}

func (g *Gatherer) wander(ctx *world.ThinkContext, u *world.Unit, m *robotMemory) {
	board := ctx.Tuning().Game
	now := ctx.Elapsed()
	nearEdge := m.est.X < board.BoardWidth[0]+borderMargin || m.est.X > board.BoardWidth[1]-borderMargin ||
		m.est.Y < board.BoardHeight[0]+borderMargin || m.est.Y > board.BoardHeight[1]-borderMargin
	switch {
	case nearEdge:
		center := world.Vec2{
			X: (board.BoardWidth[0] + board.BoardWidth[1]) / 2,
			Y: (board.BoardHeight[0] + board.BoardHeight[1]) / 2,
		}
		m.wander = mathx.Bearing(m.est, center)
		m.turnAt = now + retargetAfter
	case now >= m.turnAt:
		m.wander = ctx.Rand().Float64(0, mathx.TwoPi)
		m.turnAt = now + retargetAfter
	}
	g.move(u, m, m.wander)
}

func nearestVirus(u *world.Unit) (world.ID, bool) {
	var best world.UnitScan
	found := false
	for _, s := range u.ScannedUnits() {
		if s.PlayerID != world.NeutralPlayerID || s.Distance > u.AttackRange() {
			continue
		}
		if !found || s.Distance < best.Distance {
			best, found = s, true
		}
	}
	return best.UnitID, found
}

func visibleHQ(ctx *world.ThinkContext, u *world.Unit) (world.UnitScan, bool) {
	hq := ctx.HQ()
	if hq == nil {
		return world.UnitScan{}, false
	}
	for _, s := range u.ScannedUnits() {
		if s.UnitID == hq.ID() {
			return s, true
		}
	}
	return world.UnitScan{}, false
}

func nearestResource(u *world.Unit) (world.ResourceScan, bool) {
	var best world.ResourceScan
	found := false
	for _, s := range u.ScannedResources() {
		if s.Amount <= 0 {
			continue
		}
		if !found || s.Distance < best.Distance {
			best, found = s, true
		}
	}
	return best, found
}
