package world

import (
	"math"

	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/world/logic/mathx"
)

// spawnRobot checks the cost before anything else so a refused spawn leaves ids,
// random streams and resources untouched.
func (w *World) spawnRobot(p *Player, mods AttributeModifiers) (ID, bool) {
	if p.IsNeutral() || !p.alive {
		return 0, false
	}
	if len(p.units) == 0 || !p.units[0].IsHeadquarters() {
		panic("world: spawn for player without headquarters")
	}
	cost := mods.Cost(w.tn.Costs)
	for t := 0; t < ResourceTypeCount; t++ {
		if cost[t] > p.resources[t] {
			w.log.Warn().
				Uint64("player", uint64(p.id)).
				Str("resource", ResourceType(t).String()).
				Int("need", cost[t]).
				Int("have", p.resources[t]).
				Msg("can't spawn unit, not enough resources")
			return 0, false
		}
	}
	for t := 0; t < ResourceTypeCount; t++ {
		p.resources[t] -= cost[t]
	}

	u := w.newUnit(KindRobot, p, p.hqPos, 0)
	u.applyModifiers(mods)
	h := w.agentRand().Float64(0, mathx.TwoPi)
	u.heading = h
	u.pos = p.hqPos.Add(mathx.Direction(h).Scale(w.tn.Units.SpawnRingRadius))
	w.addUnit(p, u)

	w.log.Info().
		Uint64("player", uint64(p.id)).
		Uint64("unit", uint64(u.id)).
		Float64("heading_deg", mathx.Deg(h)).
		Msg("unit spawned")
	w.emit(Event{Type: EventSpawned, ID: u.id, PlayerID: p.id})
	return u.id, true
}

func (w *World) addUnit(p *Player, u *Unit) {
	if u.id == 0 {
		panic("world: unit with zero id")
	}
	if _, dup := w.unitIndex[u.id]; dup {
		panic("world: duplicate unit id")
	}
	p.units = append(p.units, u)
	w.unitIndex[u.id] = u
}

// updateUnit is the physical update of one unit while the simulation runs.
func (w *World) updateUnit(u *Unit, dt float64) {
	if u.kind == KindVirus {
		u.health = min(u.health+w.tn.Units.Virus.Regeneration*dt, u.maxHealth)
	}

	if u.Reloading() {
		u.attackBlock -= dt
	}
	if hq := u.owner.units; len(hq) > 0 && u.pos.Dist(hq[0].pos) <= w.tn.Units.HQ.HealRange {
		u.health = min(u.health+w.tn.Units.HQ.HealAmount*dt, u.maxHealth)
	}
	if u.brain != nil {
		u.brain.ThinkUnit(u, dt)
	}
	u.lastAction = u.action
	if u.action == ActionAttack && !u.Reloading() {
		w.resolveAttack(u)
	}

	switch u.kind {
	case KindRobot:
		w.robotUpdate(u, dt)
	case KindVirus:
		if u.action == ActionMove {
			w.moveUnit(u, u.speed, dt)
		}
	}
	u.action = ActionNone
}

// resolveAttack hits the first unit matching the target id that is in range.
// Player units can only reach neutral units unless PvP is enabled.
func (w *World) resolveAttack(u *Unit) {
	for _, p := range w.players {
		if !u.owner.IsNeutral() && !p.IsNeutral() && !w.tn.Game.EnablePvP {
			break
		}
		for _, t := range p.units {
			if t.id != u.target || u.pos.Dist(t.pos) > u.attackRange {
				continue
			}
			u.heading = mathx.Bearing(u.pos, t.pos)
			t.health -= float64(u.attackPower)
			u.attackBlock = w.tn.Units.AttackBlockTime
			u.lastAttackPos = t.pos
			return
		}
	}
}

func (w *World) robotUpdate(u *Unit, dt float64) {
	switch u.action {
	case ActionMove:
		speed := u.speed
		if u.cargo.Amount > 0 {
			speed -= w.tn.Units.CarrySpeedPenalty
		}
		w.moveUnit(u, speed, dt)
	case ActionCollectResource:
		for _, r := range w.resources {
			if r.id != u.target || u.pos.Dist(r.pos) > u.collectRange {
				continue
			}
			k := min(u.containerSize, r.amount)
			r.amount -= k
			u.cargo = Cargo{Type: r.typ, Amount: k}
			break
		}
	case ActionDropOffResourcesAtHQ:
		if u.pos.Dist(u.owner.hqPos) <= u.collectRange {
			u.owner.resources[u.cargo.Type] += u.cargo.Amount
			u.owner.collected[u.cargo.Type] += u.cargo.Amount
			u.cargo.Amount = 0
		}
	case ActionDiscardResources:
		u.cargo.Amount = 0
	}
}

func (w *World) moveUnit(u *Unit, speed, dt float64) {
	g := w.tn.Game
	d := speed * dt
	u.pos.X = mathx.Clamp(u.pos.X+d*math.Cos(math.Pi/2+u.heading), g.BoardWidth[0], g.BoardWidth[1])
	u.pos.Y = mathx.Clamp(u.pos.Y+d*math.Sin(math.Pi/2+u.heading), g.BoardHeight[0], g.BoardHeight[1])
}
