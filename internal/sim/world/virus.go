package world

import (
	"math"

	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/world/logic/mathx"
)

type virusState uint8

const (
	virusIdle virusState = iota
	virusExploring
	virusAttacking
)

func (s virusState) String() string {
	switch s {
	case virusExploring:
		return "exploring"
	case virusAttacking:
		return "attacking"
	default:
		return "idle"
	}
}

const virusBorderDistance = 5.0

// virusBrain wanders the board, hunts the nearest player unit it can see and
// flees from headquarters while damaged.
type virusBrain struct {
	state     virusState
	target    ID
	fleeTime  float64
	targetPos Vec2
}

func (b *virusBrain) ThinkUnit(u *Unit, dt float64) {
	w := u.w
	if b.fleeTime > 0 {
		b.fleeTime -= dt
	}

	scans := u.ScannedUnits()
	for _, s := range scans {
		if s.IsHQ && u.health < u.maxHealth {
			w.log.Trace().Uint64("virus", uint64(u.id)).Msg("ran into headquarters, fleeing")
			b.target = 0
			b.fleeTime = w.tn.Units.Virus.FleeTime
			b.state = virusExploring
			u.Move(s.Heading + math.Pi)
			return
		}
	}

	if b.fleeTime <= 0 {
		b.acquire(u, scans)
	}

	switch b.state {
	case virusIdle:
		h := w.agentRand().Float64(0, mathx.TwoPi)
		w.log.Trace().Uint64("virus", uint64(u.id)).Float64("heading_deg", mathx.Deg(h)).Msg("exploring")
		b.target = 0
		b.state = virusExploring
		u.Move(h)
	case virusExploring:
		if border, ok := nearBorder(u.pos, w.tn.Game.BoardWidth, w.tn.Game.BoardHeight); ok {
			h := w.agentRand().NormalRange(-math.Pi/2, math.Pi/2) + float64(border)*math.Pi/2
			w.log.Trace().Uint64("virus", uint64(u.id)).Float64("heading_deg", mathx.Deg(h)).Msg("border reached")
			u.Move(h)
			return
		}
		u.Move(u.heading)
	case virusAttacking:
		for _, s := range scans {
			if s.UnitID != b.target {
				continue
			}
			b.targetPos = u.pos.Add(mathx.Direction(s.Heading).Scale(s.Distance))
			if s.Distance < u.attackRange && !u.Reloading() {
				u.Attack(s.UnitID)
			} else if s.Distance > u.attackRange/2 {
				u.Move(mathx.Bearing(u.pos, b.targetPos))
			}
			return
		}
		w.log.Trace().Uint64("virus", uint64(u.id)).Uint64("target", uint64(b.target)).Msg("lost target")
		b.target = 0
		b.state = virusIdle
	}
}

// acquire picks the first visible player unit, switching to a closer one when
// the current target is still visible.
func (b *virusBrain) acquire(u *Unit, scans []UnitScan) {
	for _, s := range scans {
		if s.PlayerID == NeutralPlayerID {
			continue
		}
		if b.target == 0 {
			b.target = s.UnitID
			b.state = virusAttacking
			u.w.log.Trace().Uint64("virus", uint64(u.id)).Uint64("target", uint64(b.target)).Msg("found unit, attacking")
			return
		}
		for _, cur := range scans {
			if cur.UnitID != b.target {
				continue
			}
			if s.Distance < cur.Distance {
				b.target = s.UnitID
				b.state = virusAttacking
				u.w.log.Trace().Uint64("virus", uint64(u.id)).Uint64("target", uint64(b.target)).Msg("switching target")
				return
			}
			break
		}
	}
}

// nearBorder returns 0 bottom, 1 right, 2 top or 3 left, checking left, right,
// bottom, top in that order.
func nearBorder(p Vec2, bw, bh [2]float64) (int, bool) {
	switch {
	case math.Abs(p.X-bw[0]) < virusBorderDistance:
		return 3, true
	case math.Abs(p.X-bw[1]) < virusBorderDistance:
		return 1, true
	case math.Abs(p.Y-bh[0]) < virusBorderDistance:
		return 0, true
	case math.Abs(p.Y-bh[1]) < virusBorderDistance:
		return 2, true
	}
	return 0, false
}
