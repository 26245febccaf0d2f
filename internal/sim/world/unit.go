package world

import (
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/world/logic/mathx"
)

// Unit is a robot, headquarters or virus. Kind-specific behaviour is looked up
// in the traits table; everything else is shared.
type Unit struct {
	id    ID
	kind  Kind
	owner *Player
	w     *World

	pos     Vec2
	heading float64

	health        float64
	maxHealth     float64
	speed         float64
	scanRange     float64
	collectRange  float64
	containerSize int
	attackPower   int
	attackRange   float64

	attackBlock   float64
	lastAttackPos Vec2
	cargo         Cargo
	clockOffset   float64
	mods          AttributeModifiers

	action     Action
	lastAction Action
	target     ID

	unitScan     []UnitScan
	resourceScan []ResourceScan
	satFrames    [][]byte
	satCount     int

	brain UnitThinker
}

// UnitThinker is a per-unit decision function run during the unit's own update.
type UnitThinker interface {
	ThinkUnit(u *Unit, dt float64)
}

// newUnit draws the base attribute jitter from the agent stream.
func (w *World) newUnit(kind Kind, owner *Player, pos Vec2, heading float64) *Unit {
	b := w.tn.Units.Base
	j := w.tn.Units.AttributeJitterStddev
	hj := w.tn.Units.HealthJitter
	r := w.agentRand()
	u := &Unit{
		id:      w.nextGID(),
		kind:    kind,
		owner:   owner,
		w:       w,
		pos:     pos,
		heading: heading,
	}
	u.speed = b.Speed + r.NormalRange(-j, j)
	u.maxHealth = b.Health + r.NormalRange(-hj, hj)
	u.scanRange = b.ScanRange + r.NormalRange(-j, j)
	u.collectRange = b.CollectRange + r.NormalRange(-j, j)
	u.containerSize = b.ContainerSize
	u.attackPower = b.AttackPower
	u.attackRange = b.AttackRange + r.NormalRange(-j, j)
	u.health = u.maxHealth
	if w.tn.Game.EnableDistanceClockOffset {
		sd := w.tn.ClockOffsetStddev()
		u.clockOffset = r.NormalRange(-sd, sd)
	}

	switch kind {
	case KindHeadquarters:
		hq := w.tn.Units.HQ
		g := w.rng.World()
		u.maxHealth = hq.Health
		u.health = u.maxHealth
		u.scanRange = hq.ScanRange + g.NormalRange(-j, j)
		u.attackPower = hq.AttackPower
		u.attackRange = hq.AttackRange + g.NormalRange(-j, j)
	case KindVirus:
		v := w.tn.Units.Virus
		u.maxHealth = v.Health
		u.health = u.maxHealth
		u.speed = v.Speed
		u.scanRange = v.ScanRange
		u.attackPower = v.AttackPower
		u.attackRange = v.AttackRange
		u.brain = &virusBrain{}
	}
	return u
}

func (u *Unit) applyModifiers(m AttributeModifiers) {
	m = m.normalized()
	mx := u.w.tn.Units.Max
	u.mods = m
	u.maxHealth = min(u.maxHealth+float64(m.Health*u.w.tn.Costs.HealthPerCost), mx.Health)
	u.speed = min(u.speed+float64(m.Speed), mx.Speed)
	u.scanRange = min(u.scanRange+float64(m.ScanRange), mx.ScanRange)
	u.collectRange = min(u.collectRange+float64(m.CollectRange), mx.CollectRange)
	u.containerSize = min(u.containerSize+m.ContainerSize, mx.ContainerSize)
	u.attackPower = min(u.attackPower+m.AttackPower, mx.AttackPower)
	u.attackRange = min(u.attackRange+float64(m.AttackRange), mx.AttackRange)
	u.health = u.maxHealth
}

func (u *Unit) ID() ID                        { return u.id }
func (u *Unit) Kind() Kind                    { return u.kind }
func (u *Unit) TypeName() string              { return u.kind.String() }
func (u *Unit) Owner() *Player                { return u.owner }
func (u *Unit) Pos() Vec2                     { return u.pos }
func (u *Unit) Heading() float64              { return u.heading }
func (u *Unit) Health() float64               { return u.health }
func (u *Unit) MaxHealth() float64            { return u.maxHealth }
func (u *Unit) Speed() float64                { return u.speed }
func (u *Unit) ScanRange() float64            { return u.scanRange }
func (u *Unit) CollectRange() float64         { return u.collectRange }
func (u *Unit) DropOffRange() float64         { return u.collectRange }
func (u *Unit) ContainerSize() int            { return u.containerSize }
func (u *Unit) AttackPower() int              { return u.attackPower }
func (u *Unit) AttackRange() float64          { return u.attackRange }
func (u *Unit) AttackCooldown() float64       { return u.attackBlock }
func (u *Unit) Reloading() bool               { return u.attackBlock > 0 }
func (u *Unit) LastAttackPos() Vec2           { return u.lastAttackPos }
func (u *Unit) Cargo() Cargo                  { return u.cargo }
func (u *Unit) ClockOffset() float64          { return u.clockOffset }
func (u *Unit) Modifiers() AttributeModifiers { return u.mods }
func (u *Unit) Action() Action                { return u.action }
func (u *Unit) Target() ID                    { return u.target }
func (u *Unit) SatelliteCount() int           { return u.satCount }
func (u *Unit) IsHeadquarters() bool          { return traits[u.kind].hq }
func (u *Unit) DrawSize() float64             { return traits[u.kind].drawSize }

// LastAction is the action executed in the most recent update, kept for display.
func (u *Unit) LastAction() Action { return u.lastAction }

// ScannedUnits is the snapshot from the latest sensor refresh.
func (u *Unit) ScannedUnits() []UnitScan { return u.unitScan }

// ScannedResources is empty for neutral units.
func (u *Unit) ScannedResources() []ResourceScan { return u.resourceScan }

// SatelliteMeasurements returns raw ranging frames, possibly padded with filler bytes.
func (u *Unit) SatelliteMeasurements() [][]byte { return u.satFrames }

// SetHeading applies the heading precision error if enabled and wraps into [0, 2pi).
func (u *Unit) SetHeading(h float64) {
	if u.w.tn.Game.EnableHeadingPrecision {
		e := u.w.tn.HeadingError() / 2
		h += u.w.agentRand().Float64(-e, e)
	}
	u.heading = mathx.WrapHeading(h)
}

// Move heads the unit in the given direction for this step. Ignored by headquarters.
func (u *Unit) Move(heading float64) {
	if !traits[u.kind].mobile {
		return
	}
	u.SetHeading(heading)
	if u.kind == KindRobot {
		u.target = 0
	}
	u.action = ActionMove
}

func (u *Unit) Attack(target ID) {
	u.target = target
	u.action = ActionAttack
}

// Collect picks up resource id if it is within collect range. Robots only.
func (u *Unit) Collect(resource ID) {
	if !traits[u.kind].economy {
		return
	}
	u.target = resource
	u.action = ActionCollectResource
}

// DropOffAtHQ delivers the cargo if the robot is within drop-off range of its headquarters.
func (u *Unit) DropOffAtHQ() {
	if !traits[u.kind].economy {
		return
	}
	u.target = 0
	if hq := u.owner.HQ(); hq != nil {
		u.target = hq.id
	}
	u.action = ActionDropOffResourcesAtHQ
}

func (u *Unit) DiscardCargo() {
	if !traits[u.kind].economy {
		return
	}
	u.target = 0
	u.action = ActionDiscardResources
}
