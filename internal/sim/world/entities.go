package world

import "github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/world/logic/mathx"

// Player owns units and resources. Units[0] is the headquarters while the player
// is alive.
type Player struct {
	id        ID
	index     int
	name      string
	color     Color
	hqPos     Vec2
	units     []*Unit
	resources Amounts
	collected Amounts
	alive     bool
	strategy  Strategy
}

func (p *Player) ID() ID             { return p.id }
func (p *Player) Name() string       { return p.name }
func (p *Player) Color() Color       { return p.color }
func (p *Player) IsNeutral() bool    { return p.id == NeutralPlayerID }
func (p *Player) Alive() bool        { return p.alive }
func (p *Player) Resources() Amounts { return p.resources }

// Collected is the lifetime total of resources dropped off at the headquarters.
func (p *Player) Collected() Amounts { return p.collected }

// HQPosition is where the headquarters was placed; drop-offs are measured against it.
func (p *Player) HQPosition() Vec2 { return p.hqPos }

// Units must be treated as read-only.
func (p *Player) Units() []*Unit { return p.units }

func (p *Player) HQ() *Unit {
	if p.IsNeutral() || len(p.units) == 0 || !p.units[0].IsHeadquarters() {
		return nil
	}
	return p.units[0]
}

type Resource struct {
	id      ID
	typ     ResourceType
	amount  int
	pos     Vec2
	heading float64
}

func (r *Resource) ID() ID             { return r.id }
func (r *Resource) Type() ResourceType { return r.typ }
func (r *Resource) Amount() int        { return r.amount }
func (r *Resource) Pos() Vec2          { return r.pos }
func (r *Resource) Heading() float64   { return r.heading }
func (r *Resource) DrawSize() float64  { return resourceSizes[r.typ] }

// Satellite moves in a straight line across the board. A faulty satellite emits
// ranging frames from a drifting faulty position with a corrupted checksum.
type Satellite struct {
	id          ID
	pos         Vec2
	heading     float64
	speed       float64
	faulty      bool
	faultyPos   Vec2
	faultySpeed float64
}

const satelliteDrawSize = 2.0

func (s *Satellite) ID() ID               { return s.id }
func (s *Satellite) Pos() Vec2            { return s.pos }
func (s *Satellite) Heading() float64     { return s.heading }
func (s *Satellite) Speed() float64       { return s.speed }
func (s *Satellite) Faulty() bool         { return s.faulty }
func (s *Satellite) FaultyPos() Vec2      { return s.faultyPos }
func (s *Satellite) FaultySpeed() float64 { return s.faultySpeed }
func (s *Satellite) DrawSize() float64    { return satelliteDrawSize }

// SignalPos is the position the satellite's ranging signal originates from.
func (s *Satellite) SignalPos() Vec2 {
	if s.faulty {
		return s.faultyPos
	}
	return s.pos
}

func (s *Satellite) advance(dt float64) {
	dir := mathx.Direction(s.heading)
	s.pos = s.pos.Add(dir.Scale(s.speed * dt))
	s.faultyPos = s.faultyPos.Add(dir.Scale(s.faultySpeed * dt))
}
