package world

import (
	"fmt"
	"math"

	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/world/logic/mathx"
)

// generate builds players, headquarters, starting units and resources. It draws
// only from the world stream, apart from unit jitter which uses the agent stream.
func (w *World) generate() {
	g := w.tn.Game
	res := w.tn.Resources
	wr := w.rng.World()

	neutral := &Player{
		id:    NeutralPlayerID,
		index: 0,
		name:  "Neutral",
		color: neutralColor,
		alive: true,
	}
	w.players = append(w.players, neutral)
	w.spawnViruses(neutral)

	var budget [ResourceTypeCount]float64
	for i := 0; i < g.NumPlayers; i++ {
		start := Vec2{
			X: wr.Float64(g.BoardWidth[0]*0.9, g.BoardWidth[1]*0.9),
			Y: wr.Float64(g.BoardHeight[0]*0.9, g.BoardHeight[1]*0.9),
		}
		p := &Player{
			id:        w.nextGID(),
			index:     len(w.players),
			name:      fmt.Sprintf("Player %d", i+1),
			color:     playerColor(i),
			hqPos:     start,
			resources: Amounts(res.Starting),
			alive:     true,
		}
		w.players = append(w.players, p)
		w.closeToHQ = append(w.closeToHQ, 0)

		hqHeading := wr.Float64(0, mathx.TwoPi)
		w.addUnit(p, w.newUnit(KindHeadquarters, p, start, hqHeading))
		p.strategy = w.cfg.Strategy(&ThinkContext{w: w, p: p})
		if p.strategy == nil {
			p.strategy = nopStrategy{}
		}

		for t := 0; t < ResourceTypeCount; t++ {
			budget[t] = wr.Float64(res.Total[t][0], res.Total[t][1])
			amount := wr.Float64(res.PerEntity[t][0], res.PerEntity[t][1])
			pos := w.resourcePosition(start, res.MinDistanceToHQLimited, true)
			w.addResource(ResourceType(t), amount, pos)
			budget[t] -= amount
		}
	}

	for anyPositive(budget) {
		for t := 0; t < ResourceTypeCount; t++ {
			if budget[t] <= 0 {
				continue
			}
			amount := wr.Float64(res.PerEntity[t][0], res.PerEntity[t][1])
			w.addResource(ResourceType(t), amount, w.resourcePosition(Vec2{}, 0, false))
			budget[t] -= amount
		}
	}
}

func anyPositive(b [ResourceTypeCount]float64) bool {
	for _, v := range b {
		if v > 0 {
			return true
		}
	}
	return false
}

func (w *World) addResource(t ResourceType, amount float64, pos Vec2) {
	r := &Resource{id: w.nextGID(), typ: t, amount: int(amount), pos: pos}
	w.resources = append(w.resources, r)
}

// spawnViruses places neutral units near the board corners.
func (w *World) spawnViruses(neutral *Player) {
	g := w.tn.Game
	wr := w.rng.World()
	ew := g.BoardWidth[1] - g.BoardWidth[0]
	eh := g.BoardHeight[1] - g.BoardHeight[0]
	for i := 0; i < g.NeutralUnits; i++ {
		p := Vec2{
			X: wr.NormalRange(0.1, ew*0.1-0.1),
			Y: wr.NormalRange(0.1, eh*0.1-0.1),
		}
		if p.X > ew*0.05 {
			p.X += ew * 0.9
		}
		if p.Y > eh*0.05 {
			p.Y += eh * 0.9
		}
		p = p.Add(Vec2{X: g.BoardWidth[0], Y: g.BoardHeight[0]})
		w.addUnit(neutral, w.newUnit(KindVirus, neutral, p, 0))
	}
}

// resourcePosition rejection-samples a resource position. With near set, the
// candidate lies on a ring around center between the minimum headquarters
// distance and maxDistance; otherwise anywhere within 95% of the board.
func (w *World) resourcePosition(center Vec2, maxDistance float64, near bool) Vec2 {
	g := w.tn.Game
	res := w.tn.Resources
	wr := w.rng.World()
	x0, x1 := g.BoardWidth[0]*0.95, g.BoardWidth[1]*0.95
	y0, y1 := g.BoardHeight[0]*0.95, g.BoardHeight[1]*0.95

	var pos Vec2
	for attempt := 0; ; attempt++ {
		if attempt >= w.cfg.MaxPlacementAttempts {
			w.log.Warn().Int("attempts", attempt).Msg("resource placement constraints unsatisfiable, accepting last candidate")
			break
		}
		if near {
			h := wr.Float64(0, mathx.TwoPi)
			d := wr.Float64(res.MinDistanceToHQ, maxDistance)
			pos = center.Add(Vec2{X: d * math.Cos(h), Y: d * math.Sin(h)})
			if pos.X < x0 || pos.X > x1 || pos.Y < y0 || pos.Y > y1 {
				continue
			}
		} else {
			pos = Vec2{X: wr.Float64(x0, x1), Y: wr.Float64(y0, y1)}
		}
		if w.placementAllowed(pos) {
			break
		}
	}

	for i, p := range w.players[1:] {
		if pos.Dist(p.units[0].pos) <= res.MinDistanceToHQLimited {
			w.closeToHQ[i]++
		}
	}
	return pos
}

func (w *World) placementAllowed(pos Vec2) bool {
	g := w.tn.Game
	res := w.tn.Resources
	if pos.X < g.BoardWidth[0]+res.ReservedCorner && pos.Y < g.BoardHeight[0]+res.ReservedCorner {
		return false
	}
	for i, p := range w.players[1:] {
		d := pos.Dist(p.units[0].pos)
		if d <= res.MinDistanceToHQLimited && w.closeToHQ[i] >= res.AllowedCloseToHQ {
			return false
		}
		if d <= res.MinDistanceToHQ {
			return false
		}
	}
	for _, r := range w.resources {
		if pos.Dist(r.pos) <= res.MinDistanceToResource {
			return false
		}
	}
	return true
}

// spawnSatellite picks a border, an offset along it and a heading pointing inwards.
func (w *World) spawnSatellite() {
	g := w.tn.Game
	pos := w.tn.Positioning
	wr := w.rng.World()

	heading := wr.NormalRange(-math.Pi/2, math.Pi/2)
	border := wr.IntN(0, 3)
	heading += float64(border) * math.Pi / 2

	var p Vec2
	switch border {
	case 0, 2:
		center := (g.BoardWidth[0] + g.BoardWidth[1]) / 2
		half := (g.BoardWidth[1] - g.BoardWidth[0]) / 2
		p = Vec2{X: wr.Normal(center, 0.8*half, g.BoardWidth[0], g.BoardWidth[1]), Y: g.BoardHeight[border/2]}
	default:
		center := (g.BoardHeight[0] + g.BoardHeight[1]) / 2
		half := (g.BoardHeight[1] - g.BoardHeight[0]) / 2
		p = Vec2{X: g.BoardWidth[border%3], Y: wr.Normal(center, 0.8*half, g.BoardHeight[0], g.BoardHeight[1])}
	}

	s := &Satellite{
		id:          w.nextGID(),
		pos:         p,
		heading:     mathx.WrapHeading(heading),
		speed:       pos.SatelliteSpeed + wr.NormalRange(-0.5, 0.5),
		faultyPos:   p,
		faultySpeed: pos.SatelliteSpeed,
	}
	if wr.IntN(0, 99) < pos.ChanceFaulty {
		s.faulty = true
		s.faultySpeed += wr.Float64(-1, 1)
	}
	w.satellites = append(w.satellites, s)
}
