package world

import (
	"testing"

	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/tuning"
)

func TestGenerate_PlayersAndUnits(t *testing.T) {
	w := newTestWorld(t, func(tn *tuning.Tuning) {
		tn.Game.NumPlayers = 3
		tn.Game.NeutralUnits = 2
	}, spawnThree)

	if len(w.players) != 4 {
		t.Fatalf("players=%d want neutral plus 3", len(w.players))
	}
	neutral := w.players[0]
	if !neutral.IsNeutral() || len(neutral.units) != 2 || neutral.HQ() != nil {
		t.Fatalf("neutral player malformed: units=%d", len(neutral.units))
	}
	for _, v := range neutral.units {
		if v.kind != KindVirus {
			t.Fatalf("neutral unit kind %v", v.kind)
		}
	}

	seen := map[Color]bool{}
	for _, p := range w.players[1:] {
		if !p.alive || p.resources != (Amounts{10, 10, 10}) {
			t.Fatalf("player %d alive=%v resources=%v", p.id, p.alive, p.resources)
		}
		if len(p.units) != 4 || p.units[0].kind != KindHeadquarters || p.HQ() != p.units[0] {
			t.Fatalf("player %d units malformed", p.id)
		}
		if p.units[0].pos != p.hqPos {
			t.Fatalf("hq pos %v want %v", p.units[0].pos, p.hqPos)
		}
		for _, u := range p.units[1:] {
			if u.kind != KindRobot {
				t.Fatalf("unit kind %v", u.kind)
			}
			if d := u.pos.Dist(p.hqPos); d < 3-1e-9 || d > 3+1e-9 {
				t.Fatalf("robot spawned %v from hq", d)
			}
		}
		if seen[p.color] {
			t.Fatalf("duplicate color %s", p.color.Hex())
		}
		seen[p.color] = true
	}
	if w.UnitCount() != 2+3*4 {
		t.Fatalf("unit index size %d", w.UnitCount())
	}
}

func TestGenerate_ResourcePlacement(t *testing.T) {
	w := newTestWorld(t, nil, nil)
	tn := w.tn
	hq := w.players[1].hqPos
	if len(w.resources) < ResourceTypeCount {
		t.Fatalf("resources=%d", len(w.resources))
	}

	var perType [ResourceTypeCount]int
	for i, r := range w.resources {
		perType[r.typ]++
		if r.amount <= 0 {
			t.Fatalf("resource %d amount %d", r.id, r.amount)
		}
		if r.pos.X < tn.Game.BoardWidth[0] || r.pos.X > tn.Game.BoardWidth[1] ||
			r.pos.Y < tn.Game.BoardHeight[0] || r.pos.Y > tn.Game.BoardHeight[1] {
			t.Fatalf("resource %d off board at %v", r.id, r.pos)
		}
		if r.pos.X < tn.Game.BoardWidth[0]+tn.Resources.ReservedCorner && r.pos.Y < tn.Game.BoardHeight[0]+tn.Resources.ReservedCorner {
			t.Fatalf("resource %d in reserved corner", r.id)
		}
		if d := r.pos.Dist(hq); d <= tn.Resources.MinDistanceToHQ {
			t.Fatalf("resource %d only %v from hq", r.id, d)
		}
		for _, o := range w.resources[i+1:] {
			if d := r.pos.Dist(o.pos); d <= tn.Resources.MinDistanceToResource {
				t.Fatalf("resources %d and %d only %v apart", r.id, o.id, d)
			}
		}
	}
	for typ, n := range perType {
		if n == 0 {
			t.Fatalf("no resource of type %v", ResourceType(typ))
		}
	}

	// The first resource of each type is the near-headquarters one.
	for typ := 0; typ < ResourceTypeCount; typ++ {
		if d := w.resources[typ].pos.Dist(hq); d > tn.Resources.MinDistanceToHQLimited {
			t.Fatalf("near resource %d at %v from hq", typ, d)
		}
	}
}

func TestGenerate_SatellitesFillOnStep(t *testing.T) {
	w := newTestWorld(t, nil, nil)
	if len(w.satellites) != 0 {
		t.Fatalf("satellites before first step: %d", len(w.satellites))
	}
	w.Step(0.01)
	if len(w.satellites) != w.tn.Positioning.NumSatellites {
		t.Fatalf("satellites=%d want %d", len(w.satellites), w.tn.Positioning.NumSatellites)
	}
	g := w.tn.Game
	for _, s := range w.satellites {
		onBorder := s.pos.X == g.BoardWidth[0] || s.pos.X == g.BoardWidth[1] ||
			s.pos.Y == g.BoardHeight[0] || s.pos.Y == g.BoardHeight[1]
		if !onBorder {
			t.Fatalf("paused satellite left the border: %v", s.pos)
		}
		if s.speed < 7.5 || s.speed > 8.5 {
			t.Fatalf("satellite speed %v", s.speed)
		}
	}
}
