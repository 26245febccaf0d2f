package world

import "testing"

func TestSelectAt_HitsAndKeepsOnEmptyClick(t *testing.T) {
	w := newTestWorld(t, nil, nil)
	hq := w.players[1].units[0]

	if !w.SelectAt(hq.pos.X+0.5, hq.pos.Y) {
		t.Fatalf("click on headquarters missed")
	}
	if got := w.SelectedUnit(); got != hq {
		t.Fatalf("selected %v want hq %d", w.Selected(), hq.id)
	}
	if w.SelectAt(1e6, 1e6) {
		t.Fatalf("click off board reported a hit")
	}
	if w.Selected().ID != hq.id {
		t.Fatalf("empty click cleared the selection")
	}
}

func TestSelect_UnknownAndRemovedEntities(t *testing.T) {
	w := newTestWorld(t, nil, spawnThree)
	w.Select(Selection{Kind: SelUnit, ID: 99999})
	if w.Selected().Kind != SelNone {
		t.Fatalf("unknown id selected")
	}

	r := w.resources[0]
	w.Select(Selection{Kind: SelResource, ID: r.id})
	if w.SelectedResource() != r {
		t.Fatalf("resource not selected")
	}
	r.amount = 0
	w.Step(0.01)
	if w.Selected().Kind != SelNone || w.SelectedResource() != nil {
		t.Fatalf("depleted resource still selected")
	}

	u := w.players[1].units[1]
	w.Select(Selection{Kind: SelUnit, ID: u.id})
	u.health = 0
	w.Step(0.01)
	if w.SelectedUnit() != nil {
		t.Fatalf("dead unit still selected")
	}
}

func TestSelectAt_SatelliteDrawnLastWins(t *testing.T) {
	w := newTestWorld(t, nil, nil)
	r := w.resources[0]
	w.satellites = append(w.satellites, &Satellite{id: 777, pos: r.pos})
	if !w.SelectAt(r.pos.X, r.pos.Y) {
		t.Fatalf("miss")
	}
	if got := w.Selected(); got.Kind != SelSatellite || got.ID != 777 {
		t.Fatalf("selected %+v", got)
	}
}
