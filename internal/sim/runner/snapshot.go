package runner

import (
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/protocol"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/world"
)

// Snapshot converts the world into a STATE frame. It must run on the goroutine that
// owns the world.
func Snapshot(w *world.World, speed float64, withScans bool) protocol.StateMsg {
	tn := w.Tuning()
	msg := protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		RunID:           w.RunID().String(),
		Seed:            w.Seed(),
		Tick:            w.Tick(),
		Elapsed:         w.Elapsed(),
		Running:         w.Running(),
		Speed:           speed,
		Board:           protocol.Board{Width: tn.Game.BoardWidth, Height: tn.Game.BoardHeight},
		Players:         make([]protocol.PlayerState, 0, len(w.Players())),
		Resources:       make([]protocol.ResourceState, 0, len(w.Resources())),
		Satellites:      make([]protocol.SatelliteState, 0, len(w.Satellites())),
	}
	if out, done := w.Finished(); done {
		msg.Finished = true
		o := &protocol.OutcomeState{Reason: out.Reason.String(), Tick: out.Tick}
		if out.HasWinner {
			o.WinnerID = uint64(out.WinnerID)
			o.WinnerColor = out.WinnerColor.Hex()
		}
		msg.Outcome = o
	}
	if sel := w.Selected(); sel.Kind != world.SelNone {
		msg.Selection = &protocol.SelectionRef{Kind: sel.Kind.String(), ID: uint64(sel.ID)}
	}

	for _, p := range w.Players() {
		ps := protocol.PlayerState{
			ID:        uint64(p.ID()),
			Name:      p.Name(),
			Color:     p.Color().Hex(),
			Neutral:   p.IsNeutral(),
			Alive:     p.Alive(),
			Resources: p.Resources(),
			Collected: p.Collected(),
			Units:     make([]protocol.UnitState, 0, len(p.Units())),
		}
		for _, u := range p.Units() {
			ps.Units = append(ps.Units, unitState(u, withScans))
		}
		msg.Players = append(msg.Players, ps)
	}
	for _, r := range w.Resources() {
		msg.Resources = append(msg.Resources, protocol.ResourceState{
			ID:      uint64(r.ID()),
			Type:    r.Type().String(),
			Amount:  r.Amount(),
			Pos:     [2]float64{r.Pos().X, r.Pos().Y},
			Heading: r.Heading(),
		})
	}
	for _, s := range w.Satellites() {
		msg.Satellites = append(msg.Satellites, protocol.SatelliteState{
			ID:      uint64(s.ID()),
			Pos:     [2]float64{s.Pos().X, s.Pos().Y},
			Heading: s.Heading(),
			Speed:   s.Speed(),
			Faulty:  s.Faulty(),
		})
	}
	return msg
}

func unitState(u *world.Unit, withScans bool) protocol.UnitState {
	us := protocol.UnitState{
		ID:         uint64(u.ID()),
		Kind:       u.Kind().String(),
		Pos:        [2]float64{u.Pos().X, u.Pos().Y},
		Heading:    u.Heading(),
		Health:     u.Health(),
		MaxHealth:  u.MaxHealth(),
		Action:     u.LastAction().String(),
		Reloading:  u.Reloading(),
		Satellites: u.SatelliteCount(),
	}
	if c := u.Cargo(); c.Amount > 0 {
		us.Cargo = c.Amount
		us.CargoType = c.Type.String()
	}
	if !withScans {
		return us
	}
	sc := &protocol.UnitScans{
		Units:     make([]protocol.ScanHit, 0, len(u.ScannedUnits())),
		Resources: make([]protocol.ScanHit, 0, len(u.ScannedResources())),
	}
	for _, s := range u.ScannedUnits() {
		sc.Units = append(sc.Units, protocol.ScanHit{ID: uint64(s.UnitID), Heading: s.Heading, Distance: s.Distance})
	}
	for _, s := range u.ScannedResources() {
		sc.Resources = append(sc.Resources, protocol.ScanHit{ID: uint64(s.ResourceID), Heading: s.Heading, Distance: s.Distance})
	}
	for _, f := range u.SatelliteMeasurements() {
		sc.Frames = append(sc.Frames, append([]byte(nil), f...))
	}
	us.Scans = sc
	return us
}
