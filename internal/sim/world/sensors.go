package world

import (
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/ranging"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/tuning"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/world/logic/mathx"
)

// refreshSensors runs every step regardless of run state.
func (w *World) refreshSensors(u *Unit) {
	u.unitScan = u.unitScan[:0]
	for _, p := range w.players {
		for _, o := range p.units {
			if o.id == u.id {
				continue
			}
			d := u.pos.Dist(o.pos)
			if d > u.scanRange {
				continue
			}
			u.unitScan = append(u.unitScan, UnitScan{
				PlayerID: p.id,
				UnitID:   o.id,
				Heading:  mathx.Bearing(u.pos, o.pos),
				Distance: d,
				Health:   o.health,
				IsHQ:     o.IsHeadquarters(),
			})
		}
	}

	// Neutral units neither gather nor navigate by satellite.
	if u.owner.IsNeutral() {
		return
	}

	u.resourceScan = u.resourceScan[:0]
	for _, r := range w.resources {
		d := u.pos.Dist(r.pos)
		if d > u.scanRange {
			continue
		}
		u.resourceScan = append(u.resourceScan, ResourceScan{
			ResourceID: r.id,
			Heading:    mathx.Bearing(u.pos, r.pos),
			Distance:   d,
			Type:       r.typ,
			Amount:     r.amount,
		})
	}

	u.satFrames = u.satFrames[:0]
	u.satCount = 0
	pos := w.tn.Positioning
	for _, s := range w.satellites {
		d := u.pos.Dist(s.SignalPos())
		if d > pos.VisibilityRange {
			continue
		}
		if !s.faulty {
			u.satCount++
		}
		u.satFrames = append(u.satFrames, w.rangingFrame(u, s, d))
	}
}

// rangingFrame draws filler lengths, filler bytes and the checksum corruption from
// the agent stream in that order.
func (w *World) rangingFrame(u *Unit, s *Satellite, d float64) []byte {
	r := w.agentRand()
	pos := w.tn.Positioning
	d += tuning.SpeedOfLight * u.clockOffset

	var pre, post int
	if r.IntN(0, 99) < pos.ChanceRngBytes {
		pre = r.IntN(0, pos.MaxFillerBytes)
		post = r.IntN(0, pos.MaxFillerBytes)
	}
	prefix := make([]byte, pre)
	for i := range prefix {
		prefix[i] = byte(r.IntN(0, 255))
	}
	var corrupt uint16
	if s.faulty {
		corrupt = uint16(r.IntN(1, 0xffff))
	}
	frame := ranging.Encode(ranging.Measurement{
		Distance: float32(d),
		SatX:     float32(s.pos.X),
		SatY:     float32(s.pos.Y),
	}, corrupt)
	suffix := make([]byte, post)
	for i := range suffix {
		suffix[i] = byte(r.IntN(0, 255))
	}
	return ranging.Wrap(frame, prefix, suffix)
}
