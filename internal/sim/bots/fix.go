package bots

import (
	"math"

	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/ranging"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/world"
)

// minFixSatellites is the number of checksum-valid ranges needed for a 2D fix.
const minFixSatellites = 3

// validRanges decodes frames and drops every frame whose checksum does not match.
func validRanges(frames [][]byte) []ranging.Measurement {
	out := make([]ranging.Measurement, 0, len(frames))
	for _, f := range frames {
		m, err := ranging.Decode(f)
		if err != nil {
			continue
		}
		out = append(out, m)
	}
	return out
}

// trilaterate solves the linearised range equations in the least squares sense,
// using the first measurement as reference. It fails on fewer than three ranges or
// when the satellites are close to collinear.
func trilaterate(ms []ranging.Measurement) (world.Vec2, bool) {
	if len(ms) < minFixSatellites {
		return world.Vec2{}, false
	}
	x0, y0, d0 := float64(ms[0].SatX), float64(ms[0].SatY), float64(ms[0].Distance)
	var a11, a12, a22, b1, b2 float64
	for _, m := range ms[1:] {
		xi, yi, di := float64(m.SatX), float64(m.SatY), float64(m.Distance)
		ax := 2 * (xi - x0)
		ay := 2 * (yi - y0)
		rhs := d0*d0 - di*di + xi*xi - x0*x0 + yi*yi - y0*y0
		a11 += ax * ax
		a12 += ax * ay
		a22 += ay * ay
		b1 += ax * rhs
		b2 += ay * rhs
	}
	det := a11*a22 - a12*a12
	if math.Abs(det) <= 1e-9*a11*a22 || a11 == 0 || a22 == 0 {
		return world.Vec2{}, false
	}
	return world.Vec2{
		X: (a22*b1 - a12*b2) / det,
		Y: (a11*b2 - a12*b1) / det,
	}, true
}
