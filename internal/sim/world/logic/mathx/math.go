package mathx

import "math"

const TwoPi = 2 * math.Pi

type Vec2 struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

func (a Vec2) Add(b Vec2) Vec2      { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2      { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Scale(k float64) Vec2 { return Vec2{a.X * k, a.Y * k} }
func (a Vec2) Len() float64         { return math.Hypot(a.X, a.Y) }
func (a Vec2) Dist(b Vec2) float64  { return b.Sub(a).Len() }

func (a Vec2) Within(b Vec2, r float64) bool {
	d := b.Sub(a)
	return d.X*d.X+d.Y*d.Y <= r*r
}

// WrapHeading maps any angle into [0, 2pi).
func WrapHeading(h float64) float64 {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0
	}
	h = math.Mod(h, TwoPi)
	if h < 0 {
		h += TwoPi
	}
	if h >= TwoPi {
		// -tiny + 2pi rounds up to 2pi.
		h = 0
	}
	return h
}

// Bearing is the heading from a to b measured from North, counter-clockwise positive.
func Bearing(a, b Vec2) float64 {
	d := b.Sub(a)
	return WrapHeading(math.Atan2(-d.X, d.Y))
}

// Direction is the unit vector of a North-referenced heading.
func Direction(h float64) Vec2 {
	return Vec2{math.Cos(h + math.Pi/2), math.Sin(h + math.Pi/2)}
}

// AngleDiff returns the absolute angular distance between two headings in [0, pi].
func AngleDiff(a, b float64) float64 {
	d := WrapHeading(a - b)
	if d > math.Pi {
		d = TwoPi - d
	}
	return d
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Deg(rad float64) float64 { return rad * 180 / math.Pi }
