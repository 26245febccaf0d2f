package mathx

import (
	"math"
	"testing"
)

func TestWrapHeading(t *testing.T) {
	inputs := []float64{0, 1, -1, TwoPi, -TwoPi, 7 * math.Pi, -7 * math.Pi, 1e9, -1e9, -1e-18, math.NaN(), math.Inf(1)}
	for _, in := range inputs {
		got := WrapHeading(in)
		if got < 0 || got >= TwoPi {
			t.Fatalf("WrapHeading(%v)=%v out of [0,2pi)", in, got)
		}
	}
	if got := WrapHeading(-math.Pi / 2); math.Abs(got-1.5*math.Pi) > 1e-12 {
		t.Fatalf("WrapHeading(-pi/2)=%v", got)
	}
}

func TestBearing_NorthReferenced(t *testing.T) {
	o := Vec2{}
	cases := []struct {
		to   Vec2
		want float64
	}{
		{Vec2{0, 1}, 0},
		{Vec2{-1, 0}, math.Pi / 2},
		{Vec2{0, -1}, math.Pi},
		{Vec2{1, 0}, 1.5 * math.Pi},
	}
	for _, c := range cases {
		if got := Bearing(o, c.to); math.Abs(got-c.want) > 1e-12 {
			t.Fatalf("Bearing to %+v = %v want %v", c.to, got, c.want)
		}
	}
}

func TestBearing_Symmetry(t *testing.T) {
	pts := []Vec2{{1, 2}, {-30, 4.5}, {17, -80}, {0.001, 0}}
	for _, a := range pts {
		for _, b := range pts {
			if a == b {
				continue
			}
			if d := AngleDiff(Bearing(a, b), Bearing(b, a)); math.Abs(d-math.Pi) > 1e-9 {
				t.Fatalf("bearings %v->%v differ by %v", a, b, d)
			}
		}
	}
}

func TestDirection_MatchesBearing(t *testing.T) {
	for _, h := range []float64{0, 0.3, 2, 4, 6} {
		p := Direction(h).Scale(10)
		if d := AngleDiff(Bearing(Vec2{}, p), h); d > 1e-9 {
			t.Fatalf("heading %v: moving along it gives bearing off by %v", h, d)
		}
	}
}
