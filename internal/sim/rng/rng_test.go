package rng

import "testing"

func TestProvider_SameSeedSameStreams(t *testing.T) {
	a := NewProvider(42)
	b := NewProvider(42)
	for i := 0; i < 100; i++ {
		if x, y := a.World().Uint64(), b.World().Uint64(); x != y {
			t.Fatalf("world draw %d: %d vs %d", i, x, y)
		}
		if x, y := a.Agent(true).Float64(0, 1), b.Agent(true).Float64(0, 1); x != y {
			t.Fatalf("running draw %d: %v vs %v", i, x, y)
		}
		if x, y := a.Agent(false).IntN(0, 99), b.Agent(false).IntN(0, 99); x != y {
			t.Fatalf("paused draw %d: %d vs %d", i, x, y)
		}
	}
}

func TestProvider_AgentStreamsIndependent(t *testing.T) {
	p := NewProvider(7)
	q := NewProvider(7)
	// Draining the paused stream must not shift the running one.
	for i := 0; i < 50; i++ {
		p.Agent(false).Uint64()
	}
	for i := 0; i < 50; i++ {
		if x, y := p.Agent(true).Uint64(), q.Agent(true).Uint64(); x != y {
			t.Fatalf("running stream perturbed at %d", i)
		}
	}
	if p.Agent(true) == p.Agent(false) {
		t.Fatalf("running and paused streams alias")
	}
}

func TestProvider_ResetRestartsSequence(t *testing.T) {
	p := NewProvider(11)
	first := p.Agent(true).Uint64()
	p.World().Uint64()
	p.Reset(true, 11)
	if got := p.Agent(true).Uint64(); got != first {
		t.Fatalf("reset did not restart agent stream: %d vs %d", got, first)
	}
	if p.Seed() != 11 {
		t.Fatalf("seed=%d", p.Seed())
	}
}

func TestStream_Bounds(t *testing.T) {
	s := NewStream(3)
	for i := 0; i < 10000; i++ {
		if v := s.IntN(1, 6); v < 1 || v > 6 {
			t.Fatalf("IntN out of range: %d", v)
		}
		if v := s.Float64(-2, 2); v < -2 || v >= 2 {
			t.Fatalf("Float64 out of range: %v", v)
		}
		if v := s.Normal(0, 10, -1, 1); v < -1 || v > 1 {
			t.Fatalf("Normal out of range: %v", v)
		}
		if v := s.NormalRange(20, 60); v < 20 || v > 60 {
			t.Fatalf("NormalRange out of range: %v", v)
		}
	}
	if v := s.IntN(5, 5); v != 5 {
		t.Fatalf("degenerate IntN=%d", v)
	}
	if v := s.Normal(3, 0, 0, 1); v != 1 {
		t.Fatalf("zero stddev should clamp mean, got %v", v)
	}
}

func TestStream_IntNCoversRange(t *testing.T) {
	s := NewStream(9)
	seen := map[int]bool{}
	for i := 0; i < 1000; i++ {
		seen[s.IntN(0, 3)] = true
	}
	for v := 0; v <= 3; v++ {
		if !seen[v] {
			t.Fatalf("value %d never drawn", v)
		}
	}
}
