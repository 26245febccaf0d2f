// Package rng provides the two deterministic random streams of a match: the world
// stream shaping map generation and environment, and the agent stream split into a
// running and a paused sub-stream.
package rng

import (
	"math/rand/v2"
	"time"
)

// Stream is a single seeded PCG generator with the distributions the simulation uses.
type Stream struct {
	r *rand.Rand
}

func NewStream(seed uint64) *Stream {
	s := &Stream{}
	s.Seed(seed)
	return s
}

func (s *Stream) Seed(seed uint64) {
	s.r = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (s *Stream) Uint64() uint64 { return s.r.Uint64() }

// IntN returns a uniform integer in [lo, hi] (both inclusive).
func (s *Stream) IntN(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.r.IntN(hi-lo+1)
}

// Float64 returns a uniform real in [lo, hi).
func (s *Stream) Float64(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + s.r.Float64()*(hi-lo)
}

// Normal draws from N(mean, stddev) until the sample falls inside [min, max].
func (s *Stream) Normal(mean, stddev, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}
	if stddev <= 0 {
		return clamp(mean, min, max)
	}
	for i := 0; i < maxRejections; i++ {
		v := mean + s.r.NormFloat64()*stddev
		if v >= min && v <= max {
			return v
		}
	}
	return clamp(mean, min, max)
}

// NormalRange is Normal centred on the midpoint of [min, max] with stddev (max-min)/6.
func (s *Stream) NormalRange(min, max float64) float64 {
	return s.Normal((min+max)/2, (max-min)/6, min, max)
}

// Bounded rejection sampling gives up after this many tries and returns the clamped mean.
const maxRejections = 1 << 16

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Provider owns the world stream and both agent sub-streams of one simulation.
type Provider struct {
	world   *Stream
	running *Stream
	paused  *Stream
	seed    uint64
}

func NewProvider(seed uint64) *Provider {
	p := &Provider{
		world:   NewStream(0),
		running: NewStream(0),
		paused:  NewStream(0),
	}
	p.Reset(true, seed)
	return p
}

// Reset seeds the world stream from seed (or the wall clock when useSeed is false)
// and derives the running and paused agent sub-streams from it, in that order.
func (p *Provider) Reset(useSeed bool, seed uint64) {
	if !useSeed {
		seed = uint64(time.Now().UnixNano())
	}
	p.seed = seed
	p.world.Seed(seed)
	p.running.Seed(p.world.Uint64())
	p.paused.Seed(p.world.Uint64())
}

// Seed reports the seed the world stream was last reset with.
func (p *Provider) Seed() uint64 { return p.seed }

func (p *Provider) World() *Stream { return p.world }

// Agent returns the running sub-stream while the simulation runs, else the paused one.
func (p *Provider) Agent(running bool) *Stream {
	if running {
		return p.running
	}
	return p.paused
}
