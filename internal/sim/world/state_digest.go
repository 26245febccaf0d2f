package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
)

// Digest hashes the full simulation state. Two worlds with the same seed fed the
// same steps and pause toggles produce the same digest at every tick.
func (w *World) Digest() string {
	h := sha256.New()
	var tmp [8]byte

	w.digestHeader(h, &tmp)
	w.digestPlayers(h, &tmp)
	w.digestResources(h, &tmp)
	w.digestSatellites(h, &tmp)

	return hex.EncodeToString(h.Sum(nil))
}

func digestWriteU64(h hash.Hash, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteF64(h hash.Hash, tmp *[8]byte, v float64) {
	digestWriteU64(h, tmp, math.Float64bits(v))
}

func digestWriteVec(h hash.Hash, tmp *[8]byte, v Vec2) {
	digestWriteF64(h, tmp, v.X)
	digestWriteF64(h, tmp, v.Y)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func (w *World) digestHeader(h hash.Hash, tmp *[8]byte) {
	digestWriteU64(h, tmp, w.tick)
	digestWriteU64(h, tmp, w.rng.Seed())
	digestWriteU64(h, tmp, uint64(w.nextID))
	digestWriteF64(h, tmp, w.elapsed)
	h.Write([]byte{boolByte(w.running), boolByte(w.finished), byte(w.outcome.Reason)})
	digestWriteU64(h, tmp, uint64(w.outcome.WinnerID))
}

func (w *World) digestPlayers(h hash.Hash, tmp *[8]byte) {
	for _, p := range w.players {
		digestWriteU64(h, tmp, uint64(p.id))
		h.Write([]byte{boolByte(p.alive)})
		for t := 0; t < ResourceTypeCount; t++ {
			digestWriteU64(h, tmp, uint64(p.resources[t]))
			digestWriteU64(h, tmp, uint64(p.collected[t]))
		}
		digestWriteU64(h, tmp, uint64(len(p.units)))
		for _, u := range p.units {
			digestWriteU64(h, tmp, uint64(u.id))
			h.Write([]byte{byte(u.kind), byte(u.action), byte(u.lastAction), byte(u.cargo.Type)})
			digestWriteU64(h, tmp, uint64(u.target))
			digestWriteVec(h, tmp, u.pos)
			digestWriteF64(h, tmp, u.heading)
			digestWriteF64(h, tmp, u.health)
			digestWriteF64(h, tmp, u.maxHealth)
			digestWriteF64(h, tmp, u.attackBlock)
			digestWriteU64(h, tmp, uint64(u.cargo.Amount))
			digestWriteU64(h, tmp, uint64(u.satCount))
			if vb, ok := u.brain.(*virusBrain); ok {
				h.Write([]byte{byte(vb.state)})
				digestWriteU64(h, tmp, uint64(vb.target))
				digestWriteF64(h, tmp, vb.fleeTime)
			}
		}
	}
}

func (w *World) digestResources(h hash.Hash, tmp *[8]byte) {
	digestWriteU64(h, tmp, uint64(len(w.resources)))
	for _, r := range w.resources {
		digestWriteU64(h, tmp, uint64(r.id))
		h.Write([]byte{byte(r.typ)})
		digestWriteU64(h, tmp, uint64(r.amount))
		digestWriteVec(h, tmp, r.pos)
	}
}

func (w *World) digestSatellites(h hash.Hash, tmp *[8]byte) {
	digestWriteU64(h, tmp, uint64(len(w.satellites)))
	for _, s := range w.satellites {
		digestWriteU64(h, tmp, uint64(s.id))
		h.Write([]byte{boolByte(s.faulty)})
		digestWriteVec(h, tmp, s.pos)
		digestWriteVec(h, tmp, s.faultyPos)
		digestWriteF64(h, tmp, s.heading)
		digestWriteF64(h, tmp, s.speed)
		digestWriteF64(h, tmp, s.faultySpeed)
	}
}
