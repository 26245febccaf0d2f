package world

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/rng"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/tuning"
)

// World is a single-threaded simulation of one match.
// All state must be accessed only from the goroutine driving Step.
type World struct {
	cfg WorldConfig
	tn  tuning.Tuning
	log zerolog.Logger
	rng *rng.Provider

	runID   uuid.UUID
	nextID  ID
	tick    uint64
	elapsed float64

	players    []*Player
	unitIndex  map[ID]*Unit
	resources  []*Resource
	satellites []*Satellite
	// Resources placed within the relaxed radius of each player's headquarters.
	closeToHQ []int

	running  bool
	finished bool
	outcome  Outcome

	selection Selection

	// Optional sink (may be nil). Implemented in internal/persistence/log.
	tickSink TickSink
	events   []Event
}

// New builds a world and runs Start. The world starts paused.
func New(cfg WorldConfig) (*World, error) {
	cfg.applyDefaults()
	if err := cfg.Tuning.Validate(); err != nil {
		return nil, err
	}
	w := &World{
		cfg: cfg,
		tn:  cfg.Tuning,
		log: *cfg.Logger,
		rng: rng.NewProvider(cfg.Tuning.Game.Seed),
	}
	w.Start()
	return w, nil
}

func (w *World) SetTickSink(s TickSink) { w.tickSink = s }

// Start discards all entities, reseeds the random streams and generates a new match.
func (w *World) Start() {
	w.nextID = 1
	w.tick = 0
	w.elapsed = 0
	w.players = nil
	w.unitIndex = map[ID]*Unit{}
	w.resources = nil
	w.satellites = nil
	w.closeToHQ = nil
	w.selection = Selection{}
	w.finished = false
	w.outcome = Outcome{}
	w.events = w.events[:0]
	w.runID = uuid.New()

	w.rng.Reset(w.tn.Game.UseSeed, w.tn.Game.Seed)
	w.running = false

	w.generate()

	w.log.Info().
		Str("run", w.runID.String()).
		Uint64("seed", w.rng.Seed()).
		Int("players", len(w.players)-1).
		Int("resources", len(w.resources)).
		Msg("world started")
}

// Reset is Start under the name the control surface uses.
func (w *World) Reset() { w.Start() }

// Step advances the simulation by dt seconds. Sensors refresh even while paused.
func (w *World) Step(dt float64) {
	wasRunning := w.running
	for len(w.satellites) < w.tn.Positioning.NumSatellites {
		w.spawnSatellite()
	}
	if w.running {
		for _, s := range w.satellites {
			s.advance(dt)
		}
	}

	for _, p := range w.players {
		if w.running && p.strategy != nil {
			p.strategy.Think(&ThinkContext{w: w, p: p}, dt)
		}
		for _, u := range p.units {
			w.refreshSensors(u)
			if w.running && p.alive {
				w.updateUnit(u, dt)
			}
		}
	}

	if wasRunning {
		w.elapsed += dt
	}

	w.cleanup()
	if !w.finished {
		w.evaluateOutcome()
	}

	w.tick++
	w.flushTick(wasRunning)
}

func (w *World) nextGID() ID {
	id := w.nextID
	w.nextID++
	return id
}

func (w *World) agentRand() *rng.Stream { return w.rng.Agent(w.running) }

func (w *World) Running() bool { return w.running }

// SetRunning pauses or resumes. A finished match cannot be resumed.
func (w *World) SetRunning(running bool) {
	if running && w.finished {
		return
	}
	w.running = running
}

func (w *World) Tick() uint64          { return w.tick }
func (w *World) Elapsed() float64      { return w.elapsed }
func (w *World) RunID() uuid.UUID      { return w.runID }
func (w *World) Seed() uint64          { return w.rng.Seed() }
func (w *World) Tuning() tuning.Tuning { return w.tn }

// Players returns every player in creation order; index 0 is the neutral player.
func (w *World) Players() []*Player { return w.players }

func (w *World) Resources() []*Resource { return w.resources }

func (w *World) Satellites() []*Satellite { return w.satellites }

func (w *World) Player(id ID) *Player {
	for _, p := range w.players {
		if p.id == id {
			return p
		}
	}
	return nil
}

func (w *World) Unit(id ID) *Unit { return w.unitIndex[id] }

func (w *World) Resource(id ID) *Resource {
	for _, r := range w.resources {
		if r.id == id {
			return r
		}
	}
	return nil
}

func (w *World) Satellite(id ID) *Satellite {
	for _, s := range w.satellites {
		if s.id == id {
			return s
		}
	}
	return nil
}

// UnitCount counts the units of every player including the neutral one.
func (w *World) UnitCount() int { return len(w.unitIndex) }
