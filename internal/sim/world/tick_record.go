package world

type EventType string

const (
	EventSpawned    EventType = "SPAWNED"
	EventDied       EventType = "DIED"
	EventPlayerDead EventType = "PLAYER_DEAD"
	EventDepleted   EventType = "DEPLETED"
	EventFinished   EventType = "FINISHED"
)

type Event struct {
	Type     EventType `json:"type"`
	ID       ID        `json:"id,omitempty"`
	PlayerID ID        `json:"player_id,omitempty"`
}

// TickRecord summarises one step for diagnostics sinks.
type TickRecord struct {
	RunID   string  `json:"run_id"`
	Tick    uint64  `json:"tick"`
	Elapsed float64 `json:"elapsed"`
	// Running reports whether this step advanced the simulation.
	Running    bool    `json:"running"`
	Units      int     `json:"units"`
	Resources  int     `json:"resources"`
	Satellites int     `json:"satellites"`
	Events     []Event `json:"events,omitempty"`
	Digest     string  `json:"digest"`
}

type TickSink interface {
	WriteTick(rec TickRecord) error
}

func (w *World) emit(e Event) {
	if w.tickSink == nil {
		return
	}
	w.events = append(w.events, e)
}

func (w *World) flushTick(ran bool) {
	if w.tickSink == nil {
		return
	}
	rec := TickRecord{
		RunID:      w.runID.String(),
		Tick:       w.tick - 1,
		Elapsed:    w.elapsed,
		Running:    ran,
		Units:      len(w.unitIndex),
		Resources:  len(w.resources),
		Satellites: len(w.satellites),
		Digest:     w.Digest(),
	}
	if len(w.events) > 0 {
		rec.Events = append([]Event(nil), w.events...)
		w.events = w.events[:0]
	}
	if err := w.tickSink.WriteTick(rec); err != nil {
		w.log.Warn().Err(err).Uint64("tick", rec.Tick).Msg("tick sink write failed")
	}
}
