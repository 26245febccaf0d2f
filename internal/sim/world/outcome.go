package world

import "fmt"

type OutcomeReason uint8

const (
	OutcomeNone OutcomeReason = iota
	// Every resource was collected and no unit carries cargo.
	OutcomeResourcesExhausted
	// No non-neutral player is alive.
	OutcomeAllPlayersDead
	// PvP only: a single player survived.
	OutcomeLastPlayerStanding
)

func (r OutcomeReason) String() string {
	switch r {
	case OutcomeResourcesExhausted:
		return "resources_exhausted"
	case OutcomeAllPlayersDead:
		return "all_players_dead"
	case OutcomeLastPlayerStanding:
		return "last_player_standing"
	default:
		return "none"
	}
}

type Outcome struct {
	Reason      OutcomeReason `json:"reason"`
	HasWinner   bool          `json:"has_winner"`
	WinnerID    ID            `json:"winner_id,omitempty"`
	WinnerColor Color         `json:"winner_color"`
	Tick        uint64        `json:"tick"`
	Elapsed     float64       `json:"elapsed"`
}

func (o Outcome) String() string {
	if !o.HasWinner {
		return fmt.Sprintf("%s, no winner", o.Reason)
	}
	return fmt.Sprintf("%s, winner player %d", o.Reason, o.WinnerID)
}

// Finished reports the outcome once the match has ended.
func (w *World) Finished() (Outcome, bool) { return w.outcome, w.finished }

// cleanup removes dead units, depleted resources and satellites that left the board.
func (w *World) cleanup() {
	for _, p := range w.players {
		kept := p.units[:0]
		for i, u := range p.units {
			if u.health > 0 {
				kept = append(kept, u)
				continue
			}
			w.clearSelection(SelUnit, u.id)
			delete(w.unitIndex, u.id)
			w.emit(Event{Type: EventDied, ID: u.id, PlayerID: p.id})
			if i == 0 && !p.IsNeutral() && p.alive {
				p.alive = false
				w.emit(Event{Type: EventPlayerDead, ID: p.id, PlayerID: p.id})
			}
		}
		clear(p.units[len(kept):])
		p.units = kept
	}

	keptRes := w.resources[:0]
	for _, r := range w.resources {
		if r.amount != 0 {
			keptRes = append(keptRes, r)
			continue
		}
		w.clearSelection(SelResource, r.id)
		w.emit(Event{Type: EventDepleted, ID: r.id})
	}
	clear(w.resources[len(keptRes):])
	w.resources = keptRes

	g := w.tn.Game
	keptSat := w.satellites[:0]
	for _, s := range w.satellites {
		if s.pos.X >= g.BoardWidth[0] && s.pos.X <= g.BoardWidth[1] && s.pos.Y >= g.BoardHeight[0] && s.pos.Y <= g.BoardHeight[1] {
			keptSat = append(keptSat, s)
			continue
		}
		w.clearSelection(SelSatellite, s.id)
	}
	clear(w.satellites[len(keptSat):])
	w.satellites = keptSat
}

// evaluateOutcome runs while the match is not finished. Exhaustion is checked first;
// a sole PvP survivor in the same step takes over the outcome, a wipe-out does not.
func (w *World) evaluateOutcome() {
	var out Outcome
	if len(w.resources) == 0 && !w.anyCargo() {
		out.Reason = OutcomeResourcesExhausted
		best := 0
		for _, p := range w.players[1:] {
			if s := p.collected.Sum(); s > best {
				best = s
				out.HasWinner = true
				out.WinnerID = p.id
				out.WinnerColor = p.color
			}
		}
	}

	robot := w.tn.Costs.Robot
	alive := 0
	var survivor *Player
	for _, p := range w.players[1:] {
		if p.alive && len(p.units) == 1 {
			for t := 0; t < ResourceTypeCount; t++ {
				if p.resources[t] < robot[t] {
					p.alive = false
					w.emit(Event{Type: EventPlayerDead, ID: p.id, PlayerID: p.id})
					break
				}
			}
		}
		if p.alive {
			alive++
			survivor = p
		}
	}

	switch {
	case alive == 0:
		if out.Reason == OutcomeNone {
			out.Reason = OutcomeAllPlayersDead
		}
	case w.tn.Game.EnablePvP && len(w.players) > 2 && alive == 1 && w.tn.Game.NeutralUnits == 0:
		out = Outcome{
			Reason:      OutcomeLastPlayerStanding,
			HasWinner:   true,
			WinnerID:    survivor.id,
			WinnerColor: survivor.color,
		}
	}
	if out.Reason != OutcomeNone {
		w.finish(out)
	}
}

func (w *World) finish(out Outcome) {
	out.Tick = w.tick
	out.Elapsed = w.elapsed
	w.outcome = out
	w.finished = true
	w.running = false
	w.emit(Event{Type: EventFinished, ID: out.WinnerID})
	ev := w.log.Info().Str("run", w.runID.String()).Str("reason", out.Reason.String())
	if out.HasWinner {
		ev = ev.Uint64("winner", uint64(out.WinnerID)).Str("color", out.WinnerColor.Hex())
	}
	ev.Msg("match finished")
}

func (w *World) anyCargo() bool {
	for _, p := range w.players {
		for _, u := range p.units {
			if u.cargo.Amount > 0 {
				return true
			}
		}
	}
	return false
}
