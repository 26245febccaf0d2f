package indexdb

import (
	"context"
	"database/sql"
	"errors"
)

// RunSummary joins a run with its outcome, if it finished.
type RunSummary struct {
	RunID        string `json:"run_id"`
	Seed         uint64 `json:"seed"`
	Players      int    `json:"players"`
	TuningDigest string `json:"tuning_digest"`
	Finished     bool   `json:"finished"`
	Reason       string `json:"reason,omitempty"`
	WinnerID     uint64 `json:"winner_id,omitempty"`
	Tick         uint64 `json:"tick,omitempty"`
}

type PlayerTotal struct {
	PlayerID  uint64
	Alive     bool
	Capacitor int
	Coil      int
	Resistor  int
}

var ErrNotFound = errors.New("indexdb: not found")

// Runs lists runs in start order.
func (s *SQLiteIndex) Runs(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.run_id, r.seed, r.players, r.tuning_digest,
		       o.reason, o.winner_id, o.tick
		FROM runs r LEFT JOIN outcomes o ON o.run_id = r.run_id
		ORDER BY r.started_at, r.rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			r      RunSummary
			seed   int64
			reason sql.NullString
			winner sql.NullInt64
			tick   sql.NullInt64
		)
		if err := rows.Scan(&r.RunID, &seed, &r.Players, &r.TuningDigest, &reason, &winner, &tick); err != nil {
			return nil, err
		}
		r.Seed = uint64(seed)
		if reason.Valid {
			r.Finished = true
			r.Reason = reason.String
			r.WinnerID = uint64(winner.Int64)
			r.Tick = uint64(tick.Int64)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) PlayerTotals(ctx context.Context, runID string) ([]PlayerTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT player_id, alive, capacitor, coil, resistor
		FROM player_totals WHERE run_id = ? ORDER BY player_id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlayerTotal
	for rows.Next() {
		var (
			p     PlayerTotal
			id    int64
			alive int
		)
		if err := rows.Scan(&id, &alive, &p.Capacitor, &p.Coil, &p.Resistor); err != nil {
			return nil, err
		}
		p.PlayerID = uint64(id)
		p.Alive = alive != 0
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// TickDigests returns the sampled digests of a run keyed by tick.
func (s *SQLiteIndex) TickDigests(ctx context.Context, runID string) (map[uint64]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tick, digest FROM ticks WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[uint64]string{}
	for rows.Next() {
		var (
			tick   int64
			digest string
		)
		if err := rows.Scan(&tick, &digest); err != nil {
			return nil, err
		}
		out[uint64(tick)] = digest
	}
	return out, rows.Err()
}
