package indexdb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/tuning"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/world"
)

func TestSQLiteIndex_RecordsRunOutcomeAndTicks(t *testing.T) {
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "index", "robonav.sqlite"), Options{TickEvery: 2})
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer func() { _ = idx.Close() }()

	tn := tuning.Defaults()
	tn.Game.NumPlayers = 2
	tn.Game.Seed = 9
	tn.Resources.Starting = tuning.PerType{}
	w, err := world.New(world.WorldConfig{Tuning: tn})
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	w.SetTickSink(idx)
	idx.RunStarted(w)

	// A paused world keeps stepping so satellites exist before the broke players die.
	for i := 0; i < 3; i++ {
		w.Step(tn.Game.UpdateTimeStep)
	}
	out, done := w.Finished()
	if !done {
		t.Fatalf("expected match over")
	}
	idx.RunFinished(w, out)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := idx.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}

	runs, err := idx.Runs(ctx)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs=%+v", runs)
	}
	r := runs[0]
	if r.RunID != w.RunID().String() || r.Seed != 9 || r.Players != 2 || len(r.TuningDigest) != 64 {
		t.Fatalf("run=%+v", r)
	}
	if !r.Finished || r.Reason != "all_players_dead" || r.WinnerID != 0 {
		t.Fatalf("outcome=%+v", r)
	}

	totals, err := idx.PlayerTotals(ctx, r.RunID)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if len(totals) != 2 || totals[0].Alive || totals[0].PlayerID >= totals[1].PlayerID {
		t.Fatalf("totals=%+v", totals)
	}
	if _, err := idx.PlayerTotals(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing run err=%v", err)
	}

	digests, err := idx.TickDigests(ctx, r.RunID)
	if err != nil {
		t.Fatalf("digests: %v", err)
	}
	if len(digests) != 2 || digests[0] == "" || digests[2] == "" {
		t.Fatalf("digests=%v want ticks 0 and 2", digests)
	}
	if digests[2] != w.Digest() {
		t.Fatalf("last sampled digest does not match the world")
	}
}

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1), tickEvery: 1}
	s.ch <- req{kind: reqTick, tick: world.TickRecord{Tick: 1}}

	_ = s.WriteTick(world.TickRecord{Tick: 2})
	_ = s.WriteTick(world.TickRecord{Tick: 3})

	st := s.Stats()
	if st.DropTickTotal != 2 {
		t.Fatalf("DropTickTotal=%d want=2", st.DropTickTotal)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}

func TestSQLiteIndex_ClosedIsNoop(t *testing.T) {
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "x.sqlite"), Options{})
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if err := idx.WriteTick(world.TickRecord{}); err != nil {
		t.Fatalf("write after close: %v", err)
	}
	if err := idx.Flush(context.Background()); err != nil {
		t.Fatalf("flush after close: %v", err)
	}
	if _, err := OpenSQLite("", Options{}); err == nil {
		t.Fatalf("empty path accepted")
	}
}
