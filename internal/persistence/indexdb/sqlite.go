package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/world"
)

// SQLiteIndex is a queryable read model of matches. Writes are queued to a single
// writer goroutine and dropped when it falls behind; the simulation never waits.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	// Tick rows are sampled; 0 disables them.
	tickEvery uint64

	dropTick  atomic.Uint64
	dropRun   atomic.Uint64
	dropFinal atomic.Uint64
}

type reqKind int

const (
	reqTick reqKind = iota + 1
	reqRun
	reqOutcome
	reqFlush
)

type req struct {
	kind reqKind

	tick    world.TickRecord
	run     runRow
	outcome outcomeRow
	done    chan struct{}
}

type runRow struct {
	RunID        string
	Seed         uint64
	Players      int
	TuningDigest string
	TuningJSON   []byte
	StartedAt    string
}

type outcomeRow struct {
	RunID       string
	Tick        uint64
	Elapsed     float64
	Reason      string
	WinnerID    uint64
	WinnerColor string
	Totals      []totalRow
	RecordedAt  string
}

type totalRow struct {
	PlayerID uint64
	Alive    bool
	Amounts  world.Amounts
}

type Options struct {
	// TickEvery samples one tick row per this many ticks (0: no tick rows).
	TickEvery int
	// Queue is the writer queue capacity.
	Queue int
}

func OpenSQLite(path string, opts Options) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if opts.Queue <= 0 {
		opts.Queue = 65536
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db:        db,
		ch:        make(chan req, opts.Queue),
		tickEvery: uint64(max(opts.TickEvery, 0)),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	// NORMAL is a decent durability/perf tradeoff for a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tunings (
			digest TEXT PRIMARY KEY,
			json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			players INTEGER NOT NULL,
			tuning_digest TEXT NOT NULL,
			started_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			run_id TEXT PRIMARY KEY,
			tick INTEGER NOT NULL,
			elapsed REAL NOT NULL,
			reason TEXT NOT NULL,
			winner_id INTEGER,
			winner_color TEXT,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS player_totals (
			run_id TEXT NOT NULL,
			player_id INTEGER NOT NULL,
			alive INTEGER NOT NULL,
			capacitor INTEGER NOT NULL,
			coil INTEGER NOT NULL,
			resistor INTEGER NOT NULL,
			PRIMARY KEY (run_id, player_id)
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			run_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			digest TEXT NOT NULL,
			units INTEGER NOT NULL,
			resources INTEGER NOT NULL,
			satellites INTEGER NOT NULL,
			events INTEGER NOT NULL,
			PRIMARY KEY (run_id, tick)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_reason ON outcomes(reason);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// Flush waits until every queued write is committed.
func (s *SQLiteIndex) Flush(ctx context.Context) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	done := make(chan struct{})
	select {
	case s.ch <- req{kind: reqFlush, done: done}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WriteTick implements world.TickSink.
func (s *SQLiteIndex) WriteTick(rec world.TickRecord) error {
	if s == nil || s.closed.Load() || s.tickEvery == 0 || rec.Tick%s.tickEvery != 0 {
		return nil
	}
	select {
	case s.ch <- req{kind: reqTick, tick: rec}:
	default:
		// Drop if the indexer falls behind; JSONL logs remain the source of truth.
		s.dropTick.Add(1)
	}
	return nil
}

// RunStarted records the match header and the tuning it was generated with.
func (s *SQLiteIndex) RunStarted(w *world.World) {
	if s == nil || s.closed.Load() {
		return
	}
	// Tuning: store the values we actually apply (canonical JSON).
	b, _ := json.Marshal(w.Tuning())
	sum := sha256.Sum256(b)
	r := runRow{
		RunID:        w.RunID().String(),
		Seed:         w.Seed(),
		Players:      len(w.Players()) - 1,
		TuningDigest: hex.EncodeToString(sum[:]),
		TuningJSON:   b,
		StartedAt:    time.Now().UTC().Format(time.RFC3339Nano),
	}
	select {
	case s.ch <- req{kind: reqRun, run: r}:
	default:
		s.dropRun.Add(1)
	}
}

// RunFinished records the outcome and every player's lifetime totals.
func (s *SQLiteIndex) RunFinished(w *world.World, out world.Outcome) {
	if s == nil || s.closed.Load() {
		return
	}
	r := outcomeRow{
		RunID:      w.RunID().String(),
		Tick:       out.Tick,
		Elapsed:    out.Elapsed,
		Reason:     out.Reason.String(),
		RecordedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if out.HasWinner {
		r.WinnerID = uint64(out.WinnerID)
		r.WinnerColor = out.WinnerColor.Hex()
	}
	for _, p := range w.Players() {
		if p.IsNeutral() {
			continue
		}
		r.Totals = append(r.Totals, totalRow{PlayerID: uint64(p.ID()), Alive: p.Alive(), Amounts: p.Collected()})
	}
	select {
	case s.ch <- req{kind: reqOutcome, outcome: r}:
	default:
		s.dropFinal.Add(1)
	}
}

type Stats struct {
	QueueDepth       int
	QueueCapacity    int
	DropTickTotal    uint64
	DropRunTotal     uint64
	DropOutcomeTotal uint64
}

func (s *SQLiteIndex) Stats() Stats {
	return Stats{
		QueueDepth:       len(s.ch),
		QueueCapacity:    cap(s.ch),
		DropTickTotal:    s.dropTick.Load(),
		DropRunTotal:     s.dropRun.Load(),
		DropOutcomeTotal: s.dropFinal.Load(),
	}
}

func nullableID(id uint64) any {
	if id == 0 {
		return nil
	}
	return int64(id)
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	// Prepared statements (on db; executed within tx).
	insertTuning, _ := s.db.Prepare(`INSERT OR IGNORE INTO tunings(digest,json) VALUES(?,?)`)
	insertRun, _ := s.db.Prepare(`INSERT OR REPLACE INTO runs(run_id,seed,players,tuning_digest,started_at) VALUES(?,?,?,?,?)`)
	insertOutcome, _ := s.db.Prepare(`INSERT OR REPLACE INTO outcomes(run_id,tick,elapsed,reason,winner_id,winner_color,recorded_at) VALUES(?,?,?,?,?,?,?)`)
	insertTotal, _ := s.db.Prepare(`INSERT OR REPLACE INTO player_totals(run_id,player_id,alive,capacitor,coil,resistor) VALUES(?,?,?,?,?,?)`)
	insertTick, _ := s.db.Prepare(`INSERT OR REPLACE INTO ticks(run_id,tick,digest,units,resources,satellites,events) VALUES(?,?,?,?,?,?,?)`)
	stmts := []*sql.Stmt{insertTuning, insertRun, insertOutcome, insertTotal, insertTick}
	defer func() {
		for _, st := range stmts {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			// If we can't start a tx, we can't do much; sleep a bit.
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	exec := func(st *sql.Stmt, args ...any) bool {
		if st == nil {
			return false
		}
		if _, err := tx.Stmt(st).Exec(args...); err != nil {
			rollback()
			return false
		}
		opCount++
		return true
	}

	flushIfNeeded := func() {
		if tx == nil {
			return
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	for r := range s.ch {
		if r.kind == reqFlush {
			commit()
			close(r.done)
			continue
		}
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqTick:
			t := r.tick
			exec(insertTick, t.RunID, int64(t.Tick), t.Digest, t.Units, t.Resources, t.Satellites, len(t.Events))

		case reqRun:
			ru := r.run
			if !exec(insertTuning, ru.TuningDigest, string(ru.TuningJSON)) {
				continue
			}
			exec(insertRun, ru.RunID, int64(ru.Seed), ru.Players, ru.TuningDigest, ru.StartedAt)

		case reqOutcome:
			o := r.outcome
			if !exec(insertOutcome, o.RunID, int64(o.Tick), o.Elapsed, o.Reason, nullableID(o.WinnerID), nullableString(o.WinnerColor), o.RecordedAt) {
				continue
			}
			for _, t := range o.Totals {
				if !exec(insertTotal, o.RunID, int64(t.PlayerID), boolInt(t.Alive), t.Amounts[world.Capacitor], t.Amounts[world.Coil], t.Amounts[world.Resistor]) {
					break
				}
			}
		}
		flushIfNeeded()
	}

	commit()
}
