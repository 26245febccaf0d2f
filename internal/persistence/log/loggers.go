package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/world"
)

// JSONLZstdWriter appends JSON lines to zstd files rotated every UTC hour.
type JSONLZstdWriter struct {
	baseDir string
	prefix  string
	now     func() time.Time

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewJSONLZstdWriter(baseDir, prefix string) *JSONLZstdWriter {
	return &JSONLZstdWriter{
		baseDir: baseDir,
		prefix:  prefix,
		now:     time.Now,
	}
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	hour := w.now().UTC().Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Flush pushes buffered lines through the encoder to the file.
func (w *JSONLZstdWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return nil
	}
	if err := w.w.Flush(); err != nil {
		return err
	}
	return w.enc.Flush()
}

func (w *JSONLZstdWriter) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	dir := filepath.Dir(w.pathForHour(hour))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.pathForHour(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 128*1024)
	w.curHour = hour
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	w.curHour = ""
	return err1
}

func (w *JSONLZstdWriter) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

// TickLogger writes one JSONL entry per sampled tick (compressed). Ticks that carry
// events are always written.
type TickLogger struct {
	w     *JSONLZstdWriter
	every uint64
}

// NewTickLogger logs into dataDir/ticks. every <= 1 keeps every tick.
func NewTickLogger(dataDir string, every int) *TickLogger {
	if every < 1 {
		every = 1
	}
	return &TickLogger{
		w:     NewJSONLZstdWriter(filepath.Join(dataDir, "ticks"), "ticks"),
		every: uint64(every),
	}
}

func (l *TickLogger) WriteTick(rec world.TickRecord) error {
	if len(rec.Events) == 0 && rec.Tick%l.every != 0 {
		return nil
	}
	return l.w.Write(rec)
}

func (l *TickLogger) Flush() error { return l.w.Flush() }
func (l *TickLogger) Close() error { return l.w.Close() }

// MatchLogger writes one entry per finished match.
type MatchLogger struct{ w *JSONLZstdWriter }

// MatchRecord is the summary line of a finished match.
type MatchRecord struct {
	RunID     string        `json:"run_id"`
	Seed      uint64        `json:"seed"`
	Outcome   world.Outcome `json:"outcome"`
	Collected []PlayerTotal `json:"collected"`
}

type PlayerTotal struct {
	PlayerID world.ID      `json:"player_id"`
	Amounts  world.Amounts `json:"amounts"`
}

func NewMatchLogger(dataDir string) *MatchLogger {
	return &MatchLogger{w: NewJSONLZstdWriter(filepath.Join(dataDir, "matches"), "matches")}
}

func (l *MatchLogger) WriteMatch(w *world.World, out world.Outcome) error {
	rec := MatchRecord{RunID: w.RunID().String(), Seed: w.Seed(), Outcome: out}
	for _, p := range w.Players() {
		if p.IsNeutral() {
			continue
		}
		rec.Collected = append(rec.Collected, PlayerTotal{PlayerID: p.ID(), Amounts: p.Collected()})
	}
	return l.w.Write(rec)
}

func (l *MatchLogger) Close() error { return l.w.Close() }
