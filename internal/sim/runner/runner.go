// Package runner drives a World in real time: it turns wall-clock frames into fixed
// simulation steps, applies viewer commands between frames and publishes state.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"

	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/protocol"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/tuning"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/world"
)

const (
	MinSpeed = 0.1
	MaxSpeed = 50.0

	// maxStepsPerFrame bounds catch-up work after a stall; the excess is dropped.
	maxStepsPerFrame = 2000

	// stepSlack absorbs float drift so 1s at 10ms steps is exactly 100 steps.
	stepSlack = 1e-9
)

// ErrBusy is returned by Submit when the command inbox is full.
var ErrBusy = errors.New("runner: command inbox full")

// MatchRecorder is told about match boundaries. Implemented by indexdb.
type MatchRecorder interface {
	RunStarted(w *world.World)
	RunFinished(w *world.World, out world.Outcome)
}

type Config struct {
	World *world.World

	// Speed multiplies wall-clock time. Clamped to [MinSpeed, MaxSpeed]; 0 means 1.
	Speed float64
	// PublishEvery is the number of steps between STATE frames (default 1).
	PublishEvery int
	// FrameInterval is the wall-clock period of Run (default 16ms).
	FrameInterval time.Duration
	// Inbox is the command buffer size (default 64).
	Inbox int

	Recorder MatchRecorder
	Logger   *zerolog.Logger

	// MeterProvider defaults to the global otel provider.
	MeterProvider metric.MeterProvider
}

// Runner owns its World; after Run starts, only the Run goroutine touches it.
type Runner struct {
	w        *world.World
	step     float64
	every    int
	interval time.Duration
	recorder MatchRecorder
	log      zerolog.Logger

	speed float64
	acc   float64
	steps uint64

	runID    string
	reported bool

	cmds chan protocol.ControlMsg
	now  func() time.Time

	mu     sync.Mutex
	nextID int
	subs   map[int]*subscriber

	metrics *metrics
}

type subscriber struct {
	scans bool
	ch    chan protocol.StateMsg
}

func New(cfg Config) (*Runner, error) {
	if cfg.World == nil {
		return nil, fmt.Errorf("runner: nil world")
	}
	if cfg.PublishEvery <= 0 {
		cfg.PublishEvery = 1
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = 16 * time.Millisecond
	}
	if cfg.Inbox <= 0 {
		cfg.Inbox = 64
	}
	if cfg.Speed == 0 {
		cfg.Speed = 1
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	r := &Runner{
		w:        cfg.World,
		step:     cfg.World.Tuning().Game.UpdateTimeStep,
		every:    cfg.PublishEvery,
		interval: cfg.FrameInterval,
		recorder: cfg.Recorder,
		log:      log,
		speed:    clampSpeed(cfg.Speed),
		cmds:     make(chan protocol.ControlMsg, cfg.Inbox),
		now:      time.Now,
		subs:     map[int]*subscriber{},
	}
	m, err := newMetrics(r, cfg.MeterProvider)
	if err != nil {
		return nil, err
	}
	r.metrics = m
	r.noteRun()
	return r, nil
}

func clampSpeed(s float64) float64 {
	return min(max(s, MinSpeed), MaxSpeed)
}

func (r *Runner) Speed() float64 { return r.speed }
func (r *Runner) Steps() uint64  { return r.steps }

// Tuning is fixed for the lifetime of the world and safe to read from any goroutine.
func (r *Runner) Tuning() tuning.Tuning { return r.w.Tuning() }

// Submit queues a control command for the Run goroutine.
func (r *Runner) Submit(cmd protocol.ControlMsg) error {
	if _, err := cmd.Validate(); err != nil {
		return err
	}
	select {
	case r.cmds <- cmd:
		return nil
	default:
		return ErrBusy
	}
}

// Subscribe registers a state listener. The channel holds only the latest frame;
// slow readers miss intermediate ones. cancel must be called to release it.
func (r *Runner) Subscribe(scans bool) (<-chan protocol.StateMsg, func()) {
	s := &subscriber{scans: scans, ch: make(chan protocol.StateMsg, 1)}
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = s
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
	return s.ch, cancel
}

// Frame advances the world by wall*speed of simulated time in whole fixed steps,
// carrying the remainder to the next frame. It returns the number of steps taken.
func (r *Runner) Frame(wall time.Duration) int {
	r.acc += wall.Seconds() * r.speed
	n := 0
	for r.acc >= r.step*(1-stepSlack) {
		if n == maxStepsPerFrame {
			dropped := int64(r.acc / r.step * (1 + stepSlack))
			r.metrics.dropped(dropped)
			r.log.Warn().Int64("steps", dropped).Msg("runner fell behind, dropping steps")
			r.acc = 0
			break
		}
		r.stepOnce()
		r.acc -= r.step
		n++
	}
	r.metrics.frame(n)
	return n
}

func (r *Runner) stepOnce() {
	r.w.Step(r.step)
	r.steps++
	if out, done := r.w.Finished(); done && !r.reported {
		r.reported = true
		if r.recorder != nil {
			r.recorder.RunFinished(r.w, out)
		}
	}
	if r.steps%uint64(r.every) == 0 {
		r.publish()
	}
}

// noteRun reports a new match after start or reset.
func (r *Runner) noteRun() {
	id := r.w.RunID().String()
	if id == r.runID {
		return
	}
	r.runID = id
	r.reported = false
	r.acc = 0
	if r.recorder != nil {
		r.recorder.RunStarted(r.w)
	}
}

func (r *Runner) publish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.subs) == 0 {
		return
	}
	var plain, full *protocol.StateMsg
	for _, s := range r.subs {
		var msg *protocol.StateMsg
		if s.scans {
			if full == nil {
				m := Snapshot(r.w, r.speed, true)
				full = &m
			}
			msg = full
		} else {
			if plain == nil {
				m := Snapshot(r.w, r.speed, false)
				plain = &m
			}
			msg = plain
		}
		offerLatest(s.ch, *msg)
	}
}

func offerLatest(ch chan protocol.StateMsg, msg protocol.StateMsg) {
	select {
	case ch <- msg:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- msg:
	default:
	}
}

// Apply executes one command on the calling goroutine, which must own the world.
func (r *Runner) Apply(cmd protocol.ControlMsg) error {
	if _, err := cmd.Validate(); err != nil {
		return err
	}
	switch cmd.Op {
	case protocol.OpPause:
		r.w.SetRunning(false)
	case protocol.OpResume:
		r.w.SetRunning(true)
	case protocol.OpToggle:
		r.w.SetRunning(!r.w.Running())
	case protocol.OpReset:
		r.w.Reset()
		r.noteRun()
	case protocol.OpSpeed:
		r.speed = clampSpeed(cmd.Speed)
	case protocol.OpSelect:
		r.w.Select(world.Selection{Kind: selectionKind(cmd.Kind), ID: world.ID(cmd.ID)})
	case protocol.OpSelectAt:
		r.w.SelectAt(cmd.X, cmd.Y)
	}
	r.log.Debug().Str("op", cmd.Op).Bool("running", r.w.Running()).Float64("speed", r.speed).Msg("control")
	r.publish()
	return nil
}

func selectionKind(s string) world.SelectionKind {
	switch s {
	case "unit":
		return world.SelUnit
	case "resource":
		return world.SelResource
	case "satellite":
		return world.SelSatellite
	}
	return world.SelNone
}

// Run drives frames until ctx is done. Commands are applied between frames.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	last := r.now()
	r.publish()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-r.cmds:
			if err := r.Apply(cmd); err != nil {
				r.log.Warn().Err(err).Str("op", cmd.Op).Msg("control rejected")
			}
		case <-ticker.C:
			now := r.now()
			r.Frame(now.Sub(last))
			last = now
		}
	}
}
