package main

import (
	"github.com/rs/zerolog"

	persistlog "github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/persistence/log"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/runner"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/world"
)

// multiTickSink fans a tick record out to every configured sink. Sinks may be nil.
type multiTickSink []world.TickSink

func (m multiTickSink) WriteTick(rec world.TickRecord) error {
	var first error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.WriteTick(rec); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type multiRecorder []runner.MatchRecorder

func (m multiRecorder) RunStarted(w *world.World) {
	for _, r := range m {
		r.RunStarted(w)
	}
}

func (m multiRecorder) RunFinished(w *world.World, out world.Outcome) {
	for _, r := range m {
		r.RunFinished(w, out)
	}
}

// matchLogRecorder writes one match line per finished run.
type matchLogRecorder struct {
	l   *persistlog.MatchLogger
	log zerolog.Logger
}

func (matchLogRecorder) RunStarted(*world.World) {}

func (m matchLogRecorder) RunFinished(w *world.World, out world.Outcome) {
	if err := m.l.WriteMatch(w, out); err != nil {
		m.log.Warn().Err(err).Str("run", w.RunID().String()).Msg("match log write failed")
	}
}
