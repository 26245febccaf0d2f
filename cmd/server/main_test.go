package main

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/protocol"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/runner"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/world"
)

type guardedSink struct {
	closed    atomic.Bool
	writes    atomic.Int64
	lateWrite atomic.Bool
}

func (s *guardedSink) WriteTick(world.TickRecord) error {
	if s.closed.Load() {
		s.lateWrite.Store(true)
	}
	s.writes.Add(1)
	return nil
}

func TestRunInBackground_StopsBeforeSinksClose(t *testing.T) {
	w, err := world.New(world.WorldConfig{})
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	sink := &guardedSink{}
	w.SetTickSink(sink)
	r, err := runner.New(runner.Config{World: w, FrameInterval: time.Millisecond})
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	if err := r.Apply(protocol.ControlMsg{Op: protocol.OpResume}); err != nil {
		t.Fatalf("resume: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := runInBackground(ctx, r, zerolog.Nop())

	deadline := time.Now().Add(5 * time.Second)
	for sink.writes.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("runner never stepped")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("runner did not stop")
	}
	sink.closed.Store(true)
	n := sink.writes.Load()
	time.Sleep(20 * time.Millisecond)
	if sink.lateWrite.Load() || sink.writes.Load() != n {
		t.Fatalf("tick written after runner stopped")
	}
}

func TestMultiTickSink_SkipsNil(t *testing.T) {
	a := &guardedSink{}
	m := multiTickSink{nil, a}
	if err := m.WriteTick(world.TickRecord{}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if a.writes.Load() != 1 {
		t.Fatalf("writes=%d", a.writes.Load())
	}
}
