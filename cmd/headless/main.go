package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/logging"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/persistence/indexdb"
	persistlog "github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/persistence/log"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/bots"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/tuning"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/world"
)

func main() {
	var (
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: built-in defaults)")
		seed       = flag.Uint64("seed", 1, "seed of the first match; match i uses seed+i")
		matches    = flag.Int("matches", 1, "number of matches")
		maxTime    = flag.Float64("max_time", 3600, "simulated seconds before a match is abandoned (0: no cap)")
		botName    = flag.String("bot", "gatherer", "decision function for every player")
		indexPath  = flag.String("index", "", "sqlite index path (optional)")
		dataDir    = flag.String("data", "", "write tick logs under <data>/ticks (optional)")
		tickEvery  = flag.Int("tick_every", 1, "tick log / index sampling interval")
		verbose    = flag.Bool("v", false, "log world diagnostics to stderr")
	)
	flag.Parse()

	tune := tuning.Defaults()
	if *tuningPath != "" {
		var err error
		tune, err = tuning.Load(*tuningPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load tuning:", err)
			os.Exit(1)
		}
	}
	strategy, err := bots.ByName(*botName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	var out io.Writer = io.Discard
	level := "warn"
	if *verbose {
		out = os.Stderr
		level = "debug"
	}
	logger := logging.Component(logging.New(out, level, true), "headless")

	var (
		idx  *indexdb.SQLiteIndex
		sink world.TickSink
	)
	if *indexPath != "" {
		idx, err = indexdb.OpenSQLite(*indexPath, indexdb.Options{TickEvery: *tickEvery})
		if err != nil {
			fmt.Fprintln(os.Stderr, "open index:", err)
			os.Exit(1)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = idx.Flush(ctx)
			_ = idx.Close()
		}()
	}
	var tickLog *persistlog.TickLogger
	if *dataDir != "" {
		tickLog = persistlog.NewTickLogger(*dataDir, *tickEvery)
		defer tickLog.Close()
	}
	switch {
	case idx != nil && tickLog != nil:
		sink = bothSinks{tickLog, idx}
	case idx != nil:
		sink = idx
	case tickLog != nil:
		sink = tickLog
	}

	wins := map[world.ID]int{}
	for i := 0; i < *matches; i++ {
		tune.Game.UseSeed = true
		tune.Game.Seed = *seed + uint64(i)
		cfg := matchConfig{
			Tuning:   tune,
			Strategy: strategy,
			MaxTime:  *maxTime,
			Sink:     sink,
			Logger:   &logger,
		}
		if idx != nil {
			cfg.Recorder = idx
		}
		start := time.Now()
		res, err := runMatch(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, "match:", err)
			os.Exit(1)
		}
		status := "unfinished"
		if res.Finished {
			status = res.Outcome.String()
			if res.Outcome.HasWinner {
				wins[res.Outcome.WinnerID]++
			}
		}
		fmt.Printf("match=%d seed=%d run=%s ticks=%d elapsed=%.2fs outcome=%q digest=%s wall=%s\n",
			i, res.Seed, res.RunID, res.Ticks, res.Elapsed, status, res.Digest, time.Since(start).Round(time.Millisecond))
	}
	if *matches > 1 {
		ids := make([]world.ID, 0, len(wins))
		for id := range wins {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			fmt.Printf("wins player=%d count=%d\n", id, wins[id])
		}
	}
}

type bothSinks [2]world.TickSink

func (b bothSinks) WriteTick(rec world.TickRecord) error {
	err := b[0].WriteTick(rec)
	if err2 := b[1].WriteTick(rec); err == nil {
		err = err2
	}
	return err
}
