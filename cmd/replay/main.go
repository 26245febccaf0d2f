package main

import (
	"flag"
	"fmt"
	"os"

	persistlog "github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/persistence/log"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/bots"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/tuning"
)

// replay re-simulates a logged run from its seed and checks every logged digest.
func main() {
	var (
		dataDir    = flag.String("data", "./data", "data dir containing ticks/ticks-*.jsonl.zst")
		tuningPath = flag.String("tuning", "", "tuning.yaml the run used (default: built-in defaults)")
		seed       = flag.Uint64("seed", 0, "world seed the run used (default: tuning seed)")
		botName    = flag.String("bot", "gatherer", "decision function the run used")
		runID      = flag.String("run", "", "run id to verify (default: first run in the log)")
	)
	flag.Parse()

	tune := tuning.Defaults()
	if *tuningPath != "" {
		var err error
		if tune, err = tuning.Load(*tuningPath); err != nil {
			fmt.Fprintln(os.Stderr, "load tuning:", err)
			os.Exit(1)
		}
	}
	if *seed != 0 {
		tune.Game.Seed = *seed
	}
	tune.Game.UseSeed = true

	strategy, err := bots.ByName(*botName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	files, err := persistlog.Files(*dataDir, "ticks")
	if err != nil {
		fmt.Fprintln(os.Stderr, "list tick logs:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no tick logs found in", *dataDir)
		os.Exit(1)
	}

	v, err := newVerifier(tune, strategy, *runID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "world:", err)
		os.Exit(1)
	}
	for _, path := range files {
		recs, err := persistlog.ReadTicks(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read:", err)
			os.Exit(1)
		}
		for _, rec := range recs {
			if err := v.check(rec); err != nil {
				fmt.Fprintln(os.Stderr, "replay:", err)
				os.Exit(1)
			}
		}
	}
	if v.checked == 0 {
		fmt.Fprintln(os.Stderr, "no ticks matched run", *runID)
		os.Exit(1)
	}
	fmt.Printf("replay ok: run=%s checked=%d ticks (last tick=%d)\n", v.run, v.checked, v.w.Tick()-1)
}
