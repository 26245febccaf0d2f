package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/config"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/logging"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/persistence/indexdb"
	persistlog "github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/persistence/log"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/protocol"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/bots"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/runner"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/tuning"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/world"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/telemetry"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/transport/observer"
)

func main() {
	configDir := flag.String("configs", "./configs", "directory holding robonav.yaml (optional)")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		boot := logging.New(os.Stderr, "info", false)
		boot.Fatal().Err(err).Msg("load config")
	}
	logger := logging.Component(logging.New(os.Stdout, cfg.LogLevel, cfg.LogPretty), "server")

	tune := tuning.Defaults()
	if cfg.TuningPath != "" {
		tune, err = tuning.Load(cfg.TuningPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.TuningPath).Msg("load tuning")
		}
	}

	strategy, err := bots.ByName(cfg.Bot)
	if err != nil {
		logger.Fatal().Err(err).Msg("bot")
	}

	worldLog := logging.Component(logger, "world")
	w, err := world.New(world.WorldConfig{
		Tuning:   tune,
		Strategy: strategy,
		Logger:   &worldLog,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("world")
	}

	var (
		sinks     multiTickSink
		recorders multiRecorder
		idx       *indexdb.SQLiteIndex
	)
	if cfg.TickLog {
		tickLog := persistlog.NewTickLogger(cfg.DataDir, cfg.TickLogEvery)
		defer tickLog.Close()
		sinks = append(sinks, tickLog)
	}
	matchLog := persistlog.NewMatchLogger(cfg.DataDir)
	defer matchLog.Close()
	recorders = append(recorders, matchLogRecorder{l: matchLog, log: logger})

	if cfg.IndexDB != "" {
		idx, err = indexdb.OpenSQLite(cfg.IndexDB, indexdb.Options{TickEvery: cfg.TickLogEvery})
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.IndexDB).Msg("open index")
		}
		defer idx.Close()
		sinks = append(sinks, idx)
		recorders = append(recorders, idx)
	}
	if len(sinks) > 0 {
		w.SetTickSink(sinks)
	}

	tel := telemetry.New("robonav-server")
	tel.SetGlobal()
	defer tel.Shutdown(context.Background())

	runLog := logging.Component(logger, "runner")
	r, err := runner.New(runner.Config{
		World:         w,
		Speed:         cfg.Speed,
		PublishEvery:  cfg.Observer.EveryTicks,
		Recorder:      recorders,
		Logger:        &runLog,
		MeterProvider: tel.MeterProvider(),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("runner")
	}
	if cfg.AutoStart {
		_ = r.Apply(protocol.ControlMsg{Type: protocol.TypeControl, ProtocolVersion: protocol.Version, Op: protocol.OpResume})
	}

	ctx, cancel := signalContext()
	defer cancel()

	// The sinks deferred above close only after the runner has stopped stepping.
	runDone := runInBackground(ctx, r, logger)
	defer func() {
		cancel()
		<-runDone
	}()

	obsSrv := observer.NewServer(r, logging.Component(logger, "observer"), observer.Options{
		AllowRemote:     cfg.Observer.AllowRemote,
		DefaultEncoding: cfg.Observer.Encoding,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", tel.Handler())
	mux.HandleFunc("/v1/observer/bootstrap", obsSrv.BootstrapHandler())
	mux.HandleFunc("/v1/observer/ws", obsSrv.WSHandler())
	if idx != nil {
		mux.HandleFunc("/v1/runs", runsHandler(idx, logger))
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Info().
		Str("addr", cfg.Addr).
		Str("bot", cfg.Bot).
		Str("data", filepath.Clean(cfg.DataDir)).
		Bool("autostart", cfg.AutoStart).
		Msg("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("ListenAndServe")
	}
}

// runsHandler lists indexed runs with their outcomes in start order.
func runsHandler(idx *indexdb.SQLiteIndex, logger zerolog.Logger) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		runs, err := idx.Runs(r.Context())
		if err != nil {
			logger.Warn().Err(err).Msg("list runs")
			http.Error(rw, "index unavailable", http.StatusInternalServerError)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(runs)
	}
}

// runInBackground drives r until ctx is done. The channel closes once the runner
// has returned, so no tick reaches a sink after that.
func runInBackground(ctx context.Context, r *runner.Runner, logger zerolog.Logger) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("runner stopped")
		}
	}()
	return done
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
