// Command intersim runs one episode of the intersection simulator over a
// track file, records it in the run database and optionally plots it or
// serves the recorded runs over HTTP and gRPC.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"sync"
	"syscall"

	"github.com/banshee-data/intersim/internal/api"
	"github.com/banshee-data/intersim/internal/config"
	"github.com/banshee-data/intersim/internal/db"
	"github.com/banshee-data/intersim/internal/report"
	"github.com/banshee-data/intersim/internal/sim/simulator"
	"github.com/banshee-data/intersim/internal/track"
	"github.com/banshee-data/intersim/internal/version"
)

var (
	trackPath   = flag.String("track", "config/tracks/junction.json", "Track file (.json)")
	configPath  = flag.String("config", config.DefaultConfigPath, "Simulation config file (.json); built-in defaults apply when empty")
	dbPath      = flag.String("db", "intersim.db", "Run database path")
	steps       = flag.Int("steps", 0, "Maximum steps (0 uses max_steps from the config)")
	accel       = flag.Float64("accel", 0, "Constant acceleration for every vehicle, m/s²")
	targetSpeed = flag.Float64("target-speed", -1, "Drive every vehicle towards this speed (m/s) instead of -accel")
	mu          = flag.Float64("mu", 0.1, "Regularisation for -target-speed")
	seed        = flag.Uint64("shuffle", 0, "Shuffle path geometry with this seed (0 disables)")
	plotPath    = flag.String("plot", "", "Write a trajectory plot PNG to this path")
	listen      = flag.String("listen", "", "Serve recorded runs over HTTP on this address after the episode")
	grpcListen  = flag.String("grpc-listen", "", "Serve gRPC health on this address alongside -listen")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if args := flag.Args(); len(args) > 0 {
		switch args[0] {
		case "migrate":
			db.RunMigrateCommand(args[1:], *dbPath)
			return
		default:
			log.Fatalf("unknown command %q", args[0])
		}
	}

	cfg := config.DefaultSimConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadSimConfig(*configPath); err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	tr, err := track.Load(*trackPath)
	if err != nil {
		log.Fatalf("failed to load track: %v", err)
	}
	if *seed != 0 {
		tr = tr.Shuffle(*seed)
	}

	store, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := episodeOptions{
		MaxSteps:    *steps,
		Accel:       *accel,
		TargetSpeed: *targetSpeed,
		Mu:          *mu,
		PlotPath:    *plotPath,
	}
	rec, err := runEpisode(ctx, store, tr, cfg, opts)
	interrupted := episodeInterrupted(err)
	if err != nil && !interrupted {
		store.Close()
		log.Fatalf("episode failed: %v", err)
	}
	if interrupted {
		log.Printf("episode interrupted")
	}
	log.Printf("run %s: %d steps, done=%v, %d collisions over %d steps, mean speed %.2f m/s",
		rec.RunID, rec.Summary.Steps, rec.Summary.Done, rec.Summary.Collisions,
		rec.Summary.CollisionSteps, rec.Summary.MeanSpeed)

	if *listen == "" || interrupted {
		return
	}
	serve(ctx, store, cfg.GetSpeedUnits())
	log.Printf("Graceful shutdown complete")
}

// serve blocks until ctx is cancelled, running the HTTP API and, when
// -grpc-listen is set, the gRPC health server.
func serve(ctx context.Context, store *db.DB, unit string) {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		srv := api.NewServer(api.ServerConfig{Address: *listen, DB: store, Units: unit})
		if err := srv.Start(ctx); err != nil {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	if *grpcListen != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := api.StartGRPC(ctx, *grpcListen); err != nil {
				log.Printf("gRPC server error: %v", err)
			}
		}()
	}

	wg.Wait()
}

type episodeOptions struct {
	MaxSteps    int
	Accel       float64
	TargetSpeed float64 // negative selects the constant controller
	Mu          float64
	PlotPath    string
}

type episodeRecord struct {
	RunID   string
	Summary simulator.Summary
}

// runEpisode creates a run, steps the simulator to completion recording
// every tick, and finishes the run with the episode summary.
func runEpisode(ctx context.Context, store *db.DB, tr *track.Track, cfg *config.SimConfig, opts episodeOptions) (episodeRecord, error) {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return episodeRecord{}, fmt.Errorf("encode config: %w", err)
	}
	run := &db.Run{
		TrackName:   tr.Name,
		Dt:          tr.Dt,
		MinT:        tr.MinT,
		NumVehicles: tr.NumVehicles(),
		ConfigJSON:  string(cfgJSON),
	}
	if err := store.CreateRun(run); err != nil {
		return episodeRecord{}, err
	}

	var controller simulator.Controller = simulator.ConstantController{Accel: opts.Accel}
	if opts.TargetSpeed >= 0 {
		controller = simulator.TargetSpeedController{Speed: opts.TargetSpeed, Mu: opts.Mu}
	}
	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = cfg.GetMaxSteps()
	}

	sim := simulator.New(tr, cfg)
	_, initial := sim.Reset()
	if err := store.RecordStep(run.ID, 0, initial.Time, initial.Poses, nil); err != nil {
		return episodeRecord{}, err
	}

	observer := func(state simulator.State, out simulator.StepOutcome) error {
		var pairs [][2]int
		if out.Matrix != nil {
			pairs = out.Matrix.Pairs()
		}
		return store.RecordStep(run.ID, state.Tick, out.Time, out.Poses, pairs)
	}
	summary, runErr := sim.Run(ctx, controller, maxSteps, observer)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return episodeRecord{}, runErr
	}

	if err := store.FinishRun(run.ID, db.RunResult{
		Steps:          summary.Steps,
		Done:           summary.Done,
		CollisionSteps: summary.CollisionSteps,
		Collisions:     summary.Collisions,
		MeanSpeed:      summary.MeanSpeed,
	}); err != nil {
		return episodeRecord{}, err
	}

	if opts.PlotPath != "" {
		if err := plotRun(store, run.ID, tr.Name, opts.PlotPath); err != nil {
			return episodeRecord{}, err
		}
	}
	return episodeRecord{RunID: run.ID, Summary: summary}, runErr
}

// episodeInterrupted reports whether err only records that the episode was
// cancelled; the run row is finished in that case.
func episodeInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}

func plotRun(store *db.DB, runID, title, path string) error {
	traj, err := store.Trajectories(runID)
	if err != nil {
		return err
	}
	collisions, err := store.Collisions(runID)
	if err != nil {
		return err
	}
	if err := report.PlotTrajectories(path, title, traj, collisions); err != nil {
		return err
	}
	log.Printf("wrote trajectory plot to %s", path)
	return nil
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: intersim [flags]\n       intersim [-db path] migrate <action>\n\nFlags:\n")
	flag.PrintDefaults()
	fmt.Fprintln(out)
	db.PrintMigrateHelp()
}
