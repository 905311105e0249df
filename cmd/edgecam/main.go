package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"
	"go.uber.org/zap"

	"github.com/ironsheep/edgecam/internal/capture"
	"github.com/ironsheep/edgecam/internal/config"
	"github.com/ironsheep/edgecam/internal/detect"
	"github.com/ironsheep/edgecam/internal/gpu"
	"github.com/ironsheep/edgecam/internal/logging"
	"github.com/ironsheep/edgecam/internal/pipeline"
	"github.com/ironsheep/edgecam/internal/publish"
	"github.com/ironsheep/edgecam/internal/render"
	"github.com/ironsheep/edgecam/internal/server"
	"github.com/ironsheep/edgecam/internal/settings"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const defaultConfigPath = "edgecam.yaml"

func main() {
	configPath := defaultConfigPath

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "--version" || arg == "-v" || arg == "version":
			fmt.Printf("edgecam %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case arg == "--help" || arg == "-h" || arg == "help":
			usage()
			return
		case arg == "--config" || arg == "-c":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "edgecam: --config needs a path")
				os.Exit(2)
			}
			i++
			configPath = args[i]
		case strings.HasPrefix(arg, "--config="):
			configPath = strings.TrimPrefix(arg, "--config=")
		default:
			fmt.Fprintf(os.Stderr, "edgecam: unknown argument %q\n\n", arg)
			usage()
			os.Exit(2)
		}
	}

	if err := run(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "edgecam: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("edgecam - camera edge detection pipeline with an HTTP viewer interface")
	fmt.Println()
	fmt.Println("Usage: edgecam [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config, -c PATH  YAML configuration file (default edgecam.yaml)")
	fmt.Println("  --version, -v      Print version information")
	fmt.Println("  --help, -h         Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  EDGECAM_LOG_LEVEL=debug    Override the configured log level")
	fmt.Println()
	fmt.Println("A missing configuration file runs the synthetic test pattern on :8081.")
}

// stats is the GET /stats body.
type stats struct {
	Pipeline pipeline.Stats `json:"pipeline"`
	Render   render.Stats   `json:"render"`
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("edgecam starting",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit),
		zap.String("config", configPath))

	set := settings.NewChannel(cfg.InitialSettings())
	pub := publish.New()

	// validated by config.Load
	clearColor, _ := config.ParseColor(cfg.Render.ClearColor)
	textColor, _ := config.ParseColor(cfg.Render.TextColor)
	mode, _ := render.ParseScaleMode(cfg.Render.ScaleMode)

	dev := gpu.NewSoft(gpu.SoftOptions{ClearColor: clearColor, TextColor: textColor})

	var pipe *pipeline.Pipeline
	opts := render.Options{Mode: mode}
	if cfg.Render.Overlay {
		opts.Overlay = func() string { return pipe.Rates().String() }
	}
	surface, err := render.NewSurface(dev, log.Named("render"), opts)
	if err != nil {
		return fmt.Errorf("failed to create surface: %w", err)
	}
	if err := surface.Resize(cfg.Render.Width, cfg.Render.Height); err != nil {
		return err
	}
	transform := cfg.Transform()
	surface.SetOrientation(transform)
	log.Info("orientation resolved",
		zap.Int("sensor_orientation", cfg.Orientation.SensorOrientation),
		zap.String("lens_facing", cfg.Orientation.LensFacing),
		zap.Int("display_rotation", cfg.Orientation.DisplayRotation),
		zap.Int("rotation", transform.RotationDegrees),
		zap.Bool("mirror_x", transform.MirrorX),
		zap.Bool("mirror_y", transform.MirrorY))

	set.Subscribe(func(s settings.Settings) {
		surface.SetShowProcessed(cfg.Render.ShowProcessed && s.EdgesEnabled)
	})

	pipe, err = pipeline.New(pipeline.Config{
		TargetFPS:   cfg.Processing.TargetFPS,
		JPEGQuality: cfg.Processing.JPEGQuality,
	}, pipeline.Deps{
		Detector:  detect.NewCanny(cfg.Processing.BlurRadius),
		Settings:  set,
		Publisher: pub,
		Raw:       surface,
		Processed: surface,
		Logger:    log.Named("pipeline"),
	})
	if err != nil {
		return err
	}

	src, err := capture.Open(cfg.Capture, log.Named("capture"))
	if err != nil {
		return err
	}

	srv, err := server.New(cfg.Server, server.Deps{
		Publisher: pub,
		Settings:  set,
		Stats: func() interface{} {
			return stats{Pipeline: pipe.Stats(), Render: surface.Stats()}
		},
		Preview: dev,
		Logger:  log.Named("http"),
	})
	if err != nil {
		return err
	}
	if err := srv.Listen(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipe.Start(ctx)

	var wg sync.WaitGroup
	errc := make(chan error, 2)
	wg.Add(3)
	go func() {
		defer wg.Done()
		errc <- srv.Serve(ctx)
	}()
	go func() {
		defer wg.Done()
		surface.Run(ctx, cfg.Render.FPS)
	}()
	go func() {
		defer wg.Done()
		if err := src.Run(ctx, pipe.OnFrame); err != nil {
			errc <- fmt.Errorf("capture: %w", err)
			return
		}
		errc <- nil
	}()

	daemon.SdNotify(false, daemon.SdNotifyReady)
	log.Info("edgecam ready", zap.String("addr", srv.Addr()), zap.String("source", cfg.Capture.Source))

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case runErr = <-errc:
		if runErr != nil {
			log.Error("component failed", zap.Error(runErr))
		}
	}

	daemon.SdNotify(false, daemon.SdNotifyStopping)
	stop()
	pipe.Stop()
	wg.Wait()
	return runErr
}
