// Command framecounter counts video frames across a directory of
// .h264/.mp4 files and writes the results to counts.csv.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/Elias2660/Video-Frame-Counter/internal/domain/entity"
	"github.com/Elias2660/Video-Frame-Counter/internal/infra/config"
	"github.com/Elias2660/Video-Frame-Counter/internal/infra/csvreport"
	"github.com/Elias2660/Video-Frame-Counter/internal/infra/ffmpeg"
	"github.com/Elias2660/Video-Frame-Counter/internal/infra/metrics"
	"github.com/Elias2660/Video-Frame-Counter/internal/infra/scan"
	"github.com/Elias2660/Video-Frame-Counter/internal/infra/tracing"
	"github.com/Elias2660/Video-Frame-Counter/internal/usecase"
	"github.com/Elias2660/Video-Frame-Counter/pkg/logger"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "framecounter: load config: %v\n", err)
		os.Exit(1)
	}

	app := newApp(cfg)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "framecounter: %v\n", err)
		os.Exit(1)
	}
}

func newApp(cfg *config.Config) *cli.App {
	return &cli.App{
		Name:    "framecounter",
		Usage:   "count video frames across a directory and write counts.csv",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "video-filepath",
				Usage:       "directory containing the .h264/.mp4 video files",
				Value:       cfg.VideoFilepath,
				Destination: &cfg.VideoFilepath,
			},
			&cli.StringFlag{
				Name:        "output-filepath",
				Usage:       "directory where counts.csv is written",
				Value:       cfg.OutputFilepath,
				Destination: &cfg.OutputFilepath,
			},
			&cli.IntFlag{
				Name:        "max-workers",
				Usage:       "number of files counted in parallel",
				Value:       cfg.MaxWorkers,
				Destination: &cfg.MaxWorkers,
			},
			&cli.StringFlag{
				Name:        "strategy",
				Usage:       "counting strategy: auto, decode, or metadata",
				Value:       cfg.Strategy,
				Destination: &cfg.Strategy,
			},
			&cli.BoolFlag{
				Name:        "transcode",
				Usage:       "wrap raw .h264 streams into .mp4 containers before counting",
				Value:       cfg.TranscodeH264,
				Destination: &cfg.TranscodeH264,
			},
			&cli.Float64Flag{
				Name:        "framerate-hint",
				Usage:       "frame rate assumed for raw .h264 streams when transcoding",
				Value:       cfg.FrameRateHint,
				Destination: &cfg.FrameRateHint,
			},
			&cli.IntFlag{
				Name:        "metrics-port",
				Usage:       "expose Prometheus /metrics on this port (0 disables)",
				Value:       cfg.MetricsPort,
				Destination: &cfg.MetricsPort,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level: debug, info, warn, error",
				Value:       cfg.LogLevel,
				Destination: &cfg.LogLevel,
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "shorthand for --log-level debug",
			},
			&cli.BoolFlag{
				Name:        "no-progress",
				Usage:       "disable the progress bar",
				Value:       cfg.NoProgress,
				Destination: &cfg.NoProgress,
			},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("debug") {
				cfg.LogLevel = "debug"
			}
			return run(c.Context, cfg)
		},
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("starting framecounter",
		zap.String("version", version),
		zap.String("input", cfg.VideoFilepath),
		zap.String("output", cfg.OutputFilepath),
		zap.String("strategy", cfg.Strategy),
		zap.Bool("transcode", cfg.TranscodeH264),
		zap.Int("max_workers", cfg.MaxWorkers),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Tracing is best-effort: a run without a collector still counts frames.
	if cfg.OTLPEndpoint != "" {
		tp, err := tracing.InitTracer(ctx, cfg.OTLPEndpoint)
		if err != nil {
			log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
		} else {
			defer tp.Shutdown(context.WithoutCancel(ctx))
		}
	}

	if err := os.MkdirAll(cfg.OutputFilepath, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var metricsSrv interface{ Shutdown(context.Context) error }
	if cfg.MetricsPort > 0 {
		metricsSrv = metrics.StartMetricsServer(ctx, cfg.MetricsPort, log)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Warn("received shutdown signal, finishing in-flight files", zap.String("signal", sig.String()))
		cancel()
	}()

	prober := ffmpeg.NewProber(cfg.FFprobeBin)
	uc := usecase.NewCountBatchUseCase(
		scan.NewEnumerator(log),
		ffmpeg.NewDecodeCounter(cfg.FFprobeBin, log),
		ffmpeg.NewMetadataCounter(prober, log),
		ffmpeg.NewTranscoder(cfg.FFmpegBin, cfg.FrameRateHint, log),
		csvreport.NewWriter(),
		log,
		usecase.CountBatchConfig{
			InputDir:      cfg.VideoFilepath,
			OutputPath:    filepath.Join(cfg.OutputFilepath, cfg.OutputName),
			Strategy:      config.Strategy(cfg.Strategy),
			TranscodeH264: cfg.TranscodeH264,
			MaxWorkers:    cfg.MaxWorkers,
			TempDir:       cfg.TempDir,
			MinFileBytes:  cfg.MinFileBytes,
			OnFileDone:    fileProgress(cfg),
		},
	)

	summary, err := uc.Execute(ctx)
	if err != nil {
		return err
	}

	if metricsSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer shutdownCancel()
		metricsSrv.Shutdown(shutdownCtx)
	}

	printSummary(summary)
	return nil
}

// fileProgress returns the per-file completion callback driving the
// progress bar, or nil when progress output is disabled.
func fileProgress(cfg *config.Config) func(*entity.FileResult) {
	if cfg.NoProgress {
		return nil
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("counting"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetWriter(os.Stderr),
	)
	return func(*entity.FileResult) {
		bar.Add(1)
	}
}

func printSummary(s *usecase.BatchSummary) {
	headerStyle := color.New(color.Bold, color.FgCyan)
	valueStyle := color.New(color.Bold)
	failStyle := color.New(color.Bold, color.FgRed)

	fmt.Println()
	headerStyle.Println("Frame Count Summary")
	fmt.Println("-------------------")

	fmt.Printf("Files found:   ")
	valueStyle.Printf("%d\n", s.Total)

	fmt.Printf("Files counted: ")
	valueStyle.Printf("%d\n", s.Counted)

	fmt.Printf("Files failed:  ")
	if s.Failed > 0 {
		failStyle.Printf("%d\n", s.Failed)
	} else {
		valueStyle.Printf("%d\n", s.Failed)
	}

	fmt.Printf("Total frames:  ")
	valueStyle.Printf("%d\n", s.TotalFrames)

	fmt.Printf("Elapsed:       ")
	valueStyle.Printf("%s\n", s.Elapsed.Round(10*time.Millisecond))

	fmt.Printf("Report:        ")
	valueStyle.Printf("%s\n", s.OutputPath)
}
