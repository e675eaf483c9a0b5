package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Elias2660/Video-Frame-Counter/internal/domain/entity"
	"github.com/Elias2660/Video-Frame-Counter/internal/domain/port"
	"github.com/Elias2660/Video-Frame-Counter/internal/infra/config"
	"github.com/Elias2660/Video-Frame-Counter/internal/infra/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CountBatchUseCase runs the batch pipeline: enumerate the input
// directory, count frames per file (transcoding elementary streams
// first when enabled), and write the sorted counts.csv report.
type CountBatchUseCase struct {
	enumerator port.Enumerator
	decode     port.FrameCounter
	metadata   port.FrameCounter
	transcoder port.Transcoder
	writer     port.ReportWriter
	logger     *zap.Logger
	cfg        CountBatchConfig
}

type CountBatchConfig struct {
	InputDir      string
	OutputPath    string
	Strategy      config.Strategy
	TranscodeH264 bool
	MaxWorkers    int
	TempDir       string
	MinFileBytes  int64

	// OnFileDone, when set, is invoked after each file finishes,
	// successfully or not. Used by the CLI for progress reporting.
	OnFileDone func(*entity.FileResult)
}

type BatchSummary struct {
	RunID       string
	Total       int
	Counted     int
	Failed      int
	TotalFrames int64
	InputBytes  int64
	Elapsed     time.Duration
	OutputPath  string
}

func NewCountBatchUseCase(
	enumerator port.Enumerator,
	decode port.FrameCounter,
	metadata port.FrameCounter,
	transcoder port.Transcoder,
	writer port.ReportWriter,
	logger *zap.Logger,
	cfg CountBatchConfig,
) *CountBatchUseCase {
	return &CountBatchUseCase{
		enumerator: enumerator,
		decode:     decode,
		metadata:   metadata,
		transcoder: transcoder,
		writer:     writer,
		logger:     logger,
		cfg:        cfg,
	}
}

// Execute runs one batch. A bad input directory is the only fatal
// error; per-file failures are tallied and the run continues. The
// report is written even for partial or interrupted runs.
func (uc *CountBatchUseCase) Execute(ctx context.Context) (*BatchSummary, error) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "CountBatchUseCase.Execute")
	defer span.End()

	start := time.Now()
	runID := uuid.New().String()
	log := uc.logger.With(zap.String("run_id", runID))
	span.SetAttributes(
		attribute.String("run.id", runID),
		attribute.String("run.input_dir", uc.cfg.InputDir),
	)

	files, err := uc.enumerator.Discover(ctx, uc.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("discover videos: %w", err)
	}
	if len(files) == 0 {
		log.Warn("no video files found in input directory", zap.String("dir", uc.cfg.InputDir))
	} else {
		log.Info("discovered video files", zap.Int("count", len(files)))
	}

	workDir := filepath.Join(uc.cfg.TempDir, runID)
	if uc.cfg.TranscodeH264 {
		if err := os.MkdirAll(workDir, 0755); err != nil {
			return nil, fmt.Errorf("create workdir: %w", err)
		}
		defer os.RemoveAll(workDir)
	}

	results := uc.runWorkers(ctx, files, workDir, log)

	records := make([]entity.CountRecord, 0, len(results))
	summary := &BatchSummary{
		RunID:      runID,
		Total:      len(files),
		OutputPath: uc.cfg.OutputPath,
	}
	for _, res := range results {
		summary.InputBytes += res.File.Size
		if res.Status == entity.ResultStatusCounted {
			summary.Counted++
			summary.TotalFrames += res.FrameCount
		} else {
			summary.Failed++
		}
		// Every processed file gets a row; failures record zero frames.
		records = append(records, res.Record())
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Filename < records[j].Filename
	})

	// The report covers whatever finished, even when the run was
	// interrupted, so the write must survive a cancelled context.
	writeCtx, spanWrite := tracer.Start(context.WithoutCancel(ctx), "write_report")
	writeStart := time.Now()
	err = uc.writer.WriteReport(writeCtx, records, uc.cfg.OutputPath)
	spanWrite.End()
	metrics.StageDuration.WithLabelValues("write").Observe(time.Since(writeStart).Seconds())
	if err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}

	summary.Elapsed = time.Since(start)
	log.Info("batch finished",
		zap.Int("total", summary.Total),
		zap.Int("counted", summary.Counted),
		zap.Int("failed", summary.Failed),
		zap.Int64("total_frames", summary.TotalFrames),
		zap.Duration("elapsed", summary.Elapsed),
		zap.String("report", summary.OutputPath),
	)
	return summary, nil
}

// runWorkers fans the file list out over the worker pool and returns
// the results of every file that was dispatched before cancellation.
func (uc *CountBatchUseCase) runWorkers(
	ctx context.Context,
	files []entity.VideoFile,
	workDir string,
	log *zap.Logger,
) []*entity.FileResult {
	var (
		mu      sync.Mutex
		results []*entity.FileResult
		wg      sync.WaitGroup
	)

	jobs := make(chan entity.VideoFile)

	// An interrupt only stops dispatch; files already handed to a worker
	// run to completion, so their ffprobe/ffmpeg children must not be
	// killed by the cancelled signal context.
	fileCtx := context.WithoutCancel(ctx)

	workers := uc.cfg.MaxWorkers
	if workers > len(files) && len(files) > 0 {
		workers = len(files)
	}
	log.Info("starting worker pool", zap.Int("workers", workers))

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			wlog := log.With(zap.Int("worker_id", id))
			for file := range jobs {
				res := uc.processFile(fileCtx, file, workDir, wlog)
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
				if uc.cfg.OnFileDone != nil {
					uc.cfg.OnFileDone(res)
				}
			}
		}(i)
	}

dispatch:
	for _, file := range files {
		select {
		case <-ctx.Done():
			log.Warn("interrupted, finishing in-flight files")
			break dispatch
		case jobs <- file:
		}
	}
	close(jobs)
	wg.Wait()

	return results
}

// processFile handles one video: validate, count (with transcode and
// fallback policy), and record the outcome. Failures never propagate;
// one bad file must not sink the batch.
func (uc *CountBatchUseCase) processFile(
	ctx context.Context,
	file entity.VideoFile,
	workDir string,
	log *zap.Logger,
) *entity.FileResult {
	flog := log.With(zap.String("file", file.Name()))
	res := entity.NewFileResult(file)
	res.MarkCounting()

	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	if file.Size < uc.cfg.MinFileBytes {
		res.MarkFailed(fmt.Sprintf("file too small (%d bytes), possibly corrupt", file.Size))
		flog.Error("skipping file", zap.String("reason", res.ErrorMessage))
		metrics.FilesProcessedTotal.WithLabelValues("failed").Inc()
		return res
	}

	flog.Info("counting frames", zap.String("kind", string(file.Kind)), zap.Int64("bytes", file.Size))

	frames, source, err := uc.countFile(ctx, res, workDir, flog)
	if err != nil {
		res.MarkFailed(err.Error())
		flog.Error("frame count failed", zap.Error(err))
		metrics.FilesProcessedTotal.WithLabelValues("failed").Inc()
		return res
	}

	res.MarkCounted(frames, source)
	metrics.FilesProcessedTotal.WithLabelValues("counted").Inc()
	metrics.FramesCountedTotal.Add(float64(frames))
	flog.Info("frames counted",
		zap.Int64("frames", frames),
		zap.String("source", string(source)),
		zap.Duration("elapsed", res.Elapsed()),
	)
	return res
}

// countFile applies the strategy policy. Under auto, container files
// try the metadata path and fall back to a full decode when headers are
// missing or unreliable; elementary streams go through the transcoder
// when enabled and straight to decode otherwise.
func (uc *CountBatchUseCase) countFile(
	ctx context.Context,
	res *entity.FileResult,
	workDir string,
	log *zap.Logger,
) (int64, entity.CountSource, error) {
	file := res.File

	switch uc.cfg.Strategy {
	case config.StrategyDecode:
		frames, err := uc.decodeCount(ctx, file.Path)
		return frames, entity.SourceDecode, err

	case config.StrategyMetadata:
		if file.Kind == entity.KindElementary && uc.cfg.TranscodeH264 {
			return uc.transcodeCount(ctx, res, workDir)
		}
		frames, err := uc.metadataCount(ctx, file.Path)
		return frames, entity.SourceMetadata, err
	}

	// auto
	if file.Kind == entity.KindElementary {
		if uc.cfg.TranscodeH264 {
			frames, source, err := uc.transcodeCount(ctx, res, workDir)
			if err == nil {
				return frames, source, nil
			}
			log.Warn("transcode path failed, decoding raw stream", zap.Error(err))
			metrics.MetadataFallbackTotal.WithLabelValues("transcode_failed").Inc()
		}
		// Elementary streams have no container metadata to read.
		frames, err := uc.decodeCount(ctx, file.Path)
		return frames, entity.SourceDecode, err
	}

	frames, err := uc.metadataCount(ctx, file.Path)
	if err == nil {
		return frames, entity.SourceMetadata, nil
	}
	if !errors.Is(err, port.ErrMetadataUnavailable) {
		return 0, "", err
	}

	log.Info("metadata unreliable, falling back to full decode", zap.String("reason", err.Error()))
	metrics.MetadataFallbackTotal.WithLabelValues("unreliable_metadata").Inc()
	frames, err = uc.decodeCount(ctx, file.Path)
	return frames, entity.SourceDecode, err
}

// transcodeCount wraps the elementary stream into a throwaway MP4 in
// the run's work directory and counts it via container metadata. The
// source file is never touched.
func (uc *CountBatchUseCase) transcodeCount(
	ctx context.Context,
	res *entity.FileResult,
	workDir string,
) (int64, entity.CountSource, error) {
	file := res.File
	base := strings.TrimSuffix(file.Name(), filepath.Ext(file.Name()))
	outPath := filepath.Join(workDir, base+".mp4")

	tracer := otel.Tracer("usecase")
	tctx, span := tracer.Start(ctx, "transcode")
	start := time.Now()
	err := uc.transcoder.Transcode(tctx, file.Path, outPath)
	span.End()
	metrics.StageDuration.WithLabelValues("transcode").Observe(time.Since(start).Seconds())
	if err != nil {
		return 0, "", fmt.Errorf("transcode: %w", err)
	}
	res.TranscodedPath = outPath

	frames, err := uc.metadataCount(ctx, outPath)
	if err != nil {
		return 0, "", fmt.Errorf("count transcoded copy: %w", err)
	}
	return frames, entity.SourceTranscode, nil
}

func (uc *CountBatchUseCase) decodeCount(ctx context.Context, path string) (int64, error) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "count_decode")
	defer span.End()

	start := time.Now()
	frames, err := uc.decode.CountFrames(ctx, path)
	metrics.StageDuration.WithLabelValues("decode").Observe(time.Since(start).Seconds())
	return frames, err
}

func (uc *CountBatchUseCase) metadataCount(ctx context.Context, path string) (int64, error) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "count_metadata")
	defer span.End()

	start := time.Now()
	frames, err := uc.metadata.CountFrames(ctx, path)
	metrics.StageDuration.WithLabelValues("metadata").Observe(time.Since(start).Seconds())
	return frames, err
}
