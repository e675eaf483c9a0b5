package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Elias2660/Video-Frame-Counter/internal/domain/port"
	"go.uber.org/zap"
)

// DecodeCounter counts frames by decoding the stream to exhaustion via
// ffprobe -count_frames. Exact, at the cost of a full decode.
type DecodeCounter struct {
	bin    string
	logger *zap.Logger
}

func NewDecodeCounter(bin string, logger *zap.Logger) *DecodeCounter {
	return &DecodeCounter{bin: bin, logger: logger}
}

func (c *DecodeCounter) CountFrames(ctx context.Context, path string) (int64, error) {
	cmd := exec.CommandContext(ctx, c.bin,
		"-v", "error",
		"-count_frames",
		"-select_streams", "v:0",
		"-show_entries", "stream=nb_read_frames",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return 0, fmt.Errorf("ffprobe count_frames %q: %w, output: %s", path, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return 0, fmt.Errorf("ffprobe count_frames %q: %w", path, err)
	}

	raw := strings.TrimSpace(string(out))
	if raw == "" || raw == "N/A" {
		return 0, fmt.Errorf("ffprobe count_frames %q: no video stream", path)
	}

	frames, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse frame count %q: %w", raw, err)
	}
	if frames < 0 {
		return 0, fmt.Errorf("ffprobe count_frames %q: negative count %d", path, frames)
	}

	c.logger.Debug("decode count finished",
		zap.String("path", path),
		zap.Int64("frames", frames),
	)
	return frames, nil
}

// MetadataCounter derives the frame count from container headers: the
// stream's nb_frames field when present, otherwise duration times the
// average frame rate. It refuses to guess for variable-frame-rate
// streams, returning port.ErrMetadataUnavailable so callers can fall
// back to the decode path.
type MetadataCounter struct {
	prober *Prober
	logger *zap.Logger
}

func NewMetadataCounter(prober *Prober, logger *zap.Logger) *MetadataCounter {
	return &MetadataCounter{prober: prober, logger: logger}
}

func (c *MetadataCounter) CountFrames(ctx context.Context, path string) (int64, error) {
	pr, err := c.prober.Probe(ctx, path)
	if err != nil {
		return 0, err
	}
	return c.countFromProbe(pr, path)
}

// countFromProbe applies the header-to-count rules to an already parsed
// probe result. Split out so the decision table is testable without an
// ffprobe binary.
func (c *MetadataCounter) countFromProbe(pr *ProbeResult, path string) (int64, error) {
	v := pr.PrimaryVideo()
	if v == nil {
		return 0, fmt.Errorf("%q: no video stream", path)
	}

	if v.VariableFrameRate() {
		return 0, fmt.Errorf("%q: variable frame rate (%s vs %s): %w",
			path, v.AvgFrameRate, v.RFrameRate, port.ErrMetadataUnavailable)
	}

	if v.NbFrames > 0 {
		c.logger.Debug("frame count from stream header",
			zap.String("path", path),
			zap.Int64("frames", v.NbFrames),
		)
		return v.NbFrames, nil
	}

	duration := v.Duration
	if duration <= 0 {
		duration = pr.Duration
	}
	fps := v.FrameRate()
	if duration <= 0 || fps <= 0 {
		return 0, fmt.Errorf("%q: no nb_frames, duration, or frame rate in headers: %w",
			path, port.ErrMetadataUnavailable)
	}

	frames := int64(math.Round(duration * fps))
	c.logger.Debug("frame count from duration and frame rate",
		zap.String("path", path),
		zap.Float64("duration", duration),
		zap.Float64("fps", fps),
		zap.Int64("frames", frames),
	)
	return frames, nil
}
