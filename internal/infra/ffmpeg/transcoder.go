package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Transcoder wraps raw H.264 elementary streams into MP4 containers so
// they gain the header metadata the fast counting path needs. The video
// stream is copied, never re-encoded, so the frame count is preserved
// bit for bit.
type Transcoder struct {
	bin       string
	frameRate float64
	logger    *zap.Logger
}

// NewTranscoder builds a Transcoder. frameRate is the timing hint for
// the input demuxer; elementary streams carry no timestamps, so the
// resulting container duration is only as accurate as this hint. The
// frame count is unaffected.
func NewTranscoder(bin string, frameRate float64, logger *zap.Logger) *Transcoder {
	return &Transcoder{bin: bin, frameRate: frameRate, logger: logger}
}

func (t *Transcoder) Transcode(ctx context.Context, inputPath, outputPath string) error {
	cmd := exec.CommandContext(ctx, t.bin,
		"-hide_banner",
		"-loglevel", "error",
		"-framerate", strconv.FormatFloat(t.frameRate, 'g', -1, 64),
		"-f", "h264",
		"-i", inputPath,
		"-c:v", "copy",
		"-movflags", "+faststart",
		"-y",
		outputPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg transcode %q: %w, output: %s",
			inputPath, err, strings.TrimSpace(string(output)))
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return fmt.Errorf("transcode produced no output for %q: %w", inputPath, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("transcode produced empty output for %q", inputPath)
	}

	t.logger.Debug("transcoded elementary stream",
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.Int64("bytes", info.Size()),
	)
	return nil
}
