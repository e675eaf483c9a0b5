package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Strategy string

const (
	// StrategyAuto tries metadata counting first and falls back to a
	// full decode when metadata is missing or unreliable.
	StrategyAuto Strategy = "auto"
	// StrategyDecode always decodes the stream to exhaustion.
	StrategyDecode Strategy = "decode"
	// StrategyMetadata only consults container metadata and records a
	// failure when none is usable.
	StrategyMetadata Strategy = "metadata"
)

type Config struct {
	VideoFilepath  string `env:"VIDEO_FILEPATH"  envDefault:"."`
	OutputFilepath string `env:"OUTPUT_FILEPATH" envDefault:"."`
	OutputName     string `env:"OUTPUT_NAME"     envDefault:"counts.csv"`

	MaxWorkers int    `env:"MAX_WORKERS"     envDefault:"4"`
	Strategy   string `env:"COUNT_STRATEGY"  envDefault:"auto"`

	TranscodeH264 bool    `env:"TRANSCODE_H264"      envDefault:"false"`
	FrameRateHint float64 `env:"H264_FRAMERATE_HINT" envDefault:"25"`

	FFmpegBin    string `env:"FFMPEG_BIN"          envDefault:"ffmpeg"`
	FFprobeBin   string `env:"FFPROBE_BIN"         envDefault:"ffprobe"`
	MinFileBytes int64  `env:"MIN_FILE_SIZE_BYTES" envDefault:"64"`

	TempDir string `env:"TEMP_DIR" envDefault:"/tmp/framecounter"`

	MetricsPort  int    `env:"METRICS_PORT"  envDefault:"0"`
	OTLPEndpoint string `env:"OTLP_ENDPOINT" envDefault:""`
	LogLevel     string `env:"LOG_LEVEL"     envDefault:"info"`
	NoProgress   bool   `env:"NO_PROGRESS"   envDefault:"false"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch Strategy(c.Strategy) {
	case StrategyAuto, StrategyDecode, StrategyMetadata:
	default:
		return fmt.Errorf("invalid strategy %q (want auto, decode, or metadata)", c.Strategy)
	}
	if c.MaxWorkers < 1 {
		return fmt.Errorf("max workers must be at least 1, got %d", c.MaxWorkers)
	}
	if c.FrameRateHint <= 0 {
		return fmt.Errorf("framerate hint must be positive, got %g", c.FrameRateHint)
	}
	return nil
}
