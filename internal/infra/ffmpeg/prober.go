// Package ffmpeg wraps the ffmpeg and ffprobe binaries behind the domain
// ports: container probing, the two frame-counting strategies, and the
// elementary-stream transcoder.
package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Prober runs a single ffprobe JSON call per file and returns the parsed
// result. One call covers everything the counters need (format duration,
// stream frame counts, frame rates).
type Prober struct {
	bin string
}

func NewProber(bin string) *Prober {
	return &Prober{bin: bin}
}

func (p *Prober) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	cmd := exec.CommandContext(ctx, p.bin,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %q: %w", path, err)
	}

	return ParseProbeJSON(out)
}

// ParseProbeJSON converts raw ffprobe JSON output into a ProbeResult.
// Exported for testing without a real ffprobe binary.
func ParseProbeJSON(data []byte) (*ProbeResult, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	return buildResult(&raw), nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
}

type ffprobeStream struct {
	Index        int    `json:"index"`
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Duration     string `json:"duration"`
	NbFrames     string `json:"nb_frames"`
	AvgFrameRate string `json:"avg_frame_rate"`
	RFrameRate   string `json:"r_frame_rate"`
}

// --- Domain types ---

type ProbeResult struct {
	FormatName string
	Duration   float64
	Size       int64
	BitRate    int64
	Video      []VideoStreamInfo
}

type VideoStreamInfo struct {
	Index        int
	Codec        string
	Width        int
	Height       int
	Duration     float64
	NbFrames     int64
	AvgFrameRate string
	RFrameRate   string
}

// PrimaryVideo returns the first video stream, or nil when the file has
// none.
func (pr *ProbeResult) PrimaryVideo() *VideoStreamInfo {
	if len(pr.Video) == 0 {
		return nil
	}
	return &pr.Video[0]
}

// VariableFrameRate reports whether the stream's average and real base
// frame rates disagree, which makes duration-based frame counts
// untrustworthy.
func (v *VideoStreamInfo) VariableFrameRate() bool {
	if v.AvgFrameRate == "" || v.RFrameRate == "" {
		return false
	}
	avg := parseRational(v.AvgFrameRate)
	base := parseRational(v.RFrameRate)
	if avg <= 0 || base <= 0 {
		return false
	}
	return math.Abs(avg-base) > 0.01
}

// FrameRate returns the average frame rate in frames per second, or 0
// when unknown.
func (v *VideoStreamInfo) FrameRate() float64 {
	return parseRational(v.AvgFrameRate)
}

func buildResult(raw *ffprobeOutput) *ProbeResult {
	pr := &ProbeResult{
		FormatName: raw.Format.FormatName,
		Duration:   parseFloat(raw.Format.Duration),
		Size:       parseInt64(raw.Format.Size),
		BitRate:    parseInt64(raw.Format.BitRate),
	}

	for i := range raw.Streams {
		s := &raw.Streams[i]
		if s.CodecType != "video" {
			continue
		}
		pr.Video = append(pr.Video, VideoStreamInfo{
			Index:        s.Index,
			Codec:        s.CodecName,
			Width:        s.Width,
			Height:       s.Height,
			Duration:     parseFloat(s.Duration),
			NbFrames:     parseInt64(s.NbFrames),
			AvgFrameRate: s.AvgFrameRate,
			RFrameRate:   s.RFrameRate,
		})
	}
	return pr
}

// --- Numeric parsing helpers (ffprobe returns numbers as strings) ---

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

// parseRational parses ffprobe rationals like "30000/1001". A zero
// denominator (ffprobe's "0/0" for unknown) yields 0.
func parseRational(s string) float64 {
	num, den, found := strings.Cut(strings.TrimSpace(s), "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}
