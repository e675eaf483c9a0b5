package entity

import (
	"path/filepath"
	"strings"
)

type VideoKind string

const (
	// KindElementary is a raw encoded stream without container framing.
	// It carries no duration or frame-count metadata.
	KindElementary VideoKind = "h264"
	// KindContainer is an MP4 container wrapping encoded streams plus
	// metadata such as duration, frame rate, and frame count.
	KindContainer VideoKind = "mp4"
)

// VideoFile is one discovered input file. Immutable once enumerated.
type VideoFile struct {
	Path string
	Kind VideoKind
	Size int64
}

// Name returns the base filename used for CSV records and logging.
func (v VideoFile) Name() string {
	return filepath.Base(v.Path)
}

// DetectKind maps a file extension to a VideoKind. The second return is
// false for extensions this tool does not recognize.
func DetectKind(path string) (VideoKind, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".h264":
		return KindElementary, true
	case ".mp4":
		return KindContainer, true
	default:
		return "", false
	}
}
