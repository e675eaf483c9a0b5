package port

import (
	"context"
	"errors"
)

// ErrMetadataUnavailable signals that container metadata is missing,
// malformed, or too unreliable to trust (variable frame rate, raw
// elementary stream). Callers fall back to decode counting instead of
// accepting a wrong number.
var ErrMetadataUnavailable = errors.New("container metadata unavailable or unreliable")

type FrameCounter interface {
	// CountFrames returns the number of video frames in the file at
	// path. Implementations either decode the stream to exhaustion or
	// derive the count from container metadata.
	CountFrames(ctx context.Context, path string) (int64, error)
}
