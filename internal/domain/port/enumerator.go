package port

import (
	"context"

	"github.com/Elias2660/Video-Frame-Counter/internal/domain/entity"
)

type Enumerator interface {
	// Discover lists the recognized video files directly under dir,
	// sorted by filename. A missing or non-directory dir is an error;
	// a directory with no matching files is an empty slice.
	Discover(ctx context.Context, dir string) ([]entity.VideoFile, error)
}
