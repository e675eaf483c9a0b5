package port

import "context"

type Transcoder interface {
	// Transcode wraps the elementary stream at inputPath into an MP4
	// container at outputPath without re-encoding frames. The source
	// file is left untouched.
	Transcode(ctx context.Context, inputPath, outputPath string) error
}
