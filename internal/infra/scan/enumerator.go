// Package scan discovers video files in the input directory.
package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Elias2660/Video-Frame-Counter/internal/domain/entity"
	"go.uber.org/zap"
)

type Enumerator struct {
	logger *zap.Logger
}

func NewEnumerator(logger *zap.Logger) *Enumerator {
	return &Enumerator{logger: logger}
}

// Discover lists recognized video files directly under dir, sorted by
// filename. Subdirectories are not descended into; the input layout is a
// flat recording directory.
func (e *Enumerator) Discover(ctx context.Context, dir string) ([]entity.VideoFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("input directory %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path %q is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input directory %q: %w", dir, err)
	}

	var files []entity.VideoFile
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}

		kind, ok := entity.DetectKind(entry.Name())
		if !ok {
			e.logger.Debug("ignoring non-video file", zap.String("name", entry.Name()))
			continue
		}

		fi, err := entry.Info()
		if err != nil {
			e.logger.Warn("cannot stat file, skipping", zap.String("name", entry.Name()), zap.Error(err))
			continue
		}

		files = append(files, entity.VideoFile{
			Path: filepath.Join(dir, entry.Name()),
			Kind: kind,
			Size: fi.Size(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name() < files[j].Name()
	})

	return files, nil
}
