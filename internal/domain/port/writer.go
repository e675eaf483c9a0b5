package port

import (
	"context"

	"github.com/Elias2660/Video-Frame-Counter/internal/domain/entity"
)

type ReportWriter interface {
	// WriteReport writes the header row plus one row per record to
	// outputPath, overwriting any existing file.
	WriteReport(ctx context.Context, records []entity.CountRecord, outputPath string) error
}
