// Package csvreport serializes count records to the counts.csv output.
package csvreport

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/Elias2660/Video-Frame-Counter/internal/domain/entity"
)

// Header columns, in order. The names match the report format consumers
// of counts.csv already parse.
var Header = []string{"filename", "framecount"}

type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

// WriteReport writes the header plus one row per record, overwriting
// any existing file at outputPath. Callers are expected to pass records
// already sorted by filename so repeated runs produce identical files.
func (w *Writer) WriteReport(ctx context.Context, records []entity.CountRecord, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, rec := range records {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		row := []string{rec.Filename, strconv.FormatInt(rec.FrameCount, 10)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row for %s: %w", rec.Filename, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return nil
}
