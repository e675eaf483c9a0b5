package entity

import "time"

type ResultStatus string

const (
	ResultStatusPending  ResultStatus = "PENDING"
	ResultStatusCounting ResultStatus = "COUNTING"
	ResultStatusCounted  ResultStatus = "COUNTED"
	ResultStatusFailed   ResultStatus = "FAILED"
)

// CountSource records which strategy produced a frame count.
type CountSource string

const (
	// SourceDecode is a full decode of the stream: exact, slow.
	SourceDecode CountSource = "decode"
	// SourceMetadata derives the count from container headers: fast,
	// approximate for variable-frame-rate streams.
	SourceMetadata CountSource = "metadata"
	// SourceTranscode counts container metadata of a transcoded copy of
	// an elementary stream.
	SourceTranscode CountSource = "transcode+metadata"
)

// CountRecord is one output row: a filename paired with its frame count.
// Zero is a valid count (empty or all-corrupt stream).
type CountRecord struct {
	Filename   string
	FrameCount int64
}

// FileResult tracks the lifecycle of one input file through the batch.
type FileResult struct {
	File           VideoFile
	Status         ResultStatus
	FrameCount     int64
	Source         CountSource
	TranscodedPath string
	ErrorMessage   string
	StartedAt      time.Time
	FinishedAt     time.Time
}

func NewFileResult(file VideoFile) *FileResult {
	return &FileResult{
		File:   file,
		Status: ResultStatusPending,
	}
}

func (r *FileResult) MarkCounting() {
	r.Status = ResultStatusCounting
	r.StartedAt = time.Now().UTC()
}

func (r *FileResult) MarkCounted(frames int64, source CountSource) {
	r.Status = ResultStatusCounted
	r.FrameCount = frames
	r.Source = source
	r.FinishedAt = time.Now().UTC()
}

func (r *FileResult) MarkFailed(errMsg string) {
	r.Status = ResultStatusFailed
	r.ErrorMessage = errMsg
	r.FinishedAt = time.Now().UTC()
}

// Record converts a result into its CSV row. Failed results carry a
// zero count; records always keep the source filename, even when the
// count came from a transcoded copy.
func (r *FileResult) Record() CountRecord {
	return CountRecord{
		Filename:   r.File.Name(),
		FrameCount: r.FrameCount,
	}
}

// Elapsed returns the wall time spent on this file.
func (r *FileResult) Elapsed() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
