package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		path string
		kind VideoKind
		ok   bool
	}{
		{"clip.mp4", KindContainer, true},
		{"CLIP.MP4", KindContainer, true},
		{"stream.h264", KindElementary, true},
		{"stream.H264", KindElementary, true},
		{"/videos/deep/path.mp4", KindContainer, true},
		{"notes.txt", "", false},
		{"archive.mkv", "", false},
		{"noext", "", false},
	}

	for _, tt := range tests {
		kind, ok := DetectKind(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.kind, kind, tt.path)
	}
}

func TestFileResultLifecycle(t *testing.T) {
	res := NewFileResult(VideoFile{Path: "/videos/a.mp4", Kind: KindContainer, Size: 100})
	assert.Equal(t, ResultStatusPending, res.Status)
	assert.Zero(t, res.Elapsed())

	res.MarkCounting()
	assert.Equal(t, ResultStatusCounting, res.Status)
	assert.False(t, res.StartedAt.IsZero())

	res.MarkCounted(120, SourceMetadata)
	assert.Equal(t, ResultStatusCounted, res.Status)
	assert.Equal(t, int64(120), res.FrameCount)
	assert.Equal(t, SourceMetadata, res.Source)
	assert.GreaterOrEqual(t, res.Elapsed().Nanoseconds(), int64(0))

	rec := res.Record()
	assert.Equal(t, "a.mp4", rec.Filename)
	assert.Equal(t, int64(120), rec.FrameCount)
}

func TestFileResultFailure(t *testing.T) {
	res := NewFileResult(VideoFile{Path: "bad.h264", Kind: KindElementary})
	res.MarkCounting()
	res.MarkFailed("unreadable stream")

	assert.Equal(t, ResultStatusFailed, res.Status)
	assert.Equal(t, "unreadable stream", res.ErrorMessage)
	assert.Zero(t, res.FrameCount)
}

func TestRecordKeepsSourceFilename(t *testing.T) {
	res := NewFileResult(VideoFile{Path: "/videos/b.h264", Kind: KindElementary})
	res.MarkCounting()
	res.TranscodedPath = "/tmp/work/b.mp4"
	res.MarkCounted(60, SourceTranscode)

	// Counting via a transcoded copy must not rename the record.
	assert.Equal(t, "b.h264", res.Record().Filename)
}
