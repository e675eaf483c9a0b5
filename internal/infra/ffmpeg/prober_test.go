package ffmpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mp4ProbeJSON = `{
  "streams": [
    {
      "index": 0,
      "codec_name": "h264",
      "codec_type": "video",
      "width": 1280,
      "height": 720,
      "duration": "4.000000",
      "nb_frames": "120",
      "avg_frame_rate": "30/1",
      "r_frame_rate": "30/1"
    },
    {
      "index": 1,
      "codec_name": "aac",
      "codec_type": "audio"
    }
  ],
  "format": {
    "filename": "a.mp4",
    "format_name": "mov,mp4,m4a,3gp,3g2,mj2",
    "duration": "4.000000",
    "size": "524288",
    "bit_rate": "1048576"
  }
}`

const h264ProbeJSON = `{
  "streams": [
    {
      "index": 0,
      "codec_name": "h264",
      "codec_type": "video",
      "width": 640,
      "height": 480,
      "avg_frame_rate": "25/1",
      "r_frame_rate": "25/1"
    }
  ],
  "format": {
    "filename": "b.h264",
    "format_name": "h264"
  }
}`

func TestParseProbeJSONContainer(t *testing.T) {
	pr, err := ParseProbeJSON([]byte(mp4ProbeJSON))
	require.NoError(t, err)

	assert.Equal(t, "mov,mp4,m4a,3gp,3g2,mj2", pr.FormatName)
	assert.InDelta(t, 4.0, pr.Duration, 1e-9)
	assert.Equal(t, int64(524288), pr.Size)

	v := pr.PrimaryVideo()
	require.NotNil(t, v)
	assert.Equal(t, "h264", v.Codec)
	assert.Equal(t, 1280, v.Width)
	assert.Equal(t, int64(120), v.NbFrames)
	assert.InDelta(t, 30.0, v.FrameRate(), 1e-9)
	assert.False(t, v.VariableFrameRate())
}

func TestParseProbeJSONElementaryStream(t *testing.T) {
	pr, err := ParseProbeJSON([]byte(h264ProbeJSON))
	require.NoError(t, err)

	assert.Equal(t, "h264", pr.FormatName)
	assert.Zero(t, pr.Duration)

	v := pr.PrimaryVideo()
	require.NotNil(t, v)
	assert.Zero(t, v.NbFrames)
	assert.Zero(t, v.Duration)
}

func TestParseProbeJSONSkipsNonVideoStreams(t *testing.T) {
	pr, err := ParseProbeJSON([]byte(mp4ProbeJSON))
	require.NoError(t, err)
	assert.Len(t, pr.Video, 1)
}

func TestParseProbeJSONInvalid(t *testing.T) {
	_, err := ParseProbeJSON([]byte("not json"))
	assert.Error(t, err)
}

func TestPrimaryVideoNilWhenAudioOnly(t *testing.T) {
	pr, err := ParseProbeJSON([]byte(`{"streams":[{"index":0,"codec_type":"audio"}],"format":{}}`))
	require.NoError(t, err)
	assert.Nil(t, pr.PrimaryVideo())
}

func TestVariableFrameRate(t *testing.T) {
	tests := []struct {
		name string
		avg  string
		real string
		want bool
	}{
		{"constant", "30/1", "30/1", false},
		{"ntsc constant", "30000/1001", "30000/1001", false},
		{"variable", "2997/125", "30/1", true},
		{"unknown avg", "0/0", "30/1", false},
		{"missing", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := VideoStreamInfo{AvgFrameRate: tt.avg, RFrameRate: tt.real}
			assert.Equal(t, tt.want, v.VariableFrameRate())
		})
	}
}

func TestParseRational(t *testing.T) {
	assert.InDelta(t, 30.0, parseRational("30/1"), 1e-9)
	assert.InDelta(t, 29.97, parseRational("30000/1001"), 0.001)
	assert.InDelta(t, 25.0, parseRational("25"), 1e-9)
	assert.Zero(t, parseRational("0/0"))
	assert.Zero(t, parseRational("garbage"))
	assert.Zero(t, parseRational(""))
}
