package probe

import "testing"

const sampleJSON = `{
  "streams": [
    {"index": 0, "codec_name": "mjpeg", "codec_type": "video",
     "width": 600, "height": 882, "disposition": {"attached_pic": 1}},
    {"index": 1, "codec_name": "h264", "codec_type": "video",
     "width": 1920, "height": 1080, "duration": "1420.100000",
     "disposition": {"attached_pic": 0}},
    {"index": 2, "codec_name": "aac", "codec_type": "audio"}
  ],
  "format": {
    "filename": "episode.mkv",
    "format_name": "matroska,webm",
    "duration": "1421.504000",
    "size": "734003200",
    "bit_rate": "4131072"
  }
}`

func TestParseJSON(t *testing.T) {
	r, err := ParseJSON([]byte(sampleJSON))
	if err != nil {
		t.Fatal(err)
	}

	if got := r.Duration(); got != 1421.504 {
		t.Errorf("Duration() = %v, want 1421.504", got)
	}
	if r.PrimaryVideo == nil {
		t.Fatal("PrimaryVideo is nil")
	}
	if r.PrimaryVideo.Index != 1 {
		t.Errorf("PrimaryVideo.Index = %d, want 1 (attached pic skipped)", r.PrimaryVideo.Index)
	}
	if got := r.Resolution(); got != "1920x1080" {
		t.Errorf("Resolution() = %q, want 1920x1080", got)
	}
	if r.Format.Size != 734003200 {
		t.Errorf("Format.Size = %d", r.Format.Size)
	}
}

func TestParseJSON_FallbackDuration(t *testing.T) {
	r, err := ParseJSON([]byte(`{
	  "streams": [{"index": 0, "codec_type": "video", "codec_name": "h264",
	    "width": 1280, "height": 720, "duration": "88.5"}],
	  "format": {"filename": "clip.mp4"}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if got := r.Duration(); got != 88.5 {
		t.Errorf("Duration() = %v, want stream fallback 88.5", got)
	}
}

func TestParseJSON_NoVideo(t *testing.T) {
	r, err := ParseJSON([]byte(`{"streams": [{"index": 0, "codec_type": "audio"}], "format": {}}`))
	if err != nil {
		t.Fatal(err)
	}
	if r.PrimaryVideo != nil {
		t.Error("PrimaryVideo should be nil for audio-only input")
	}
	if got := r.Resolution(); got != "unknown" {
		t.Errorf("Resolution() = %q, want unknown", got)
	}
}

func TestParseJSON_Invalid(t *testing.T) {
	if _, err := ParseJSON([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
