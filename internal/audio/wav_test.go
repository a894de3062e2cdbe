package audio

import (
	"math"
	"testing"
	"time"
)

func TestSynthesizeDuration(t *testing.T) {
	clip := Synthesize(2*time.Second, DefaultSampleRate)
	if clip.SampleRate != DefaultSampleRate {
		t.Errorf("SampleRate = %d, want %d", clip.SampleRate, DefaultSampleRate)
	}
	if got := clip.Seconds(); math.Abs(got-2.0) > 0.001 {
		t.Errorf("Seconds = %f, want 2.0", got)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	clip := Synthesize(500*time.Millisecond, 22050)

	data, err := EncodeWAV(clip)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}
	if len(data) != wavHeaderSize+len(clip.Samples)*2 {
		t.Errorf("encoded size = %d, want %d", len(data), wavHeaderSize+len(clip.Samples)*2)
	}

	decoded, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}
	if decoded.SampleRate != clip.SampleRate {
		t.Errorf("SampleRate = %d, want %d", decoded.SampleRate, clip.SampleRate)
	}
	if decoded.Channels != clip.Channels {
		t.Errorf("Channels = %d, want %d", decoded.Channels, clip.Channels)
	}
	if len(decoded.Samples) != len(clip.Samples) {
		t.Fatalf("sample count = %d, want %d", len(decoded.Samples), len(clip.Samples))
	}
	for i := range clip.Samples {
		if decoded.Samples[i] != clip.Samples[i] {
			t.Fatalf("sample %d = %d, want %d", i, decoded.Samples[i], clip.Samples[i])
		}
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := DecodeWAV([]byte("definitely not a wav file, far too short to matter")); err == nil {
		t.Error("expected error for non-RIFF input")
	}
	if _, err := DecodeWAV(nil); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestEncodeRejectsNilClip(t *testing.T) {
	if _, err := EncodeWAV(nil); err == nil {
		t.Error("expected error for nil clip")
	}
}

func TestClipDurationEdgeCases(t *testing.T) {
	var nilClip *Clip
	if nilClip.Duration() != 0 {
		t.Error("nil clip should have zero duration")
	}
	empty := &Clip{SampleRate: 44100, Channels: 1}
	if empty.Duration() != 0 {
		t.Error("empty clip should have zero duration")
	}
}
