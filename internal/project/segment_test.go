package project

import (
	"math"
	"testing"
	"time"

	"overdub/internal/audio"
)

func TestNewSegmentDefaults(t *testing.T) {
	seg := NewSegment("seg_1", 1.5, 4.0, "hello world")

	if seg.TargetDuration != 2.5 {
		t.Errorf("TargetDuration = %f, want 2.5", seg.TargetDuration)
	}
	if seg.SpeechRate != 1.0 {
		t.Errorf("SpeechRate = %f, want 1.0", seg.SpeechRate)
	}
	if seg.FinalText != "hello world" {
		t.Errorf("FinalText = %q, want original text", seg.FinalText)
	}
}

func TestFinalTextPrecedence(t *testing.T) {
	cases := []struct {
		name       string
		translated string
		optimized  string
		want       string
	}{
		{"original only", "", "", "orig"},
		{"translated wins over original", "trans", "", "trans"},
		{"optimized wins over translated", "trans", "opt", "opt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seg := &Segment{ID: "s", Start: 0, End: 1, OriginalText: "orig", TranslatedText: tc.translated, OptimizedText: tc.optimized}
			seg.applyDefaults()
			if seg.FinalText != tc.want {
				t.Errorf("FinalText = %q, want %q", seg.FinalText, tc.want)
			}
		})
	}
}

func TestFinalTextNotOverwritten(t *testing.T) {
	seg := NewSegment("s", 0, 1, "orig")
	seg.UpdateFinalText("user edit", true)
	seg.OptimizedText = "machine text"
	seg.applyDefaults()

	if seg.FinalText != "user edit" {
		t.Errorf("FinalText = %q, explicit value must survive", seg.FinalText)
	}
	if !seg.UserModified {
		t.Error("UserModified should be set")
	}
}

func TestSyncRatioAndTimingError(t *testing.T) {
	seg := NewSegment("s", 0, 2, "text")

	if got := seg.SyncRatio(); got != 1.0 {
		t.Errorf("SyncRatio without audio = %f, want 1.0", got)
	}

	actual := 2.5
	seg.ActualDuration = &actual
	if got := seg.SyncRatio(); math.Abs(got-1.25) > 1e-9 {
		t.Errorf("SyncRatio = %f, want 1.25", got)
	}
	if got := seg.TimingErrorPercent(); math.Abs(got-25.0) > 1e-9 {
		t.Errorf("TimingErrorPercent = %f, want 25.0", got)
	}

	zero := NewSegment("z", 1, 1, "instant")
	zero.ActualDuration = &actual
	if got := zero.SyncRatio(); got != 1.0 {
		t.Errorf("SyncRatio with zero target = %f, want 1.0", got)
	}
}

func TestSetAudioRecomputesActualDuration(t *testing.T) {
	seg := NewSegment("s", 0, 2, "text")
	clip := audio.Synthesize(1500*time.Millisecond, audio.DefaultSampleRate)

	seg.SetAudio(clip)
	if seg.ActualDuration == nil {
		t.Fatal("ActualDuration should be set")
	}
	if math.Abs(*seg.ActualDuration-1.5) > 0.001 {
		t.Errorf("ActualDuration = %f, want 1.5", *seg.ActualDuration)
	}

	seg.AudioPath = "s.wav"
	seg.ClearAudio()
	if seg.Audio() != nil {
		t.Error("buffer should be dropped")
	}
	if seg.AudioPath != "s.wav" {
		t.Error("audio path must survive ClearAudio")
	}
}

func TestSegmentCloneIsDeep(t *testing.T) {
	actual := 2.0
	seg := NewSegment("s", 0, 2, "text")
	seg.ActualDuration = &actual
	seg.OriginalIndices = []int{1, 2}

	clone := seg.Clone()
	*clone.ActualDuration = 9.0
	clone.OriginalIndices[0] = 99

	if *seg.ActualDuration != 2.0 {
		t.Error("clone shares ActualDuration pointer")
	}
	if seg.OriginalIndices[0] != 1 {
		t.Error("clone shares OriginalIndices slice")
	}
}
