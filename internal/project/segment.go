package project

import (
	"math"

	"overdub/internal/audio"
)

// Segment is one timed unit of subtitle content moving through the text
// pipeline original → translated → optimized → final. Identity (ID) is fixed
// at construction; all other fields are mutated by the owning Project.
type Segment struct {
	ID    string  `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`

	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text,omitempty"`
	OptimizedText  string `json:"optimized_text,omitempty"`
	FinalText      string `json:"final_text,omitempty"`

	TargetDuration float64  `json:"target_duration"`
	ActualDuration *float64 `json:"actual_duration,omitempty"`
	SpeechRate     float64  `json:"speech_rate"`

	Quality               string `json:"quality,omitempty"`
	NeedsUserConfirmation bool   `json:"needs_user_confirmation"`
	Confirmed             bool   `json:"confirmed"`
	UserModified          bool   `json:"user_modified"`

	TimingErrorMS *float64 `json:"timing_error_ms,omitempty"`
	Iterations    int      `json:"iterations,omitempty"`

	// AudioPath is the durable reference to this segment's audio artifact.
	// The decoded buffer itself is transient and never serialized.
	AudioPath     string `json:"audio_path,omitempty"`
	HasAudioFile  bool   `json:"has_audio_file,omitempty"`
	AudioFileSize int64  `json:"audio_file_size,omitempty"`

	// OriginalIndices are the 1-based indices of the pre-segmentation entries
	// this segment subsumes, for merge/split traceability.
	OriginalIndices []int `json:"original_indices,omitempty"`

	clip *audio.Clip
}

// NewSegment constructs a segment and applies construction-time defaults:
// target duration falls back to end-start and final text resolves through the
// optimized → translated → original precedence. Defaults are only computed
// here; explicitly set values are never overwritten afterwards.
func NewSegment(id string, start, end float64, originalText string) *Segment {
	seg := &Segment{
		ID:           id,
		Start:        start,
		End:          end,
		OriginalText: originalText,
		SpeechRate:   1.0,
	}
	seg.applyDefaults()
	return seg
}

func (s *Segment) applyDefaults() {
	if s.TargetDuration == 0 {
		s.TargetDuration = s.End - s.Start
	}
	if s.SpeechRate == 0 {
		s.SpeechRate = 1.0
	}
	if s.FinalText == "" {
		switch {
		case s.OptimizedText != "":
			s.FinalText = s.OptimizedText
		case s.TranslatedText != "":
			s.FinalText = s.TranslatedText
		default:
			s.FinalText = s.OriginalText
		}
	}
}

// SyncRatio reports actual duration relative to target duration. When the
// actual duration is unknown or the target is zero it reports 1.0.
func (s *Segment) SyncRatio() float64 {
	if s.ActualDuration == nil || s.TargetDuration == 0 {
		return 1.0
	}
	return *s.ActualDuration / s.TargetDuration
}

// TimingErrorPercent is the absolute deviation of SyncRatio from 1.0 in percent.
func (s *Segment) TimingErrorPercent() float64 {
	return math.Abs(s.SyncRatio()-1.0) * 100
}

// CurrentText returns the text the next pipeline stage should consume.
func (s *Segment) CurrentText() string {
	switch {
	case s.FinalText != "":
		return s.FinalText
	case s.OptimizedText != "":
		return s.OptimizedText
	case s.TranslatedText != "":
		return s.TranslatedText
	default:
		return s.OriginalText
	}
}

// UpdateFinalText replaces the final text and optionally marks the segment as
// user-modified.
func (s *Segment) UpdateFinalText(text string, markModified bool) {
	s.FinalText = text
	if markModified {
		s.UserModified = true
	}
}

// SetAudio attaches a decoded audio buffer and recomputes the actual duration.
func (s *Segment) SetAudio(clip *audio.Clip) {
	s.clip = clip
	if clip != nil {
		seconds := clip.Seconds()
		s.ActualDuration = &seconds
	}
}

// Audio returns the transient audio buffer, if any.
func (s *Segment) Audio() *audio.Clip {
	return s.clip
}

// ClearAudio drops the in-memory buffer. The durable audio path reference is
// kept so the artifact can be re-decoded later.
func (s *Segment) ClearAudio() {
	s.clip = nil
}

// Clone returns a deep copy of the segment. The transient audio buffer is
// shared with the original; buffers are read-only while cloned snapshots are
// being serialized.
func (s *Segment) Clone() *Segment {
	clone := *s
	if s.ActualDuration != nil {
		v := *s.ActualDuration
		clone.ActualDuration = &v
	}
	if s.TimingErrorMS != nil {
		v := *s.TimingErrorMS
		clone.TimingErrorMS = &v
	}
	if s.OriginalIndices != nil {
		clone.OriginalIndices = append([]int(nil), s.OriginalIndices...)
	}
	return &clone
}

func cloneSegments(segments []*Segment) []*Segment {
	if segments == nil {
		return nil
	}
	out := make([]*Segment, len(segments))
	for i, seg := range segments {
		out[i] = seg.Clone()
	}
	return out
}
