package audio

import (
	"math"
	"time"
)

const (
	// DefaultSampleRate is the sample rate bundle exports are encoded at.
	DefaultSampleRate = 44100
	// DefaultChannels is the channel count bundle exports are encoded at.
	DefaultChannels = 1
	// BitDepth is the PCM bit depth used throughout the engine.
	BitDepth = 16
)

// Clip is a decoded PCM audio buffer held in memory. Clips are transient:
// they are attached to segments while a pipeline stage works on them and are
// never part of a project's durable representation.
type Clip struct {
	SampleRate int
	Channels   int
	Samples    []int16 // interleaved when Channels > 1
}

// Duration returns the playback length of the clip.
func (c *Clip) Duration() time.Duration {
	if c == nil || c.SampleRate <= 0 || c.Channels <= 0 {
		return 0
	}
	frames := len(c.Samples) / c.Channels
	return time.Duration(float64(frames) / float64(c.SampleRate) * float64(time.Second))
}

// Seconds returns the playback length in seconds.
func (c *Clip) Seconds() float64 {
	return c.Duration().Seconds()
}

// Synthesize produces a mono sine clip of the requested duration. It exists
// for tests and demo tooling that need deterministic audio content without a
// TTS backend.
func Synthesize(d time.Duration, sampleRate int) *Clip {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if d < 0 {
		d = 0
	}
	frames := int(float64(sampleRate) * d.Seconds())
	samples := make([]int16, frames)
	const freq = 440.0
	for i := range samples {
		v := math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
		samples[i] = int16(v * 0.3 * math.MaxInt16)
	}
	return &Clip{SampleRate: sampleRate, Channels: 1, Samples: samples}
}
