package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const wavHeaderSize = 44

// ErrInvalidWAV wraps every structural decode failure so callers can tell
// malformed audio apart from i/o problems.
var ErrInvalidWAV = errors.New("invalid wav data")

// EncodeWAV serializes a clip to a canonical 16-bit PCM RIFF/WAVE file.
func EncodeWAV(clip *Clip) ([]byte, error) {
	if clip == nil {
		return nil, errors.New("clip is nil")
	}
	if clip.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", clip.SampleRate)
	}
	channels := clip.Channels
	if channels <= 0 {
		channels = DefaultChannels
	}

	dataSize := len(clip.Samples) * 2
	blockAlign := channels * BitDepth / 8
	byteRate := clip.SampleRate * blockAlign

	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+dataSize))
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(clip.SampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(buf, binary.LittleEndian, uint16(BitDepth))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))
	for _, sample := range clip.Samples {
		binary.Write(buf, binary.LittleEndian, sample)
	}

	return buf.Bytes(), nil
}

// DecodeWAV parses a 16-bit PCM RIFF/WAVE file produced by EncodeWAV or any
// compatible encoder. Non-PCM encodings are rejected.
func DecodeWAV(data []byte) (*Clip, error) {
	if len(data) < wavHeaderSize {
		return nil, fmt.Errorf("%w: too short: %d bytes", ErrInvalidWAV, len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("%w: not a RIFF/WAVE stream", ErrInvalidWAV)
	}

	var (
		sampleRate int
		channels   int
		bitDepth   int
		pcm        []byte
	)

	// Walk chunks; fmt must precede data.
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkSize > len(data) {
			return nil, fmt.Errorf("%w: truncated %q chunk", ErrInvalidWAV, chunkID)
		}
		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, fmt.Errorf("%w: fmt chunk too short", ErrInvalidWAV)
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 {
				return nil, fmt.Errorf("%w: unsupported format %d (want PCM)", ErrInvalidWAV, format)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitDepth = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			pcm = data[body : body+chunkSize]
		}
		// Chunks are word-aligned.
		offset = body + chunkSize + chunkSize%2
	}

	if sampleRate == 0 || channels == 0 {
		return nil, fmt.Errorf("%w: missing fmt chunk", ErrInvalidWAV)
	}
	if bitDepth != BitDepth {
		return nil, fmt.Errorf("%w: unsupported bit depth %d (want %d)", ErrInvalidWAV, bitDepth, BitDepth)
	}
	if pcm == nil {
		return nil, fmt.Errorf("%w: missing data chunk", ErrInvalidWAV)
	}

	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
	}
	return &Clip{SampleRate: sampleRate, Channels: channels, Samples: samples}, nil
}
