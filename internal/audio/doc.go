// Package audio provides the in-memory PCM clip type segments hold
// transiently, plus the 16-bit PCM WAV codec used by bundle export.
package audio
