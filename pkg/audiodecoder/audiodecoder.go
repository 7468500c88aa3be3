// Package audiodecoder defines the collaborator interface every file
// decoder (WAV, FLAC, ...) implements so pkg/decoders can hand the engine a
// uniform source of PCM16 samples regardless of on-disk format.
package audiodecoder

import "errors"

// AudioDecoder is the common interface for all audio file decoders. Every
// implementation decodes to interleaved, little-endian PCM16 — the shape
// pkg/soundbridge's Producer.TopUp expects — even when the source file uses
// a different bit depth; the decoder itself absorbs that conversion so the
// bridge and everything downstream never has to know.
type AudioDecoder interface {
	// Open opens an audio file for decoding.
	Open(fileName string) error

	// Close closes the decoder and releases any resources it holds.
	Close() error

	// GetFormat returns the format the decoder is producing: sample rate in
	// Hz, channel count, and the bit depth actually written by
	// DecodeSamples (always 16 — kept in the return shape for parity with
	// callers that want to log or report the source file's native depth).
	GetFormat() (rate, channels, bitsPerSample int)

	// DecodeSamples decodes up to wantFrames frames (one sample per channel
	// each) into dst, which must be at least wantFrames * channels * 2
	// bytes. It returns the number of frames actually decoded, which is
	// less than wantFrames at end of file. A non-nil error accompanies the
	// final short read; it is never returned together with a full read.
	DecodeSamples(wantFrames int, dst []byte) (framesDecoded int, err error)
}

// ErrNotOpen is returned by DecodeSamples when called before Open has
// succeeded.
var ErrNotOpen = errors.New("audiodecoder: decoder not open")
