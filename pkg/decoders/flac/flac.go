// Package flac decodes FLAC files into the audiodecoder.AudioDecoder shape.
package flac

import (
	"fmt"

	goflac "github.com/drgolem/go-flac/flac"

	"github.com/mabysh/orb-sound-system/pkg/audiodecoder"
)

// Decoder wraps github.com/drgolem/go-flac, implementing
// audiodecoder.AudioDecoder. The underlying decoder is always opened for
// 16-bit output, so no bit-depth conversion is needed here.
type Decoder struct {
	decoder  *goflac.FlacDecoder
	rate     int
	channels int
	bps      int
}

var _ audiodecoder.AudioDecoder = (*Decoder)(nil)

// NewDecoder creates a new FLAC decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Open opens and initializes a FLAC file for decoding.
func (d *Decoder) Open(fileName string) error {
	decoder, err := goflac.NewFlacFrameDecoder(16)
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Open(fileName); err != nil {
		decoder.Delete()
		return fmt.Errorf("failed to open file %s: %w", fileName, err)
	}

	rate, channels, bps := decoder.GetFormat()

	d.decoder = decoder
	d.rate = rate
	d.channels = channels
	d.bps = bps

	return nil
}

// Close closes the decoder and releases resources.
func (d *Decoder) Close() error {
	if d.decoder != nil {
		d.decoder.Close()
		d.decoder.Delete()
		d.decoder = nil
	}
	return nil
}

// GetFormat returns the sample rate, channel count, and bit depth.
func (d *Decoder) GetFormat() (rate, channels, bitsPerSample int) {
	return d.rate, d.channels, d.bps
}

// DecodeSamples decodes up to wantFrames frames into dst as interleaved
// PCM16.
func (d *Decoder) DecodeSamples(wantFrames int, dst []byte) (int, error) {
	if d.decoder == nil {
		return 0, audiodecoder.ErrNotOpen
	}
	return d.decoder.DecodeSamples(wantFrames, dst)
}
