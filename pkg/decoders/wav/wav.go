// Package wav decodes PCM WAV files into the audiodecoder.AudioDecoder shape.
package wav

import (
	"fmt"
	"os"

	"github.com/youpy/go-wav"

	"github.com/mabysh/orb-sound-system/pkg/audiodecoder"
)

// Decoder wraps github.com/youpy/go-wav, implementing audiodecoder.AudioDecoder.
type Decoder struct {
	file     *os.File
	reader   *wav.Reader
	rate     int
	channels int
	srcBps   int // bits per sample as stored in the file
}

var _ audiodecoder.AudioDecoder = (*Decoder)(nil)

// NewDecoder creates a new WAV decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Open opens a WAV file for decoding.
func (d *Decoder) Open(fileName string) error {
	file, err := os.Open(fileName)
	if err != nil {
		return fmt.Errorf("failed to open WAV file: %w", err)
	}

	reader := wav.NewReader(file)
	format, err := reader.Format()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to read WAV format: %w", err)
	}

	if format.AudioFormat != wav.AudioFormatPCM {
		file.Close()
		return fmt.Errorf("unsupported WAV format: %d (only PCM supported)", format.AudioFormat)
	}

	d.file = file
	d.reader = reader
	d.rate = int(format.SampleRate)
	d.channels = int(format.NumChannels)
	d.srcBps = int(format.BitsPerSample)

	return nil
}

// Close closes the WAV file.
func (d *Decoder) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}

// GetFormat returns the sample rate, channel count, and the bit depth
// DecodeSamples writes (always 16, regardless of the file's own depth).
func (d *Decoder) GetFormat() (rate, channels, bitsPerSample int) {
	return d.rate, d.channels, 16
}

// DecodeSamples decodes up to wantFrames frames into dst as interleaved
// little-endian PCM16, converting from the file's native bit depth: 8-bit
// samples are recentred and widened, 24- and 32-bit samples keep their
// most significant 16 bits.
func (d *Decoder) DecodeSamples(wantFrames int, dst []byte) (int, error) {
	if d.reader == nil {
		return 0, audiodecoder.ErrNotOpen
	}

	frames := 0
	for frames < wantFrames {
		samplesData, err := d.reader.ReadSamples(1)
		if err != nil {
			return frames, err
		}
		if len(samplesData) == 0 {
			return frames, nil
		}

		for ch := 0; ch < d.channels; ch++ {
			var value16 int16
			if ch < len(samplesData[0].Values) {
				value16 = downscaleTo16(samplesData[0].Values[ch], d.srcBps)
			}
			offset := (frames*d.channels + ch) * 2
			if offset+2 > len(dst) {
				return frames, nil
			}
			dst[offset] = byte(uint16(value16))
			dst[offset+1] = byte(uint16(value16) >> 8)
		}

		frames++
	}

	return frames, nil
}

// downscaleTo16 maps a sample stored at srcBps bits to a signed 16-bit
// value. Depths above 16 drop the least significant bits (an arithmetic
// right shift); 8-bit samples are recentred to signed and shifted left.
func downscaleTo16(value int, srcBps int) int16 {
	switch srcBps {
	case 8:
		// go-wav reports 8-bit PCM as unsigned in [0,255]; recenter to signed.
		return int16((value - 128) << 8)
	case 16:
		return int16(value)
	case 24:
		return int16(value >> 8)
	case 32:
		return int16(value >> 16)
	default:
		return int16(value)
	}
}
