// Package decoders selects and opens the right audiodecoder.AudioDecoder
// for a file based on its extension.
package decoders

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mabysh/orb-sound-system/pkg/audiodecoder"
	"github.com/mabysh/orb-sound-system/pkg/decoders/flac"
	"github.com/mabysh/orb-sound-system/pkg/decoders/wav"
)

// NewDecoder creates and opens the appropriate decoder for fileName based
// on its extension. Supports .wav, .flac, and .fla. Returns an opened
// decoder ready for use, or an error if the format is unsupported or the
// file cannot be opened.
func NewDecoder(fileName string) (audiodecoder.AudioDecoder, error) {
	ext := strings.ToLower(filepath.Ext(fileName))

	var decoder audiodecoder.AudioDecoder

	switch ext {
	case ".flac", ".fla":
		decoder = flac.NewDecoder()
	case ".wav":
		decoder = wav.NewDecoder()
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .wav, .flac, .fla)", ext)
	}

	if err := decoder.Open(fileName); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", fileName, err)
	}

	return decoder, nil
}
