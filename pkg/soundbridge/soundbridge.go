// Package soundbridge implements the ring-buffered bridge that streams
// decoded PCM samples from a file decoder (the Producer side, driven by the
// playback engine) to the audio device (the Consumer side, driven by the
// device's own, possibly real-time, callback thread).
//
// It is a bounded single-producer/single-consumer queue of signed 16-bit
// samples. Both sides are wait-free: the producer never blocks on the
// consumer and never allocates after construction, and the consumer never
// blocks on the producer, substituting silence on under-run instead.
package soundbridge

import (
	"sync/atomic"
)

// Decoder is the minimal decoding surface TopUp needs: decode up to
// wantFrames frames (one sample per channel each) into dst, returning the
// number of frames actually decoded. Any non-nil error, or a short read,
// means the decoder has nothing more to give. Implemented by
// pkg/audiodecoder.AudioDecoder for real files.
type Decoder interface {
	DecodeSamples(wantFrames int, dst []byte) (framesDecoded int, err error)
}

// bridge is the shared state behind one Producer/Consumer pair. Indices
// wrap with a modulo rather than a power-of-two mask, so the backing array
// is exactly capacity samples — spec.md §6's default sizing is a MUST, and
// rounding up to the next power of two (as the teacher's own ringbuffer.go
// does for its byte buffer) would silently double it in the common case.
type bridge struct {
	buf      []int16
	writePos atomic.Uint64
	readPos  atomic.Uint64

	producerClosed atomic.Bool

	channels   uint16
	sampleRate uint32
}

// New creates a new bridge sized to hold exactly capacity interleaved
// samples, returning the Producer half for the engine and the Consumer
// half for the audio device. channels and sampleRate are captured once,
// from the decoder's reported format, and never change for the life of
// the bridge.
func New(capacity uint32, channels uint16, sampleRate uint32) (*Producer, *Consumer) {
	if capacity == 0 {
		capacity = 1
	}
	b := &bridge{
		buf:        make([]int16, capacity),
		channels:   channels,
		sampleRate: sampleRate,
	}
	p := &Producer{
		b:       b,
		scratch: make([]byte, capacity*2), // pre-allocated once; TopUp never allocates again
	}
	c := &Consumer{b: b}
	return p, c
}

// RecommendedCapacity is spec.md §6's default bridge size: roughly 50ms of
// audio at the given sample rate and channel count (sampleRate/20, rounded
// up, times channels).
func RecommendedCapacity(sampleRate uint32, channels uint16) uint32 {
	return ((sampleRate + 19) / 20) * uint32(channels)
}

func (b *bridge) availableWrite() uint64 {
	return uint64(len(b.buf)) - (b.writePos.Load() - b.readPos.Load())
}

func (b *bridge) availableRead() uint64 {
	return b.writePos.Load() - b.readPos.Load()
}

// Producer is the engine-owned half of a bridge: it pulls decoded samples
// from a Decoder on demand and pushes them into the queue.
type Producer struct {
	b       *bridge
	scratch []byte
}

// TopUp reads the current number of free slots S, decodes up to S samples
// from dec in whole frames (S rounded down to a multiple of the channel
// count), and pushes each into the queue. It never blocks, never
// allocates, and writes at most S samples. It reports endOfStream true iff
// dec returned an error or fewer frames than requested; if S is smaller
// than one frame it decodes nothing and reports false.
func (p *Producer) TopUp(dec Decoder) (endOfStream bool) {
	free := p.b.availableWrite()
	channels := uint64(p.b.channels)
	if channels == 0 || free < channels {
		return false
	}
	wantFrames := int(free / channels)

	needBytes := wantFrames * int(channels) * 2
	if len(p.scratch) < needBytes {
		// Only grows if the bridge's own capacity formula under-sized the
		// scratch buffer for the current channel count; steady state never
		// hits this branch once the format is established.
		p.scratch = make([]byte, needBytes)
	}

	framesDecoded, err := dec.DecodeSamples(wantFrames, p.scratch[:needBytes])
	if framesDecoded <= 0 {
		return true
	}

	size := uint64(len(p.b.buf))
	writePos := p.b.writePos.Load()
	for i := 0; i < framesDecoded; i++ {
		for ch := uint64(0); ch < channels; ch++ {
			offset := (uint64(i)*channels + ch) * 2
			sample := int16(uint16(p.scratch[offset]) | uint16(p.scratch[offset+1])<<8)
			pos := (writePos + uint64(i)*channels + ch) % size
			p.b.buf[pos] = sample
		}
	}
	p.b.writePos.Store(writePos + uint64(framesDecoded)*channels)

	return err != nil || framesDecoded < wantFrames
}

// Close signals end-of-stream to the Consumer. It is the Go equivalent of
// dropping the producer half in the original implementation.
func (p *Producer) Close() {
	p.b.producerClosed.Store(true)
}

// Consumer is the audio-device-owned half of a bridge, polled from the
// device's own callback thread.
type Consumer struct {
	b *bridge
}

// NextSample returns the next queued sample. If the queue is empty and the
// producer has been closed, it returns (0, false): end of stream, and it
// will never again return true. If the queue is empty but the producer is
// still open, it returns (0, true): silence, substituted for an under-run
// rather than blocking.
func (c *Consumer) NextSample() (sample int16, ok bool) {
	readPos := c.b.readPos.Load()
	if c.b.writePos.Load() != readPos {
		pos := readPos % uint64(len(c.b.buf))
		sample = c.b.buf[pos]
		c.b.readPos.Store(readPos + 1)
		return sample, true
	}
	if c.b.producerClosed.Load() {
		return 0, false
	}
	return 0, true
}

// Channels returns the channel count captured at construction.
func (c *Consumer) Channels() uint16 { return c.b.channels }

// SampleRate returns the sample rate captured at construction.
func (c *Consumer) SampleRate() uint32 { return c.b.sampleRate }

// AvailableRead reports how many samples are currently queued. Exposed for
// monitoring only; not part of the wait-free contract.
func (c *Consumer) AvailableRead() uint64 { return c.b.availableRead() }
