package media

import (
	"encoding/binary"
	"fmt"

	"speechmark/internal/config"

	vad "github.com/maxhawkins/go-webrtcvad"
)

// Chunk is a window of audio plus its offset on the source timeline, so
// chunk-relative timestamps can be rebased after inference.
type Chunk struct {
	Samples  []float32
	OffsetMS int64
}

// Chunker splits long audio into bounded windows. With VAD enabled, each cut
// point is moved back onto the nearest silent frame so words are not split
// mid-utterance.
type Chunker struct {
	rate       int
	windowSize int // samples per chunk, 0 = no chunking
	frameSize  int // samples per VAD frame
	searchSize int // how far back from a hard boundary to look for silence
	detector   *vad.VAD
}

// NewChunker builds a chunker for the given sample rate and window length in
// seconds. chunkSec 0 disables splitting.
func NewChunker(cfg *config.Config, rate, chunkSec int) (*Chunker, error) {
	c := &Chunker{
		rate:       rate,
		windowSize: chunkSec * rate,
		searchSize: 10 * rate,
	}
	if chunkSec == 0 || !cfg.Media.VADSplit {
		return c, nil
	}
	switch rate {
	case 8000, 16000, 32000, 48000:
	default:
		// VAD only supports these rates; fall back to hard cuts
		return c, nil
	}
	frameMS := cfg.Media.VADFrameMS
	if frameMS != 10 && frameMS != 20 && frameMS != 30 {
		return nil, fmt.Errorf("media.vad_frame_ms must be 10, 20, or 30 (got %d)", frameMS)
	}
	v, err := vad.New()
	if err != nil {
		return nil, fmt.Errorf("vad init: %w", err)
	}
	if err := v.SetMode(cfg.Media.VADMode); err != nil {
		return nil, fmt.Errorf("vad mode: %w", err)
	}
	c.detector = v
	c.frameSize = rate * frameMS / 1000
	return c, nil
}

// Split cuts samples into chunks. Empty input yields no chunks; input shorter
// than one window yields a single chunk at offset 0.
func (c *Chunker) Split(samples []float32) []Chunk {
	if len(samples) == 0 {
		return nil
	}
	if c.windowSize == 0 || len(samples) <= c.windowSize {
		return []Chunk{{Samples: samples, OffsetMS: 0}}
	}
	var out []Chunk
	start := 0
	for start < len(samples) {
		end := start + c.windowSize
		if end >= len(samples) {
			end = len(samples)
		} else {
			end = c.cutPoint(samples, start, end)
		}
		out = append(out, Chunk{
			Samples:  samples[start:end],
			OffsetMS: int64(start) * 1000 / int64(c.rate),
		})
		start = end
	}
	return out
}

// cutPoint walks backward from the hard boundary looking for a silent VAD
// frame and returns the sample index to cut at.
func (c *Chunker) cutPoint(samples []float32, start, hardEnd int) int {
	if c.detector == nil || c.frameSize == 0 {
		return hardEnd
	}
	limit := hardEnd - c.searchSize
	min := start + c.windowSize/2
	if limit < min {
		limit = min
	}
	frame := make([]byte, 2*c.frameSize)
	for end := hardEnd; end-c.frameSize >= limit; end -= c.frameSize {
		for i := 0; i < c.frameSize; i++ {
			s := samples[end-c.frameSize+i]
			if s > 1 {
				s = 1
			} else if s < -1 {
				s = -1
			}
			binary.LittleEndian.PutUint16(frame[2*i:], uint16(int16(s*32767)))
		}
		voice, err := c.detector.Process(c.rate, frame)
		if err != nil {
			continue
		}
		if !voice {
			return end
		}
	}
	return hardEnd
}
