package audio

import (
	"fmt"

	"github.com/gopxl/beep"
)

// Interleave flattens frames into a sample slice: one value per frame
// for mono, alternating left/right for stereo.
func Interleave(frames []Frame, channels int) []float64 {
	if channels <= 1 {
		out := make([]float64, len(frames))
		for i, f := range frames {
			out[i] = f[0]
		}
		return out
	}

	out := make([]float64, 0, len(frames)*2)
	for _, f := range frames {
		out = append(out, f[0], f[1])
	}
	return out
}

// Deinterleave is the inverse of Interleave. A trailing odd sample in
// stereo input is dropped.
func Deinterleave(samples []float64, channels int) []Frame {
	if channels <= 1 {
		out := make([]Frame, len(samples))
		for i, v := range samples {
			out[i] = Frame{v, v}
		}
		return out
	}

	out := make([]Frame, len(samples)/2)
	for i := range out {
		out[i] = Frame{samples[2*i], samples[2*i+1]}
	}
	return out
}

// FrameStreamer plays back in-memory frames as a beep.Streamer.
type FrameStreamer struct {
	frames []Frame
	pos    int
}

func NewFrameStreamer(frames []Frame) *FrameStreamer {
	return &FrameStreamer{frames: frames}
}

func (s *FrameStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.pos >= len(s.frames) {
		return 0, false
	}
	n := copy(samples, s.frames[s.pos:])
	s.pos += n
	return n, true
}

func (s *FrameStreamer) Err() error {
	return nil
}

func (s *FrameStreamer) Len() int {
	return len(s.frames)
}

func (s *FrameStreamer) Position() int {
	return s.pos
}

func (s *FrameStreamer) Seek(p int) error {
	if p < 0 || p > len(s.frames) {
		return fmt.Errorf("seek position %d out of range [0, %d]", p, len(s.frames))
	}
	s.pos = p
	return nil
}

var _ beep.StreamSeeker = (*FrameStreamer)(nil)

// drain reads s until it is exhausted
func drain(s beep.Streamer, sizeHint int) ([]Frame, error) {
	out := make([]Frame, 0, sizeHint)
	buf := make([]Frame, 512)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok || n == 0 {
			break
		}
	}
	return out, s.Err()
}
