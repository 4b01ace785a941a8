package audio

import (
	"errors"
	"fmt"

	"github.com/gopxl/beep"
)

var ErrResample = errors.New("resample failed")

// ResampleError reports a rate conversion that could not be performed.
type ResampleError struct {
	From, To int
	Err      error
}

func (e *ResampleError) Error() string {
	return fmt.Sprintf("resample %d Hz -> %d Hz: %v", e.From, e.To, e.Err)
}

func (e *ResampleError) Unwrap() []error {
	return []error{ErrResample, e.Err}
}

// Resample converts frames from one rate to another with beep's
// band-limited interpolating resampler. Each call is independent; no
// filter state carries over between segments.
func Resample(frames []Frame, from, to, quality int) ([]Frame, error) {
	if from <= 0 || to <= 0 {
		return nil, &ResampleError{From: from, To: to, Err: errors.New("sample rates must be positive")}
	}
	if quality < 1 || quality > 64 {
		return nil, &ResampleError{From: from, To: to, Err: fmt.Errorf("quality %d out of range [1, 64]", quality)}
	}
	if from == to || len(frames) == 0 {
		out := make([]Frame, len(frames))
		copy(out, frames)
		return out, nil
	}

	r := beep.Resample(quality, beep.SampleRate(from), beep.SampleRate(to), NewFrameStreamer(frames))
	hint := int(int64(len(frames)) * int64(to) / int64(from))
	out, err := drain(r, hint+1)
	if err != nil {
		return nil, &ResampleError{From: from, To: to, Err: err}
	}
	return out, nil
}
