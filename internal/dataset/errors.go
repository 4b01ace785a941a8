package dataset

import (
	"errors"
	"fmt"

	"github.com/mgpai22/gridset/internal/audio"
)

var (
	ErrAudioRead = errors.New("audio read failed")
	ErrResample  = audio.ErrResample

	errMissingBounds = errors.New("interval has no time bounds")
)

// AudioReadError aborts extraction for one document. Interval is the
// 1-based index within Tier, or 0 when the file could not be opened.
type AudioReadError struct {
	Path     string
	Tier     string
	Interval int
	Err      error
}

func (e *AudioReadError) Error() string {
	if e.Interval > 0 {
		return fmt.Sprintf(
			"%s: interval %d of tier %q: %v",
			e.Path,
			e.Interval,
			e.Tier,
			e.Err,
		)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *AudioReadError) Unwrap() []error {
	return []error{ErrAudioRead, e.Err}
}

// ResampleError drops a single segment; the rest of the document is kept.
type ResampleError struct {
	Path     string
	Tier     string
	Interval int
	Err      error
}

func (e *ResampleError) Error() string {
	return fmt.Sprintf(
		"%s: interval %d of tier %q: %v",
		e.Path,
		e.Interval,
		e.Tier,
		e.Err,
	)
}

func (e *ResampleError) Unwrap() error {
	return e.Err
}
