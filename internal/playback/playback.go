// Package playback plays extracted segments through the default audio
// device for manual inspection. Speaker support needs cgo audio headers
// on Linux, so it is only compiled with the "playback" build tag.
package playback

import (
	"errors"
	"fmt"

	"github.com/mgpai22/gridset/internal/audio"
)

var ErrUnavailable = errors.New("playback support not compiled in (build with -tags playback)")

// Play blocks until samples have been played. Samples are interleaved
// when channels is 2.
func Play(samples []float64, channels, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("cannot play audio without a sampling rate")
	}
	if len(samples) == 0 {
		return nil
	}
	return play(audio.Deinterleave(samples, channels), sampleRate)
}
