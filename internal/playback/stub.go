//go:build !playback

package playback

import "github.com/mgpai22/gridset/internal/audio"

func play(frames []audio.Frame, sampleRate int) error {
	return ErrUnavailable
}
