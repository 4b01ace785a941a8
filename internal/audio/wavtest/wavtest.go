// Package wavtest writes WAV fixtures for tests.
package wavtest

import (
	"os"
	"testing"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// Ramp returns n frames of a repeating ramp in [-0.5, 0.5). Stereo
// ramps get the right channel inverted so the channels differ.
func Ramp(n, channels int) [][2]float64 {
	frames := make([][2]float64, n)
	for i := range frames {
		v := float64(i%100)/100 - 0.5
		if channels == 2 {
			frames[i] = [2]float64{v, -v}
		} else {
			frames[i] = [2]float64{v, v}
		}
	}
	return frames
}

// Write encodes frames as 16-bit PCM WAV at path.
func Write(t testing.TB, path string, frames [][2]float64, rate, channels int) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create wav fixture: %v", err)
	}
	defer func() {
		_ = f.Close()
	}()

	format := beep.Format{
		SampleRate:  beep.SampleRate(rate),
		NumChannels: channels,
		Precision:   2,
	}

	pos := 0
	streamer := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= len(frames) {
			return 0, false
		}
		n := copy(samples, frames[pos:])
		pos += n
		return n, true
	})

	if err := wav.Encode(f, streamer, format); err != nil {
		t.Fatalf("failed to encode wav fixture: %v", err)
	}
}
