//go:build playback

package playback

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/mgpai22/gridset/internal/audio"
)

var (
	speakerMu   sync.Mutex
	speakerRate int
)

// the speaker is reinitialized whenever the sampling rate changes
func initSpeaker(rate int) error {
	if speakerRate == rate {
		return nil
	}
	if speakerRate != 0 {
		speaker.Close()
	}
	sr := beep.SampleRate(rate)
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		speakerRate = 0
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}
	speakerRate = rate
	return nil
}

func play(frames []audio.Frame, sampleRate int) error {
	speakerMu.Lock()
	defer speakerMu.Unlock()

	if err := initSpeaker(sampleRate); err != nil {
		return err
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(
		audio.NewFrameStreamer(frames),
		beep.Callback(func() { close(done) }),
	))
	<-done
	return nil
}
