package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mgpai22/gridset/internal/audio/wavtest"
)

const fixtureRate = 8000

// spk1 has three intervals, spk2 has two
const twoSpeakers = `File type = "ooTextFile"
Object class = "TextGrid"

xmin = 0
xmax = 4.2
tiers? <exists>
size = 2
item []:
    item [1]:
        class = "IntervalTier"
        name = "spk1"
        xmin = 0
        xmax = 4.2
        intervals: size = 3
        intervals [1]:
            xmin = 0
            xmax = 1.5
            text = "good morning"
        intervals [2]:
            xmin = 1.5
            xmax = 2.25
            text = ""
        intervals [3]:
            xmin = 2.25
            xmax = 4.2
            text = "how are you"
    item [2]:
        class = "IntervalTier"
        name = "spk2"
        xmin = 0
        xmax = 4.2
        intervals: size = 2
        intervals [1]:
            xmin = 0.3
            xmax = 3
            text = "hi"
        intervals [2]:
            xmin = 3
            xmax = 4.2
            text = "fine"
`

func writeText(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func writeAudio(t *testing.T, dir, name string, seconds float64, channels int) {
	t.Helper()
	frames := int(seconds * fixtureRate)
	wavtest.Write(t, filepath.Join(dir, name), wavtest.Ramp(frames, channels), fixtureRate, channels)
}
