package subtitle

import (
	"time"

	"github.com/mgpai22/gridset/internal/textgrid"
)

// represents single subtitle entry
type Entry struct {
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// represents supported subtitle formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
)

// interface for writing subtitles to files
type Writer interface {
	Write(entries []Entry, path string) error
}

// FromTier converts a tier's labeled intervals into cues. Intervals
// without bounds or with empty text are skipped; Index keeps the
// interval's 1-based position in the tier.
func FromTier(tier textgrid.Tier) []Entry {
	var entries []Entry
	for i, iv := range tier.Intervals {
		if !iv.HasBounds() || iv.Text == "" {
			continue
		}
		entries = append(entries, Entry{
			Index:     i + 1,
			StartTime: seconds(*iv.XMin),
			EndTime:   seconds(*iv.XMax),
			Text:      iv.Text,
		})
	}
	return entries
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second)).Round(time.Millisecond)
}
