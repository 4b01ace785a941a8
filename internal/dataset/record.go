package dataset

import (
	"time"

	"github.com/mgpai22/gridset/internal/textgrid"
)

// Record is one labeled audio segment. Samples are interleaved when
// Channels is 2. SampleRate is 0 and Samples is empty when the
// recording was not found.
type Record struct {
	DocumentPath string
	AudioPath    string
	Samples      []float64
	Channels     int
	SampleRate   int
	Text         string
	Tier         string
	Interval     int
	XMin         *float64
	XMax         *float64
}

func newRecord(doc *textgrid.Document, audioPath, tier string, index int, iv textgrid.Interval) Record {
	return Record{
		DocumentPath: doc.Path,
		AudioPath:    audioPath,
		Text:         iv.Text,
		Tier:         tier,
		Interval:     index,
		XMin:         clone(iv.XMin),
		XMax:         clone(iv.XMax),
	}
}

func clone(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// HasAudio reports whether samples were extracted for this record.
func (r Record) HasAudio() bool {
	return r.SampleRate > 0
}

// Duration of the extracted audio, or of the annotated span when no
// audio was extracted.
func (r Record) Duration() time.Duration {
	if r.HasAudio() && r.Channels > 0 {
		frames := len(r.Samples) / r.Channels
		return time.Duration(float64(frames) / float64(r.SampleRate) * float64(time.Second))
	}
	if r.XMin != nil && r.XMax != nil {
		return time.Duration((*r.XMax - *r.XMin) * float64(time.Second))
	}
	return 0
}

// Filter keeps the records of one tier, in order.
func Filter(records []Record, tier string) []Record {
	var out []Record
	for _, r := range records {
		if r.Tier == tier {
			out = append(out, r)
		}
	}
	return out
}
