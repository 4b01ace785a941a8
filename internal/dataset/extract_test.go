package dataset

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/mgpai22/gridset/internal/textgrid"
)

func loadDoc(t *testing.T, path string, opts textgrid.Options) *textgrid.Document {
	t.Helper()
	doc, err := textgrid.Load(path, opts)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return doc
}

func wantFrames(iv textgrid.Interval, rate int) int {
	start := int(math.Floor(*iv.XMin * float64(rate)))
	end := int(math.Floor(*iv.XMax * float64(rate)))
	return end - start
}

func TestExtractWithoutAudio(t *testing.T) {
	dir := t.TempDir()
	path := writeText(t, dir, "session.TextGrid", twoSpeakers)
	doc := loadDoc(t, path, textgrid.Options{})

	records, err := Extract(context.Background(), doc, ExtractOptions{ResampleRate: 16000})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(records) != doc.IntervalCount() {
		t.Fatalf("got %d records, want %d", len(records), doc.IntervalCount())
	}

	wantAudio := filepath.Join(dir, "session.wav")
	want := []struct {
		tier     string
		interval int
		text     string
		xmin     float64
		xmax     float64
	}{
		{"spk1", 1, "good morning", 0, 1.5},
		{"spk1", 2, "", 1.5, 2.25},
		{"spk1", 3, "how are you", 2.25, 4.2},
		{"spk2", 1, "hi", 0.3, 3},
		{"spk2", 2, "fine", 3, 4.2},
	}

	for i, w := range want {
		r := records[i]
		if r.Tier != w.tier || r.Interval != w.interval || r.Text != w.text {
			t.Errorf(
				"record %d = (%s, %d, %q), want (%s, %d, %q)",
				i, r.Tier, r.Interval, r.Text, w.tier, w.interval, w.text,
			)
		}
		if *r.XMin != w.xmin || *r.XMax != w.xmax {
			t.Errorf("record %d bounds = [%v, %v], want [%v, %v]", i, *r.XMin, *r.XMax, w.xmin, w.xmax)
		}
		if len(r.Samples) != 0 {
			t.Errorf("record %d has %d samples, want none", i, len(r.Samples))
		}
		if r.SampleRate != 0 || r.HasAudio() {
			t.Errorf("record %d SampleRate = %d, want absent", i, r.SampleRate)
		}
		if r.AudioPath != wantAudio {
			t.Errorf("record %d AudioPath = %q, want %q", i, r.AudioPath, wantAudio)
		}
		if r.DocumentPath != path {
			t.Errorf("record %d DocumentPath = %q, want %q", i, r.DocumentPath, path)
		}
	}
}

func TestExtractNativeRate(t *testing.T) {
	dir := t.TempDir()
	path := writeText(t, dir, "session.TextGrid", twoSpeakers)
	writeAudio(t, dir, "session.wav", 5, 1)
	doc := loadDoc(t, path, textgrid.Options{})

	records, err := Extract(context.Background(), doc, ExtractOptions{})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("got %d records, want 5", len(records))
	}

	i := 0
	for _, tier := range doc.Tiers {
		for _, iv := range tier.Intervals {
			r := records[i]
			if r.SampleRate != fixtureRate {
				t.Errorf("record %d SampleRate = %d, want %d", i, r.SampleRate, fixtureRate)
			}
			if r.Channels != 1 {
				t.Errorf("record %d Channels = %d, want 1", i, r.Channels)
			}
			if got, want := len(r.Samples), wantFrames(iv, fixtureRate); got != want {
				t.Errorf("record %d has %d samples, want %d", i, got, want)
			}
			i++
		}
	}

	// spk2 interval 1 starts at 0.3s = frame 2400, ramp value 0 - 0.5
	first := records[3].Samples[0]
	if math.Abs(first-(-0.5)) > 1.0/16384 {
		t.Errorf("first sample of spk2[1] = %v, want -0.5", first)
	}
}

func TestExtractResampleToNativeRateIsNoop(t *testing.T) {
	dir := t.TempDir()
	path := writeText(t, dir, "session.TextGrid", twoSpeakers)
	writeAudio(t, dir, "session.wav", 5, 1)
	doc := loadDoc(t, path, textgrid.Options{})

	native, err := Extract(context.Background(), doc, ExtractOptions{})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	same, err := Extract(context.Background(), doc, ExtractOptions{ResampleRate: fixtureRate})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	for i := range native {
		if same[i].SampleRate != fixtureRate {
			t.Errorf("record %d SampleRate = %d, want %d", i, same[i].SampleRate, fixtureRate)
		}
		if len(same[i].Samples) != len(native[i].Samples) {
			t.Fatalf("record %d length changed: %d != %d", i, len(same[i].Samples), len(native[i].Samples))
		}
		for j := range native[i].Samples {
			if same[i].Samples[j] != native[i].Samples[j] {
				t.Fatalf("record %d sample %d changed", i, j)
			}
		}
	}
}

func TestExtractResample(t *testing.T) {
	dir := t.TempDir()
	path := writeText(t, dir, "session.TextGrid", twoSpeakers)
	writeAudio(t, dir, "session.wav", 5, 1)
	doc := loadDoc(t, path, textgrid.Options{})

	records, err := Extract(context.Background(), doc, ExtractOptions{ResampleRate: 16000})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	i := 0
	for _, tier := range doc.Tiers {
		for _, iv := range tier.Intervals {
			r := records[i]
			if r.SampleRate != 16000 {
				t.Errorf("record %d SampleRate = %d, want 16000", i, r.SampleRate)
			}
			want := float64(wantFrames(iv, fixtureRate) * 2)
			if math.Abs(float64(len(r.Samples))-want) > want*0.01+16 {
				t.Errorf("record %d has %d samples, want about %.0f", i, len(r.Samples), want)
			}
			i++
		}
	}
}

func TestExtractResampleFailureDropsSegments(t *testing.T) {
	dir := t.TempDir()
	path := writeText(t, dir, "session.TextGrid", twoSpeakers)
	writeAudio(t, dir, "session.wav", 5, 1)
	doc := loadDoc(t, path, textgrid.Options{})

	records, err := Extract(context.Background(), doc, ExtractOptions{
		ResampleRate:    16000,
		ResampleQuality: 100,
	})
	if !errors.Is(err, ErrResample) {
		t.Fatalf("expected ErrResample, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want failed segments dropped", len(records))
	}

	var rerr *ResampleError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *ResampleError, got %T", err)
	}
	if rerr.Interval != 1 || rerr.Tier != "spk1" {
		t.Errorf("first failure = (%s, %d), want (spk1, 1)", rerr.Tier, rerr.Interval)
	}
}

func TestExtractStereo(t *testing.T) {
	dir := t.TempDir()
	path := writeText(t, dir, "session.TextGrid", twoSpeakers)
	writeAudio(t, dir, "session.wav", 5, 2)
	doc := loadDoc(t, path, textgrid.Options{})

	records, err := Extract(context.Background(), doc, ExtractOptions{})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	r := records[0]
	if r.Channels != 2 {
		t.Fatalf("Channels = %d, want 2", r.Channels)
	}
	iv := doc.Tiers[0].Intervals[0]
	if got, want := len(r.Samples), 2*wantFrames(iv, fixtureRate); got != want {
		t.Errorf("got %d samples, want %d", got, want)
	}
	if math.Abs(r.Samples[0]+r.Samples[1]) > 1.0/16384 {
		t.Errorf("stereo samples not interleaved: %v, %v", r.Samples[0], r.Samples[1])
	}
	if r.Duration().Seconds() != 1.5 {
		t.Errorf("Duration() = %v, want 1.5s", r.Duration())
	}
}

func TestExtractIntervalPastEndOfAudio(t *testing.T) {
	dir := t.TempDir()
	path := writeText(t, dir, "session.TextGrid", twoSpeakers)
	// spk1[3] starts at 2.25s, after the end of a 2s recording
	writeAudio(t, dir, "session.wav", 2, 1)
	doc := loadDoc(t, path, textgrid.Options{})

	records, err := Extract(context.Background(), doc, ExtractOptions{})
	if err == nil {
		t.Fatal("expected read error")
	}
	if records != nil {
		t.Errorf("expected no records on read failure, got %d", len(records))
	}
	if !errors.Is(err, ErrAudioRead) {
		t.Errorf("expected ErrAudioRead, got %v", err)
	}

	var rerr *AudioReadError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *AudioReadError, got %T", err)
	}
	if rerr.Tier != "spk1" || rerr.Interval != 3 {
		t.Errorf("failure at (%s, %d), want (spk1, 3)", rerr.Tier, rerr.Interval)
	}
}

func TestExtractPartialInterval(t *testing.T) {
	text := `item [1]:
    name = "spk1"
    intervals [1]:
        xmin = 0
        text = "open ended"
`

	t.Run("without audio the record is kept", func(t *testing.T) {
		dir := t.TempDir()
		doc := loadDoc(t, writeText(t, dir, "p.TextGrid", text), textgrid.Options{})

		records, err := Extract(context.Background(), doc, ExtractOptions{})
		if err != nil {
			t.Fatalf("Extract failed: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("got %d records, want 1", len(records))
		}
		if records[0].XMax != nil {
			t.Errorf("XMax = %v, want unset", *records[0].XMax)
		}
		if records[0].Duration() != 0 {
			t.Errorf("Duration() = %v, want 0", records[0].Duration())
		}
	})

	t.Run("with audio the document fails", func(t *testing.T) {
		dir := t.TempDir()
		doc := loadDoc(t, writeText(t, dir, "p.TextGrid", text), textgrid.Options{})
		writeAudio(t, dir, "p.wav", 1, 1)

		_, err := Extract(context.Background(), doc, ExtractOptions{})
		if !errors.Is(err, ErrAudioRead) {
			t.Fatalf("expected ErrAudioRead, got %v", err)
		}
	})
}

func TestExtractCorruptAudio(t *testing.T) {
	dir := t.TempDir()
	doc := loadDoc(t, writeText(t, dir, "c.TextGrid", twoSpeakers), textgrid.Options{})
	writeText(t, dir, "c.wav", "RIFF but not really")

	_, err := Extract(context.Background(), doc, ExtractOptions{})

	var rerr *AudioReadError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *AudioReadError, got %v", err)
	}
	if rerr.Interval != 0 {
		t.Errorf("Interval = %d, want 0 for an unopenable file", rerr.Interval)
	}
}

func TestExtractCustomAudioExt(t *testing.T) {
	dir := t.TempDir()
	doc := loadDoc(t, writeText(t, dir, "x.TextGrid", twoSpeakers), textgrid.Options{})
	writeAudio(t, dir, "x.WAV", 5, 1)

	records, err := Extract(context.Background(), doc, ExtractOptions{AudioExt: ".WAV"})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !records[0].HasAudio() {
		t.Error("expected audio to be found with the configured extension")
	}
}

func TestExtractCancelled(t *testing.T) {
	dir := t.TempDir()
	doc := loadDoc(t, writeText(t, dir, "s.TextGrid", twoSpeakers), textgrid.Options{})
	writeAudio(t, dir, "s.wav", 5, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Extract(ctx, doc, ExtractOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExtractIntervalFarPastEndOfAudio(t *testing.T) {
	dir := t.TempDir()
	path := writeText(t, dir, "ms.TextGrid", `item [1]:
    name = "spk1"
    intervals [1]:
        xmin = 500
        xmax = 1e12
        text = "typed in milliseconds"
    intervals [2]:
        xmin = 0.5
        xmax = 1e12
        text = "runs off the end"
`)
	writeAudio(t, dir, "ms.wav", 1, 1)
	doc := loadDoc(t, path, textgrid.Options{})

	_, err := Extract(context.Background(), doc, ExtractOptions{})
	var rerr *AudioReadError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *AudioReadError, got %v", err)
	}
	if rerr.Interval != 1 {
		t.Errorf("failure at interval %d, want 1", rerr.Interval)
	}

	// without the first interval the open-ended one reads to the end
	doc.Tiers[0].Intervals = doc.Tiers[0].Intervals[1:]
	records, err := Extract(context.Background(), doc, ExtractOptions{})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(records) != 1 || len(records[0].Samples) != fixtureRate/2 {
		t.Fatalf("got %d records, want one with %d samples", len(records), fixtureRate/2)
	}
}

func TestFrameSpan(t *testing.T) {
	tests := []struct {
		name      string
		xmin      float64
		xmax      float64
		wantStart int
		wantEnd   int
		wantErr   bool
	}{
		{name: "inside", xmin: 0.5, xmax: 0.75, wantStart: 4000, wantEnd: 6000},
		{name: "floors both ends", xmin: 0.00001, xmax: 0.00024, wantStart: 0, wantEnd: 1},
		{name: "end capped", xmin: 0.5, xmax: 1e12, wantStart: 4000, wantEnd: 8000},
		{name: "infinite end capped", xmin: 0, xmax: math.Inf(1), wantStart: 0, wantEnd: 8000},
		{name: "start at end", xmin: 1, xmax: 2, wantStart: 8000, wantEnd: 8000},
		{name: "start past end", xmin: 1.5, xmax: 2, wantErr: true},
		{name: "huge start", xmin: 1e300, xmax: 1e301, wantErr: true},
		{name: "negative start", xmin: -1, xmax: 0.5, wantErr: true},
		{name: "nan start", xmin: math.NaN(), xmax: 0.5, wantErr: true},
		{name: "nan end", xmin: 0, xmax: math.NaN(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := frameSpan(tt.xmin, tt.xmax, fixtureRate, fixtureRate)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got [%d, %d)", start, end)
				}
				return
			}
			if err != nil {
				t.Fatalf("frameSpan failed: %v", err)
			}
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("frameSpan() = [%d, %d), want [%d, %d)", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestExtractRecordsDoNotAliasDocument(t *testing.T) {
	dir := t.TempDir()
	doc := loadDoc(t, writeText(t, dir, "s.TextGrid", twoSpeakers), textgrid.Options{})

	records, err := Extract(context.Background(), doc, ExtractOptions{})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	*records[0].XMin = 99
	*records[0].XMax = 100

	iv := doc.Tiers[0].Intervals[0]
	if *iv.XMin != 0 || *iv.XMax != 1.5 {
		t.Errorf("document interval changed to [%v, %v]", *iv.XMin, *iv.XMax)
	}
}
