package dataset

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/mgpai22/gridset/internal/audio"
	"github.com/mgpai22/gridset/internal/config"
	"github.com/mgpai22/gridset/internal/textgrid"
)

// ExtractOptions controls how segments are cut from a recording.
type ExtractOptions struct {
	AudioExt string
	// ResampleRate converts every segment to this rate; 0 keeps the
	// native rate.
	ResampleRate    int
	ResampleQuality int
	Open            audio.OpenOptions
}

func (o ExtractOptions) audioExt() string {
	if o.AudioExt == "" {
		return config.DefaultAudioExt
	}
	return o.AudioExt
}

func (o ExtractOptions) quality() int {
	if o.ResampleQuality == 0 {
		return config.DefaultResampleQuality
	}
	return o.ResampleQuality
}

// Extract produces one record per interval, tier by tier in document
// order, with interval indexes restarting at 1 for every tier.
//
// A missing recording is not an error: records carry metadata only.
// Read failures abort the document with an *AudioReadError. Resampling
// failures drop only the affected segment; the remaining records are
// returned together with the joined *ResampleError values.
func Extract(ctx context.Context, doc *textgrid.Document, opts ExtractOptions) ([]Record, error) {
	audioPath := AudioPath(doc.Path, opts.audioExt())
	records := make([]Record, 0, doc.IntervalCount())

	if !fileExists(audioPath) {
		for _, tier := range doc.Tiers {
			for i, iv := range tier.Intervals {
				records = append(records, newRecord(doc, audioPath, tier.Name, i+1, iv))
			}
		}
		return records, nil
	}

	src, err := audio.Open(ctx, audioPath, opts.Open)
	if err != nil {
		return nil, &AudioReadError{Path: audioPath, Err: err}
	}
	defer func() {
		_ = src.Close()
	}()

	native := src.SampleRate()
	channels := src.Channels()

	var resampleErrs []error
	for _, tier := range doc.Tiers {
		for i, iv := range tier.Intervals {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			rec := newRecord(doc, audioPath, tier.Name, i+1, iv)
			readErr := func(err error) error {
				return &AudioReadError{Path: audioPath, Tier: tier.Name, Interval: rec.Interval, Err: err}
			}

			if !iv.HasBounds() {
				return nil, readErr(errMissingBounds)
			}

			start, end, err := frameSpan(*iv.XMin, *iv.XMax, native, src.Len())
			if err != nil {
				return nil, readErr(err)
			}
			frames, err := src.ReadFrames(start, end-start)
			if err != nil {
				return nil, readErr(err)
			}

			rate := native
			if opts.ResampleRate > 0 && opts.ResampleRate != native {
				frames, err = audio.Resample(frames, native, opts.ResampleRate, opts.quality())
				if err != nil {
					resampleErrs = append(resampleErrs, &ResampleError{
						Path:     audioPath,
						Tier:     tier.Name,
						Interval: rec.Interval,
						Err:      err,
					})
					continue
				}
				rate = opts.ResampleRate
			}

			rec.Samples = audio.Interleave(frames, channels)
			rec.Channels = channels
			rec.SampleRate = rate
			records = append(records, rec)
		}
	}

	return records, errors.Join(resampleErrs...)
}

// frameSpan maps interval bounds to [start, end) frame offsets. The end
// is capped at length; a start outside the recording is an error.
func frameSpan(xmin, xmax float64, rate, length int) (int, int, error) {
	start := math.Floor(xmin * float64(rate))
	end := math.Floor(xmax * float64(rate))

	if math.IsNaN(start) || start < 0 || start > float64(length) {
		return 0, 0, fmt.Errorf("start frame %v outside recording of %d frames", start, length)
	}
	if math.IsNaN(end) || end < start {
		return 0, 0, fmt.Errorf("invalid end frame %v", end)
	}
	end = math.Min(end, float64(length))
	return int(start), int(end), nil
}
