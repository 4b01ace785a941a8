// Package textgrid reads Praat TextGrid annotation files into an
// immutable in-memory model of tiers and labeled intervals.
package textgrid

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/zeebo/blake3"
)

// ErrLoad is the sentinel behind every LoadError.
var ErrLoad = errors.New("textgrid could not be loaded")

// LoadError reports a TextGrid that could not be read or decoded. Name
// is the file's display name, not its full path.
type LoadError struct {
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s could not be loaded: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("%s could not be loaded", e.Name)
}

func (e *LoadError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrLoad, e.Err}
	}
	return []error{ErrLoad}
}

// Interval is one labeled time span. A nil bound means the marker was
// missing from the file.
type Interval struct {
	XMin *float64
	XMax *float64
	Text string
}

// HasBounds reports whether both xmin and xmax were parsed.
func (iv Interval) HasBounds() bool {
	return iv.XMin != nil && iv.XMax != nil
}

// Tier is a named track of intervals, usually one per speaker. Parsed
// tiers always have a name and at least one interval.
type Tier struct {
	Name      string
	Intervals []Interval
}

// Document is a parsed TextGrid together with the exact bytes it was
// parsed from.
type Document struct {
	Path  string
	XMin  *float64
	XMax  *float64
	Tiers []Tier

	raw     []byte
	dropped int
}

// Dropped counts intervals discarded while parsing: inverted bounds, or
// missing bounds in strict mode.
func (d *Document) Dropped() int {
	return d.dropped
}

// Options controls how forgiving the parser is.
type Options struct {
	// Strict drops intervals that are missing xmin or xmax instead of
	// keeping them with unset bounds.
	Strict bool
}

// Tier returns the first tier with the given name.
func (d *Document) Tier(name string) (Tier, bool) {
	for _, t := range d.Tiers {
		if t.Name == name {
			return t, true
		}
	}
	return Tier{}, false
}

// total number of intervals across all tiers
func (d *Document) IntervalCount() int {
	n := 0
	for _, t := range d.Tiers {
		n += len(t.Intervals)
	}
	return n
}

// Raw returns a copy of the captured file content.
func (d *Document) Raw() []byte {
	out := make([]byte, len(d.raw))
	copy(out, d.raw)
	return out
}

// Digest is the BLAKE3-256 hex digest of the captured content.
func (d *Document) Digest() string {
	sum := blake3.Sum256(d.raw)
	return hex.EncodeToString(sum[:])
}

// Save writes the captured content back out unchanged. An empty path
// writes to the document's own path. Changes to the parsed fields are
// not serialized.
func (d *Document) Save(path string) error {
	if path == "" {
		path = d.Path
	}
	if path == "" {
		return errors.New("textgrid has no path to save to")
	}
	if d.raw == nil {
		return fmt.Errorf("textgrid %s has no captured content", d.Path)
	}
	if err := os.WriteFile(path, d.raw, 0644); err != nil {
		return fmt.Errorf("failed to save textgrid: %w", err)
	}
	return nil
}
