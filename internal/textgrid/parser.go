package textgrid

import (
	"math"
	"strconv"
	"strings"
)

const (
	markerXMin      = "xmin ="
	markerXMax      = "xmax ="
	markerText      = "text ="
	markerName      = "name ="
	markerItem      = "item ["
	markerIntervals = "intervals ["
)

type parseState int

const (
	stateOutside parseState = iota
	stateInTier
	stateInIntervalBlock
)

// parser is a line-driven state machine. Marker lines are the only
// transition triggers; every other line is ignored.
type parser struct {
	opts  Options
	state parseState

	doc     *Document
	tier    Tier
	pending Interval

	seenXMin bool
	seenXMax bool
}

// ParseText parses TextGrid text. It never fails: missing or malformed
// markers leave the corresponding fields unset.
func ParseText(path, text string, opts Options) *Document {
	p := &parser{
		opts: opts,
		doc:  &Document{Path: path, raw: []byte(text)},
	}

	for _, line := range strings.Split(text, "\n") {
		p.step(strings.TrimSpace(line))
	}
	p.finishTier()

	if p.doc.XMin != nil && p.doc.XMax != nil && *p.doc.XMin > *p.doc.XMax {
		p.doc.XMin, p.doc.XMax = nil, nil
	}
	return p.doc
}

func (p *parser) step(line string) {
	// document bounds come from the first xmin/xmax anywhere in the file
	if strings.HasPrefix(line, markerXMin) && !p.seenXMin {
		p.doc.XMin = parseNumber(line)
		p.seenXMin = true
	}
	if strings.HasPrefix(line, markerXMax) && !p.seenXMax {
		p.doc.XMax = parseNumber(line)
		p.seenXMax = true
	}

	if strings.HasPrefix(line, markerItem) {
		p.finishTier()
		p.state = stateInTier
		return
	}

	switch p.state {
	case stateOutside:
		return

	case stateInTier:
		switch {
		case strings.HasPrefix(line, markerName):
			p.setName(line)
		case strings.HasPrefix(line, markerIntervals):
			p.pending = Interval{}
			p.state = stateInIntervalBlock
		}

	case stateInIntervalBlock:
		switch {
		case strings.HasPrefix(line, markerName):
			p.setName(line)
		case strings.HasPrefix(line, markerIntervals):
			p.pending = Interval{}
		case strings.HasPrefix(line, markerXMin):
			p.pending.XMin = parseNumber(line)
		case strings.HasPrefix(line, markerXMax):
			p.pending.XMax = parseNumber(line)
		case strings.HasPrefix(line, markerText):
			p.pending.Text = parseString(line)
			p.commit()
			p.state = stateInTier
		}
	}
}

func (p *parser) setName(line string) {
	if p.tier.Name == "" {
		p.tier.Name = parseString(line)
	}
}

func (p *parser) commit() {
	iv := p.pending
	p.pending = Interval{}

	if p.opts.Strict && !iv.HasBounds() {
		p.doc.dropped++
		return
	}
	if iv.HasBounds() && *iv.XMin > *iv.XMax {
		p.doc.dropped++
		return
	}
	p.tier.Intervals = append(p.tier.Intervals, iv)
}

func (p *parser) finishTier() {
	if p.tier.Name != "" && len(p.tier.Intervals) > 0 {
		p.doc.Tiers = append(p.doc.Tiers, p.tier)
	}
	p.tier = Tier{}
	p.pending = Interval{}
}

// value after the first '='
func rawValue(line string) string {
	_, value, _ := strings.Cut(line, "=")
	return strings.TrimSpace(value)
}

func parseNumber(line string) *float64 {
	v, err := strconv.ParseFloat(rawValue(line), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// trims whitespace and one pair of enclosing double quotes; inner
// quotes and escapes are kept verbatim
func parseString(line string) string {
	v := rawValue(line)
	if len(v) >= 2 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
		v = v[1 : len(v)-1]
	}
	return v
}
