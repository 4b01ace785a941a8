package dataset

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mgpai22/gridset/internal/audio"
	"github.com/mgpai22/gridset/internal/config"
	"github.com/mgpai22/gridset/internal/logging"
	"github.com/mgpai22/gridset/internal/textgrid"
)

// Failure is a document that was skipped or only partially extracted.
type Failure struct {
	Path string
	Err  error
}

// Result of converting one folder. Records are ordered by document
// name, then tier, then interval.
type Result struct {
	Documents int
	Records   []Record
	Failures  []Failure
}

// TierSummary aggregates the records of one tier name across documents.
type TierSummary struct {
	Tier     string
	Segments int
	Duration time.Duration
}

// Summary groups records by tier name, sorted by name.
func (r *Result) Summary() []TierSummary {
	byTier := make(map[string]*TierSummary)
	for _, rec := range r.Records {
		s, ok := byTier[rec.Tier]
		if !ok {
			s = &TierSummary{Tier: rec.Tier}
			byTier[rec.Tier] = s
		}
		s.Segments++
		s.Duration += rec.Duration()
	}

	out := make([]TierSummary, 0, len(byTier))
	for _, s := range byTier {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Tier < out[j].Tier
	})
	return out
}

// Converter runs the parse and extract pipeline over a folder.
type Converter struct {
	cfg *config.Config
	log *logging.Logger
}

func NewConverter(cfg *config.Config, log *logging.Logger) *Converter {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Converter{cfg: cfg, log: log}
}

// at least one; SetLimit(0) would block every task
func (c *Converter) workers() int {
	if c.cfg.Workers < 1 {
		return 1
	}
	return c.cfg.Workers
}

func (c *Converter) reportDropped(log *logging.Logger, doc *textgrid.Document) {
	if n := doc.Dropped(); n > 0 {
		log.Warnw("Dropped intervals with unusable bounds",
			"count", n,
			"strict", c.cfg.Strict,
		)
	}
}

func (c *Converter) parseOptions() textgrid.Options {
	return textgrid.Options{Strict: c.cfg.Strict}
}

func (c *Converter) extractOptions() ExtractOptions {
	return ExtractOptions{
		AudioExt:        c.cfg.AudioExt,
		ResampleRate:    c.cfg.ResampleRate,
		ResampleQuality: c.cfg.ResampleQuality,
		Open: audio.OpenOptions{
			Transcode: c.cfg.Transcode,
			TempDir:   c.cfg.TempDir,
		},
	}
}

// ConvertDocument loads one annotation file and extracts its segments.
func (c *Converter) ConvertDocument(ctx context.Context, path string) ([]Record, error) {
	doc, err := textgrid.Load(path, c.parseOptions())
	if err != nil {
		return nil, err
	}

	opts := c.extractOptions()
	log := c.log.With("file", filepath.Base(path))
	c.reportDropped(log, doc)

	audioPath := AudioPath(path, opts.audioExt())
	if !fileExists(audioPath) {
		if others := SiblingAudio(path, opts.audioExt()); len(others) > 0 {
			log.Warnw("Expected audio missing, other recordings found",
				"expected", filepath.Base(audioPath),
				"found", others,
			)
		} else {
			log.Debugw("No audio for document", "expected", filepath.Base(audioPath))
		}
	}

	records, err := Extract(ctx, doc, opts)
	log.Debugw("Extracted document",
		"tiers", len(doc.Tiers),
		"segments", len(records),
	)
	return records, err
}

type documentResult struct {
	records []Record
	err     error
}

// Convert processes every annotation file in dir, one task per document
// bounded by the configured worker count. A bad document never stops
// the batch; only an unreadable folder or a cancelled context does.
func (c *Converter) Convert(ctx context.Context, dir string) (*Result, error) {
	paths, err := ListAnnotations(dir, c.cfg.AnnotationExt)
	if err != nil {
		return nil, err
	}

	c.log.Infow("Converting annotations",
		"folder", dir,
		"documents", len(paths),
		"workers", c.workers(),
		"resample_rate", c.cfg.ResampleRate,
	)

	results := make([]documentResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers())

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records, err := c.ConvertDocument(gctx, path)
			results[i] = documentResult{records: records, err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Documents: len(paths)}
	for i, r := range results {
		res.Records = append(res.Records, r.records...)
		if r.err == nil {
			continue
		}
		if errors.Is(r.err, context.Canceled) || errors.Is(r.err, context.DeadlineExceeded) {
			return nil, r.err
		}
		c.log.Warnw("Document failed",
			"file", filepath.Base(paths[i]),
			"kept_segments", len(r.records),
			"error", r.err,
		)
		res.Failures = append(res.Failures, Failure{Path: paths[i], Err: r.err})
	}

	return res, nil
}

// LoadAll parses every annotation file in dir without touching audio.
// Unreadable files are reported as failures.
func (c *Converter) LoadAll(ctx context.Context, dir string) ([]*textgrid.Document, []Failure, error) {
	paths, err := ListAnnotations(dir, c.cfg.AnnotationExt)
	if err != nil {
		return nil, nil, err
	}

	var (
		docs     []*textgrid.Document
		failures []Failure
	)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		doc, err := textgrid.Load(path, c.parseOptions())
		if err != nil {
			c.log.Warnw("Document failed", "file", filepath.Base(path), "error", err)
			failures = append(failures, Failure{Path: path, Err: err})
			continue
		}
		c.reportDropped(c.log.With("file", filepath.Base(path)), doc)
		docs = append(docs, doc)
	}
	return docs, failures, nil
}
