package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mgpai22/gridset/internal/dataset"
	"github.com/mgpai22/gridset/internal/subtitle"
	"github.com/mgpai22/gridset/internal/textgrid"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the tiers and intervals of a folder of TextGrid files",
	Long: `Inspect parses every TextGrid file in a folder without reading audio
and prints its bounds, content digest and per-tier interval counts.

With --subtitles, each tier is also written as a subtitle file named
<document>.<tier>.srt (or .vtt) next to the document, or in --output.

Examples:
  gridset inspect -f ./annotations
  gridset inspect -f ./annotations --subtitles vtt -o ./cues`,
	Args: cobra.NoArgs,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	addPipelineFlags(inspectCmd)
	inspectCmd.Flags().
		String("subtitles", "", "Write one subtitle file per tier (srt, vtt)")
	inspectCmd.Flags().
		StringP("output", "o", "", "Directory for subtitle files (default: next to each document)")
}

func runInspect(cmd *cobra.Command, args []string) error {
	folder, _ := cmd.Flags().GetString("folder")
	formatStr, _ := cmd.Flags().GetString("subtitles")
	outputDir, _ := cmd.Flags().GetString("output")

	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	var format subtitle.Format
	if formatStr != "" {
		f, err := subtitle.ParseFormat(formatStr)
		if err != nil {
			return err
		}
		format = f
	}

	converter := dataset.NewConverter(cfg, logger)
	docs, failures, err := converter.LoadAll(context.Background(), folder)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", folder, err)
	}

	out := cmd.OutOrStdout()
	for _, doc := range docs {
		printDocument(out, doc)

		if format == "" {
			continue
		}
		written, err := writeSubtitles(doc, format, outputDir)
		if err != nil {
			return err
		}
		for _, path := range written {
			logger.Infow("Subtitles written", "output", path)
		}
	}

	for _, f := range failures {
		fmt.Fprintf(out, "%s: %v\n", filepath.Base(f.Path), f.Err)
	}
	return nil
}

func printDocument(w io.Writer, doc *textgrid.Document) {
	fmt.Fprintf(w, "%s\n", filepath.Base(doc.Path))
	fmt.Fprintf(w, "  digest:    %s\n", doc.Digest()[:16])
	fmt.Fprintf(w, "  size:      %s\n", humanize.Bytes(uint64(len(doc.Raw()))))
	fmt.Fprintf(w, "  bounds:    %s - %s\n", formatBound(doc.XMin), formatBound(doc.XMax))
	fmt.Fprintf(w, "  intervals: %s\n", humanize.Comma(int64(doc.IntervalCount())))
	if n := doc.Dropped(); n > 0 {
		fmt.Fprintf(w, "  dropped:   %s\n", humanize.Comma(int64(n)))
	}

	for _, tier := range doc.Tiers {
		var labeled int
		for _, iv := range tier.Intervals {
			if iv.Text != "" {
				labeled++
			}
		}
		fmt.Fprintf(w, "  - %s: %d intervals, %d labeled\n", tier.Name, len(tier.Intervals), labeled)
	}
}

func formatBound(v *float64) string {
	if v == nil {
		return "?"
	}
	return fmt.Sprintf("%gs", *v)
}

// writes one subtitle file per tier and returns the paths written
func writeSubtitles(doc *textgrid.Document, format subtitle.Format, outputDir string) ([]string, error) {
	writer, err := subtitle.NewWriter(format)
	if err != nil {
		return nil, err
	}

	var written []string
	for _, tier := range doc.Tiers {
		entries := subtitle.FromTier(tier)
		if len(entries) == 0 {
			continue
		}
		path := subtitlePath(doc.Path, tier.Name, format, outputDir)
		if err := writer.Write(entries, path); err != nil {
			return written, fmt.Errorf("failed to write subtitles: %w", err)
		}
		written = append(written, path)
	}
	return written, nil
}

func subtitlePath(docPath, tier string, format subtitle.Format, outputDir string) string {
	dir := filepath.Dir(docPath)
	if outputDir != "" {
		dir = outputDir
	}
	stem := strings.TrimSuffix(filepath.Base(docPath), filepath.Ext(docPath))
	return filepath.Join(dir, stem+"."+sanitizeName(tier)+subtitle.GetExtensionForFormat(format))
}

// tier names are free text
func sanitizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		return "tier"
	}
	return name
}
