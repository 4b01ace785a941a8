package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/mgpai22/gridset/internal/dataset"
	"github.com/mgpai22/gridset/internal/playback"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Listen to extracted segments one by one",
	Long: `Play extracts the segments of one document and plays them through
the default audio device, waiting for Enter before each one. It is meant
for checking that annotations line up with the recording.

Playback needs a binary built with -tags playback.

Examples:
  gridset play -f ./annotations
  gridset play -f ./annotations --document 2 --tier spk2 --skip 1 --limit 11
  gridset play -f ./annotations --resample 16000`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	addPipelineFlags(playCmd)
	addAudioFlags(playCmd)
	playCmd.Flags().
		IntP("document", "d", 1, "1-based position of the document in the folder listing")
	playCmd.Flags().
		StringP("tier", "t", "", "Only play segments of this tier")
	playCmd.Flags().
		Int("skip", 0, "Number of segments to skip")
	playCmd.Flags().
		IntP("limit", "n", 10, "Maximum number of segments to play (0 for all)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	folder, _ := cmd.Flags().GetString("folder")
	position, _ := cmd.Flags().GetInt("document")
	tier, _ := cmd.Flags().GetString("tier")
	skip, _ := cmd.Flags().GetInt("skip")
	limit, _ := cmd.Flags().GetInt("limit")

	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	paths, err := dataset.ListAnnotations(folder, cfg.AnnotationExt)
	if err != nil {
		return err
	}
	if position < 1 || position > len(paths) {
		return fmt.Errorf("document %d out of range: folder has %d documents", position, len(paths))
	}
	docPath := paths[position-1]

	converter := dataset.NewConverter(cfg, logger)
	records, err := converter.ConvertDocument(context.Background(), docPath)
	if err != nil && len(records) == 0 {
		return fmt.Errorf("failed to extract %s: %w", filepath.Base(docPath), err)
	}
	if err != nil {
		logger.Warnw("Some segments were dropped", "file", filepath.Base(docPath), "error", err)
	}

	selected, err := selectRecords(records, tier, skip, limit)
	if err != nil {
		return err
	}

	logger.Infow("Playing segments",
		"file", filepath.Base(docPath),
		"tier", tier,
		"segments", len(selected),
	)

	return playRecords(cmd.InOrStdin(), cmd.OutOrStdout(), selected, playback.Play)
}

// applies the tier filter, then skip and limit
func selectRecords(records []dataset.Record, tier string, skip, limit int) ([]dataset.Record, error) {
	if skip < 0 {
		return nil, fmt.Errorf("skip must not be negative, got %d", skip)
	}
	if limit < 0 {
		return nil, fmt.Errorf("limit must not be negative, got %d", limit)
	}

	if tier != "" {
		records = dataset.Filter(records, tier)
		if len(records) == 0 {
			return nil, fmt.Errorf("no segments for tier %q", tier)
		}
	}

	if skip >= len(records) {
		return nil, nil
	}
	records = records[skip:]
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records, nil
}

type playFunc func(samples []float64, channels, sampleRate int) error

func playRecords(in io.Reader, out io.Writer, records []dataset.Record, play playFunc) error {
	reader := bufio.NewReader(in)

	for i, r := range records {
		fmt.Fprintf(out, "[%d/%d] %s #%d (%s): %q\n",
			i+1, len(records), r.Tier, r.Interval, r.Duration(), r.Text)

		if !r.HasAudio() {
			fmt.Fprintln(out, "  no audio, skipped")
			continue
		}

		fmt.Fprint(out, "  press Enter to play")
		if _, err := reader.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		if err := play(r.Samples, r.Channels, r.SampleRate); err != nil {
			return fmt.Errorf("failed to play segment: %w", err)
		}
	}
	return nil
}
