package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mgpai22/gridset/internal/dataset"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Extract labeled audio segments from a folder of TextGrid files",
	Long: `Convert parses every TextGrid file in a folder and cuts the WAV file
sharing its base name into one segment per annotated interval.

Documents without a matching recording still produce records, without
samples. A document whose recording cannot be read is reported and
skipped; the rest of the folder is still processed.

Examples:
  gridset convert -f ./annotations
  gridset convert -f ./annotations --resample 16000
  gridset convert -f ./annotations --strict --workers 2
  gridset convert -f ./annotations --transcode`,
	Args: cobra.NoArgs,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	addPipelineFlags(convertCmd)
	addAudioFlags(convertCmd)
	convertCmd.Flags().
		IntP("workers", "w", 0, "Number of documents processed in parallel (default: number of CPUs)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	folder, _ := cmd.Flags().GetString("folder")

	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	start := time.Now()
	converter := dataset.NewConverter(cfg, logger)

	res, err := converter.Convert(context.Background(), folder)
	if err != nil {
		return fmt.Errorf("failed to convert %s: %w", folder, err)
	}

	logger.Infow("Conversion complete",
		"documents", res.Documents,
		"segments", len(res.Records),
		"failures", len(res.Failures),
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)

	printResult(cmd.OutOrStdout(), res)
	return nil
}

func printResult(w io.Writer, res *dataset.Result) {
	var samples int
	for _, r := range res.Records {
		samples += len(r.Samples)
	}

	fmt.Fprintf(w, "Documents: %s\n", humanize.Comma(int64(res.Documents)))
	fmt.Fprintf(w, "Segments:  %s\n", humanize.Comma(int64(len(res.Records))))
	fmt.Fprintf(w, "Audio:     %s\n", humanize.Bytes(uint64(samples)*8))

	if summary := res.Summary(); len(summary) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TIER\tSEGMENTS\tDURATION")
		for _, s := range summary {
			fmt.Fprintf(tw, "%s\t%s\t%s\n",
				s.Tier,
				humanize.Comma(int64(s.Segments)),
				s.Duration.Round(time.Millisecond),
			)
		}
		tw.Flush()
	}

	if len(res.Failures) > 0 {
		fmt.Fprintf(w, "\nFailed (%d):\n", len(res.Failures))
		for _, f := range res.Failures {
			fmt.Fprintf(w, "  %s: %v\n", filepath.Base(f.Path), f.Err)
		}
	}
}
