package cli

import (
	"fmt"

	"github.com/mgpai22/gridset/internal/config"
	"github.com/spf13/cobra"
)

// flags shared by every command that reads a folder of annotations
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().
		StringP("folder", "f", "", "Path to the folder containing TextGrid files")
	_ = cmd.MarkFlagRequired("folder")

	cmd.Flags().
		Bool("strict", false, "Drop intervals missing xmin or xmax")
}

func addAudioFlags(cmd *cobra.Command) {
	cmd.Flags().
		IntP("resample", "r", 0, "Resample segments to this rate in Hz (0 keeps the native rate)")
	cmd.Flags().
		Bool("transcode", false, "Convert WAV files the decoder cannot read to PCM with ffmpeg")
}

// applyFlags copies explicitly set flags over the loaded config.
func applyFlags(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("strict") {
		c.Strict, _ = flags.GetBool("strict")
	}
	if flags.Lookup("resample") != nil && flags.Changed("resample") {
		c.ResampleRate, _ = flags.GetInt("resample")
	}
	if flags.Lookup("transcode") != nil && flags.Changed("transcode") {
		c.Transcode, _ = flags.GetBool("transcode")
	}
	if flags.Lookup("workers") != nil && flags.Changed("workers") {
		c.Workers, _ = flags.GetInt("workers")
	}

	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}
