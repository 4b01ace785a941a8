package cli

import (
	"github.com/mgpai22/gridset/internal/config"
	"github.com/mgpai22/gridset/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "gridset",
	Short: "Turn TextGrid annotations into labeled audio segments",
	Long: `Gridset reads a folder of Praat TextGrid files and cuts the matching
WAV recordings into one labeled segment per annotated interval.

Each segment carries its text, tier (speaker) name, 1-based interval
index, time bounds and, when the recording exists, its samples at the
native or a requested sampling rate.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func Execute() error {
	err := rootCmd.Execute()
	if logger != nil {
		_ = logger.Sync()
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Path to a YAML config file")
}
