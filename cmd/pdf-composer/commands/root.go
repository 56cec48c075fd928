package commands

import (
	"github.com/spf13/cobra"

	"github.com/spherical/pdf-composer/cmd/pdf-composer/ui"
	"github.com/spherical/pdf-composer/internal/config"
	"github.com/spherical/pdf-composer/internal/observability"
)

var (
	cfgFile string
	verbose bool
	noColor bool

	// set by PersistentPreRunE
	cfg    *config.Config
	logger *observability.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pdf-composer",
	Short: "Build PDFs from images or from pages of existing PDFs",
	Long: `pdf-composer turns a list of images into a PDF, one image per page, either
sized from the image itself or placed on A4, A5, A6 or Letter paper. It can
also copy selected pages of existing PDFs into a new document, unchanged.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ui.InitUI(noColor, verbose)

		if err := config.LoadDotEnv(); err != nil {
			return err
		}
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded

		logCfg := cfg.LoggerConfig("pdf-composer")
		if verbose {
			logCfg.Level = "debug"
		} else if cmd.Name() != "serve" {
			// keep the terminal free for progress output
			logCfg.Level = "warn"
		}
		logger = observability.NewLogger(logCfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command.
func Execute(version string) error {
	rootCmd.Version = version
	return rootCmd.Execute()
}
