package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/spherical/pdf-composer/cmd/pdf-composer/ui"
	"github.com/spherical/pdf-composer/internal/domain"
)

var (
	imagesOutput     string
	imagesMode       string
	imagesMargin     float64
	imagesPixels     float64
	imagesAlign      string
	imagesBackground string
)

var imagesCmd = &cobra.Command{
	Use:   "images [flags] <image>...",
	Short: "Compose images into a PDF, one image per page",
	Long: `Compose images into a PDF, one image per page, in the order given.

With --mode source each page takes the size of its image divided by --pixels
plus a --margin in pixels on every side. With --mode a4, a5, a6 or letter each
image is scaled to fit the paper inside --margin (in points) and placed at the
--align anchor.`,
	Example: `  pdf-composer images scan1.png scan2.jpg -o scans.pdf
  pdf-composer images *.png --mode a4 --margin 36 --align top-center`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImages,
}

func init() {
	imagesCmd.Flags().StringVarP(&imagesOutput, "output", "o", "", "output PDF path (default from config, selection.pdf)")
	imagesCmd.Flags().StringVar(&imagesMode, "mode", "", "page mode: source, a4, a5, a6 or letter")
	imagesCmd.Flags().Float64Var(&imagesMargin, "margin", 0, "margin around each image")
	imagesCmd.Flags().Float64Var(&imagesPixels, "pixels", 0, "image pixels per PDF point in source mode")
	imagesCmd.Flags().StringVar(&imagesAlign, "align", "", "image anchor on fixed pages, e.g. center, left-top, bottom-center")
	imagesCmd.Flags().StringVar(&imagesBackground, "background", "", "page background colour, #rrggbb or r,g,b")
	rootCmd.AddCommand(imagesCmd)
}

func runImages(cmd *cobra.Command, args []string) error {
	params, err := imageLayout(cmd)
	if err != nil {
		return err
	}
	output := outputPath(imagesOutput)

	ui.Detail("layout: mode=%s size=%s margin=%g background=%s align=%s",
		params.Mode, params.PageSize, params.Margin, params.Background, params.Alignment)

	ctx, cancel := interruptContext()
	defer cancel()

	client, err := newClient()
	if err != nil {
		return err
	}
	defer closeClient(client)

	events, err := client.ComposeImages(ctx, args, params, output)
	if err != nil {
		return err
	}

	res, err := followJob(events, "Composing")
	if err != nil {
		return err
	}

	ui.Success("Saved %d pages to %s (%s)", res.Pages, res.OutputPath, res.Duration.Round(time.Millisecond))
	return nil
}

// imageLayout starts from the configured layout and applies the flags the
// user set.
func imageLayout(cmd *cobra.Command) (domain.LayoutParameters, error) {
	params, err := cfg.Layout.Parameters()
	if err != nil {
		return params, err
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		mode, size, err := domain.ParseMode(imagesMode)
		if err != nil {
			return params, err
		}
		params = params.WithMode(mode, size)
	}
	if flags.Changed("margin") {
		params.Margin = imagesMargin
	}
	if flags.Changed("pixels") {
		params.PixelsPerUnit = imagesPixels
	}
	if flags.Changed("align") {
		align, err := domain.ParseAlignment(imagesAlign)
		if err != nil {
			return params, err
		}
		params.Alignment = align
	}
	if flags.Changed("background") {
		bg, err := domain.ParseRGB(imagesBackground)
		if err != nil {
			return params, err
		}
		params.Background = bg
	}

	return params, params.Validate()
}

func outputPath(flag string) string {
	if flag != "" {
		return flag
	}
	if cfg.Output.Path != "" {
		return cfg.Output.Path
	}
	return "selection.pdf"
}
