package commands

import (
	"github.com/spf13/cobra"

	"github.com/spherical/pdf-composer/cmd/pdf-composer/ui"
	"github.com/spherical/pdf-composer/internal/pdf"
)

var (
	previewPage   int
	previewDPI    float64
	previewOutput string
)

var previewCmd = &cobra.Command{
	Use:     "preview <file.pdf>",
	Short:   "Render one page of a PDF to PNG",
	Example: `  pdf-composer preview selection.pdf --page 2 --dpi 150 -o page.png`,
	Args:    cobra.ExactArgs(1),
	RunE:    runPreview,
}

func init() {
	previewCmd.Flags().IntVar(&previewPage, "page", 0, "zero-based page index")
	previewCmd.Flags().Float64Var(&previewDPI, "dpi", 0, "render resolution (default from config)")
	previewCmd.Flags().StringVarP(&previewOutput, "output", "o", "", "output PNG path (default <name>-p<page>.png)")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	path := args[0]
	dpi := previewDPI
	if dpi <= 0 {
		dpi = cfg.Preview.DPI
	}
	dest := previewOutput
	if dest == "" {
		dest = previewPath(path, previewPage)
	}

	ctx, cancel := interruptContext()
	defer cancel()

	spin := ui.NewSpinner("Rendering page...")
	spin.Start()
	res, err := pdf.NewPreviewer(dpi).Render(ctx, path, previewPage, dest)
	spin.Stop()
	if err != nil {
		return err
	}

	ui.Success("Page %d of %d rendered to %s (%dx%d px)",
		res.Index, res.PageCount, res.OutputPath, res.Width, res.Height)
	return nil
}
