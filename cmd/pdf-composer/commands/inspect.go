package commands

import (
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spherical/pdf-composer/cmd/pdf-composer/ui"
	"github.com/spherical/pdf-composer/internal/domain"
	"github.com/spherical/pdf-composer/internal/imaging"
	"github.com/spherical/pdf-composer/internal/layout"
	"github.com/spherical/pdf-composer/internal/pdf"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>...",
	Short: "Show page sizes of PDFs, or the page an image would get",
	Long: `Show page count and page sizes of PDFs. For images, show the pixel size
and the page the configured layout would produce for it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func formatPt(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func runInspect(cmd *cobra.Command, args []string) error {
	var images []string
	for _, path := range args {
		if slices.Contains(pdf.ImageExtensions, strings.ToLower(filepath.Ext(path))) {
			images = append(images, path)
			continue
		}
		if err := inspectPDF(path); err != nil {
			return err
		}
	}
	if len(images) == 0 {
		return nil
	}

	params, err := cfg.Layout.Parameters()
	if err != nil {
		return err
	}
	return inspectImages(images, params)
}

func inspectPDF(path string) error {
	info, err := pdf.Inspect(path)
	if err != nil {
		return err
	}

	ui.Section(info.Path)
	ui.Info("%d pages", info.PageCount)

	rows := make([][]string, 0, len(info.Pages))
	for _, p := range info.Pages {
		rows = append(rows, []string{
			strconv.Itoa(p.Index),
			formatPt(p.Width),
			formatPt(p.Height),
			strconv.Itoa(p.Rotation),
		})
	}
	ui.Table(os.Stdout, []string{"PAGE", "WIDTH (pt)", "HEIGHT (pt)", "ROTATION"}, rows)
	return nil
}

func inspectImages(paths []string, params domain.LayoutParameters) error {
	ui.Section("Images")
	ui.Detail("layout: mode=%s size=%s margin=%g", params.Mode, params.PageSize, params.Margin)

	rows := make([][]string, 0, len(paths))
	for _, path := range paths {
		entry, err := imaging.Probe(path)
		if err != nil {
			return err
		}
		placement, err := layout.Place(entry.Width, entry.Height, params)
		if err != nil {
			return err
		}
		rows = append(rows, []string{
			entry.Path,
			strconv.Itoa(entry.Width) + "x" + strconv.Itoa(entry.Height),
			formatPt(placement.PageW),
			formatPt(placement.PageH),
		})
	}
	ui.Table(os.Stdout, []string{"IMAGE", "PIXELS", "PAGE WIDTH (pt)", "PAGE HEIGHT (pt)"}, rows)
	return nil
}
