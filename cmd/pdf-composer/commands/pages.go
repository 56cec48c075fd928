package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/spherical/pdf-composer/cmd/pdf-composer/ui"
	"github.com/spherical/pdf-composer/internal/domain"
	"github.com/spherical/pdf-composer/internal/pdf"
)

var pagesOutput string

var pagesCmd = &cobra.Command{
	Use:   "pages [flags] <file.pdf[:pages]>...",
	Short: "Copy selected pages of PDFs into a new PDF",
	Long: `Copy selected pages of one or more PDFs into a new PDF without re-rendering
them. Pages are zero-based and may be listed with ranges, e.g. a.pdf:0,2-4.
A file without a list contributes all of its pages. Sources keep the order
they were first named in; naming a file twice appends to its list.`,
	Example: `  pdf-composer pages report.pdf:0,3 appendix.pdf:1 -o picked.pdf`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runPages,
}

func init() {
	pagesCmd.Flags().StringVarP(&pagesOutput, "output", "o", "", "output PDF path (default from config, selection.pdf)")
	rootCmd.AddCommand(pagesCmd)
}

func runPages(cmd *cobra.Command, args []string) error {
	sel, err := buildSelection(args)
	if err != nil {
		return err
	}
	for _, src := range sel {
		ui.Detail("%s: pages %v", src.Path, src.Indices)
	}

	ctx, cancel := interruptContext()
	defer cancel()

	client, err := newClient()
	if err != nil {
		return err
	}
	defer closeClient(client)

	events, err := client.ExtractPages(ctx, sel, outputPath(pagesOutput))
	if err != nil {
		return err
	}

	res, err := followJob(events, "Copying")
	if err != nil {
		return err
	}

	ui.Success("Saved %d pages to %s (%s)", res.Pages, res.OutputPath, res.Duration.Round(time.Millisecond))
	return nil
}

func buildSelection(args []string) (domain.PageSelection, error) {
	var sel domain.PageSelection
	for _, arg := range args {
		path, indices, err := parseSourceArg(arg)
		if err != nil {
			return nil, err
		}
		if indices == nil {
			if indices, err = pdf.AllPages(path); err != nil {
				return nil, err
			}
		}
		sel.Add(path, indices...)
	}
	return sel, nil
}
