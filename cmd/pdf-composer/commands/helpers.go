package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spherical/pdf-composer/cmd/pdf-composer/ui"
	"github.com/spherical/pdf-composer/internal/domain"
	"github.com/spherical/pdf-composer/pkg/composer"
)

// interruptContext returns a context that is cancelled on the first
// SIGINT or SIGTERM.
func interruptContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr)
			ui.Warning("Received interrupt signal, cancelling job...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

func newClient() (*composer.Client, error) {
	return composer.NewClientWithConfig(&composer.Config{
		Document: cfg.PDF.DocumentOptions(),
		Logger:   logger,
	})
}

func closeClient(c *composer.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.Close(ctx); err != nil {
		logger.Warn().Err(err).Msg("worker did not stop in time")
	}
}

// followJob draws the progress of a job and returns its result once the
// terminal event arrives.
func followJob(events <-chan composer.StreamEvent, description string) (*composer.Result, error) {
	var (
		bar  *ui.ProgressBar
		spin *ui.Spinner
	)
	stop := func() {
		if spin != nil {
			spin.Stop()
			spin = nil
		}
	}
	defer stop()

	for ev := range events {
		switch ev.Type {
		case composer.EventStart:
			ui.Detail("job %s started with %d pages", ev.JobID, ev.Total)
			bar = ui.NewProgressBar(int64(ev.Total), description)

		case composer.EventProgress:
			if bar != nil {
				bar.Set(int64(ev.Done))
			}

		case composer.EventMessage:
			if bar != nil {
				bar.Finish()
				bar = nil
			}
			stop()
			spin = ui.NewSpinner(ev.Message)
			spin.Start()

		case composer.EventComplete:
			stop()
			return ev.Result, nil

		case composer.EventError:
			stop()
			if bar != nil {
				fmt.Fprintln(os.Stderr)
			}
			if ev.Err != nil {
				return nil, ev.Err
			}
			return nil, domain.IOError(ev.Message, nil)
		}
	}

	return nil, domain.IOError("job ended without a result", nil)
}

// parseSourceArg splits "file.pdf:0,2-4" into a path and page indices. The
// list is optional; nil indices mean every page.
func parseSourceArg(arg string) (string, []int, error) {
	i := strings.LastIndex(arg, ":")
	// keep windows drive letters such as C:\ intact
	if i <= 0 || (i == 1 && len(arg) > 2 && (arg[2] == '\\' || arg[2] == '/')) {
		return arg, nil, nil
	}
	if strings.ContainsAny(arg[i+1:], `/\`) {
		return arg, nil, nil
	}

	path, list := arg[:i], arg[i+1:]
	if strings.TrimSpace(list) == "" {
		return path, nil, nil
	}
	indices, err := domain.ParsePageList(list)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", arg, err)
	}
	return path, indices, nil
}

// previewPath returns the default PNG path for page index of pdfPath.
func previewPath(pdfPath string, index int) string {
	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	return fmt.Sprintf("%s-p%d.png", base, index)
}
