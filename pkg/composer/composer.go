// Package composer is the library entry point for building PDFs out of
// images or out of pages of existing PDFs.
package composer

import (
	"context"

	"github.com/spherical/pdf-composer/internal/compose"
	"github.com/spherical/pdf-composer/internal/config"
	"github.com/spherical/pdf-composer/internal/domain"
	"github.com/spherical/pdf-composer/internal/observability"
	"github.com/spherical/pdf-composer/internal/pdf"
	"github.com/spherical/pdf-composer/internal/supervisor"
)

// Re-export job and event types for the public API
type (
	StreamEvent      = domain.StreamEvent
	EventType        = domain.EventType
	Result           = domain.Result
	LayoutParameters = domain.LayoutParameters
	PageSelection    = domain.PageSelection
	SourcePages      = domain.SourcePages
	RGB              = domain.RGB
	Alignment        = domain.Alignment
	PageSize         = domain.PageSize
	PageMode         = domain.PageMode
	Snapshot         = supervisor.Snapshot
	State            = supervisor.State
	DocumentOptions  = pdf.DocumentOptions
)

// Event type constants
const (
	EventStart    = domain.EventStart
	EventProgress = domain.EventProgress
	EventMessage  = domain.EventMessage
	EventError    = domain.EventError
	EventComplete = domain.EventComplete
)

// Layout constants
const (
	SourceFit = domain.SourceFit
	FixedPage = domain.FixedPage

	A4     = domain.A4
	A5     = domain.A5
	A6     = domain.A6
	Letter = domain.Letter

	Center       = domain.Center
	TopCenter    = domain.TopCenter
	BottomCenter = domain.BottomCenter
	LeftTop      = domain.LeftTop
	LeftCenter   = domain.LeftCenter
	LeftBottom   = domain.LeftBottom
	RightTop     = domain.RightTop
	RightCenter  = domain.RightCenter
	RightBottom  = domain.RightBottom
)

// Worker states
const (
	Idle      = supervisor.Idle
	Running   = supervisor.Running
	Completed = supervisor.Completed
	Failed    = supervisor.Failed
)

var (
	DefaultSourceFitLayout = domain.DefaultSourceFitLayout
	DefaultFixedPageLayout = domain.DefaultFixedPageLayout
	ParsePageList          = domain.ParsePageList
)

// Client runs one composition job at a time on a background worker
type Client struct {
	sup    *supervisor.Supervisor
	logger *observability.Logger
}

// Config holds configuration options for the client
type Config struct {
	Document DocumentOptions
	Logger   *observability.Logger // nil disables logging
}

// NewClient creates a client configured from .env, $CONFIG_PATH and the
// environment.
func NewClient() (*Client, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}

	return NewClientWithConfig(&Config{
		Document: cfg.PDF.DocumentOptions(),
		Logger:   observability.NewLogger(cfg.LoggerConfig("pdf-composer")),
	})
}

// NewClientWithConfig creates a client with custom configuration
func NewClientWithConfig(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = &Config{Document: pdf.DefaultDocumentOptions()}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = observability.Nop()
	}

	service := compose.NewService(cfg.Document, logger)
	return &Client{
		sup:    supervisor.New(service, logger),
		logger: logger,
	}, nil
}

// ComposeImages writes one page per image to output. The returned channel
// streams the job's events and is closed after the terminal event.
// Cancelling ctx cancels the job.
func (c *Client) ComposeImages(ctx context.Context, images []string, layout LayoutParameters, output string) (<-chan StreamEvent, error) {
	return c.start(ctx, domain.NewImageJob(images, layout, output))
}

// ExtractPages copies the selected pages, in selection order, to output.
func (c *Client) ExtractPages(ctx context.Context, selection PageSelection, output string) (<-chan StreamEvent, error) {
	return c.start(ctx, domain.NewPageJob(selection, output))
}

func (c *Client) start(ctx context.Context, job domain.Job) (<-chan StreamEvent, error) {
	run, err := c.sup.Submit(job)
	if err != nil {
		return nil, err
	}

	go func() {
		select {
		case <-ctx.Done():
			c.sup.Cancel(run.ID)
		case <-run.Done():
		}
	}()

	return run.Events(), nil
}

// Status returns the state of the current or last job; ok is false before
// the first job.
func (c *Client) Status() (snap Snapshot, ok bool) {
	return c.sup.Snapshot()
}

// Cancel stops the job with the given id at its next page boundary.
func (c *Client) Cancel(jobID string) error {
	return c.sup.Cancel(jobID)
}

// Close cancels any running job and waits for the worker to stop.
func (c *Client) Close(ctx context.Context) error {
	return c.sup.Close(ctx)
}
