// Package compose runs the two document pipelines: images to pages, and
// pages copied out of existing PDFs.
package compose

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spherical/pdf-composer/internal/domain"
	"github.com/spherical/pdf-composer/internal/imaging"
	"github.com/spherical/pdf-composer/internal/layout"
	"github.com/spherical/pdf-composer/internal/observability"
	"github.com/spherical/pdf-composer/internal/pdf"
)

// Service executes one job at a time on the calling goroutine
type Service struct {
	validator *pdf.Validator
	docOpts   pdf.DocumentOptions
	logger    *observability.Logger
}

// NewService creates a new compose service
func NewService(opts pdf.DocumentOptions, logger *observability.Logger) *Service {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Service{
		validator: pdf.NewValidator(logger),
		docOpts:   opts,
		logger:    logger.WithComponent("compose"),
	}
}

// Validate checks a job's inputs without running it.
func (s *Service) Validate(job domain.Job) error {
	return s.validator.ValidateJob(job)
}

// Process runs job to completion, reporting on eventCh. Exactly one
// terminal event (complete or error) is sent; on error no file exists at
// the output path unless one existed before. Sends block, so eventCh must
// be drained or buffered for job.Units()+4 events.
func (s *Service) Process(ctx context.Context, job domain.Job, eventCh chan<- domain.StreamEvent) (*domain.Result, error) {
	startTime := time.Now()
	log := s.logger.WithJob(job.ID)
	if strings.TrimSpace(job.Output) != "" {
		job.Output = domain.NormalizeOutputPath(job.Output)
	}

	if err := s.validator.ValidateJob(job); err != nil {
		s.emitError(eventCh, err)
		return nil, err
	}

	total := job.Units()
	s.emit(eventCh, domain.StartEvent(total))
	log.Info().
		Str("kind", string(job.Kind)).
		Int("units", total).
		Str("output", job.Output).
		Msg("job started")
	if job.Kind == domain.JobImages {
		log.Debug().
			Strs("images", job.Images).
			Bool("compress", s.docOpts.Compress).
			Msg("image job")
	}

	var pages int
	var err error
	switch job.Kind {
	case domain.JobImages:
		pages, err = s.composeImages(ctx, job, eventCh)
	case domain.JobPages:
		pages, err = s.extractPages(ctx, job, eventCh)
	}

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			err = domain.CancelledError("job cancelled", err)
		}
		log.Error().Err(err).Msg("job failed")
		s.emitError(eventCh, err)
		return nil, err
	}

	res := domain.Result{
		JobID:      job.ID,
		OutputPath: job.Output,
		Pages:      pages,
		Duration:   time.Since(startTime),
	}
	s.emit(eventCh, domain.CompleteEvent(res))
	log.Info().
		Int("pages", pages).
		Dur("duration", res.Duration).
		Msg("job complete")

	return &res, nil
}

func (s *Service) composeImages(ctx context.Context, job domain.Job, eventCh chan<- domain.StreamEvent) (int, error) {
	doc := pdf.NewImageDocument(s.docOpts)
	total := len(job.Images)

	for i, path := range job.Images {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		s.emit(eventCh, domain.ProgressEvent(i+1, total))

		img, err := imaging.Load(path)
		if err != nil {
			return 0, err
		}
		entry := img.Entry()
		placement, err := layout.Place(entry.Width, entry.Height, job.Layout)
		if err != nil {
			return 0, err
		}
		if err := doc.AddPage(img, placement); err != nil {
			return 0, err
		}

		s.logger.Debug().
			Str("image", entry.Path).
			Int("width", entry.Width).
			Int("height", entry.Height).
			Float64("page_w", placement.PageW).
			Float64("page_h", placement.PageH).
			Msg("page added")
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	staging, err := pdf.Stage(job.Output)
	if err != nil {
		return 0, err
	}
	defer staging.Abort()
	s.emit(eventCh, domain.MessageEvent("Save file %s", staging.Final()))

	f, err := staging.Create()
	if err != nil {
		return 0, err
	}
	if err := doc.Write(f); err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, domain.OutputError("failed to write output", err)
	}
	if err := staging.Commit(); err != nil {
		return 0, err
	}

	return doc.Pages(), nil
}

func (s *Service) extractPages(ctx context.Context, job domain.Job, eventCh chan<- domain.StreamEvent) (int, error) {
	total := job.Selection.Total()

	asm, err := pdf.NewPageAssembler()
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := asm.Cleanup(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to remove work directory")
		}
	}()

	copied := 0
	for _, entry := range job.Selection {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		src, err := pdf.OpenSource(entry.Path)
		if err != nil {
			return 0, err
		}

		for _, idx := range entry.Indices {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			if err := src.CheckIndex(idx); err != nil {
				return 0, err
			}
		}

		if err := asm.Append(src, entry.Indices); err != nil {
			return 0, err
		}
		// progress counts pages already copied into the assembly
		for range entry.Indices {
			copied++
			s.emit(eventCh, domain.ProgressEvent(copied, total))
		}
		s.logger.Debug().
			Str("source", entry.Path).
			Int("pages", len(entry.Indices)).
			Int("source_pages", src.PageCount).
			Msg("pages copied")
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	staging, err := pdf.Stage(job.Output)
	if err != nil {
		return 0, err
	}
	defer staging.Abort()
	s.emit(eventCh, domain.MessageEvent("Save file %s", staging.Final()))

	if err := asm.Write(staging.Path()); err != nil {
		return 0, err
	}
	if err := staging.Commit(); err != nil {
		return 0, err
	}
	return asm.Pages(), nil
}

// emit blocks until the observer takes the event; events are never dropped.
func (s *Service) emit(eventCh chan<- domain.StreamEvent, event domain.StreamEvent) {
	if eventCh != nil {
		eventCh <- event
	}
}

func (s *Service) emitError(eventCh chan<- domain.StreamEvent, err error) {
	s.emit(eventCh, domain.ErrorEvent(err))
}
