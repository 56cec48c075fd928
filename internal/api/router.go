// Package api provides the HTTP job API over the worker supervisor.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/spherical/pdf-composer/internal/domain"
	"github.com/spherical/pdf-composer/internal/observability"
	"github.com/spherical/pdf-composer/internal/supervisor"
)

// Options holds router configuration.
type Options struct {
	RequestTimeout time.Duration
	// Layout is applied to image jobs for every field the request omits.
	Layout domain.LayoutParameters
	// Output is used when a request has no output path.
	Output string
}

// DefaultOptions returns default router configuration.
func DefaultOptions() Options {
	return Options{
		RequestTimeout: 30 * time.Second,
		Layout:         domain.DefaultSourceFitLayout(),
		Output:         "selection.pdf",
	}
}

// NewRouter creates the API router with all routes configured.
func NewRouter(logger *observability.Logger, sup *supervisor.Supervisor, opts Options) http.Handler {
	if logger == nil {
		logger = observability.Nop()
	}
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(opts.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "pdf-composer"})
	})

	jobs := NewJobHandler(logger, sup, opts)

	r.Route("/api/v1/jobs", func(r chi.Router) {
		r.Post("/images", jobs.SubmitImages)
		r.Post("/pages", jobs.SubmitPages)
		r.Get("/current", jobs.Current)
		r.Get("/{jobId}", jobs.Get)
		r.Post("/{jobId}/cancel", jobs.Cancel)
	})

	return r
}

// requestLogger stores the chi request id in the context and logs each
// request once it has been served.
func requestLogger(logger *observability.Logger) func(http.Handler) http.Handler {
	logger = logger.WithComponent("http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := observability.ContextWithRequestID(r.Context(), chimiddleware.GetReqID(r.Context()))
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r.WithContext(ctx))

			logger.WithContext(ctx).Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request served")
		})
	}
}
