package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/spherical/pdf-composer/internal/domain"
	"github.com/spherical/pdf-composer/internal/observability"
	"github.com/spherical/pdf-composer/internal/pdf"
	"github.com/spherical/pdf-composer/internal/supervisor"
)

// JobHandler handles job submission and status requests.
type JobHandler struct {
	logger *observability.Logger
	sup    *supervisor.Supervisor
	opts   Options
}

// NewJobHandler creates a new job handler.
func NewJobHandler(logger *observability.Logger, sup *supervisor.Supervisor, opts Options) *JobHandler {
	return &JobHandler{
		logger: logger.WithComponent("jobs"),
		sup:    sup,
		opts:   opts,
	}
}

// LayoutDTO carries the layout options of an image job. Omitted fields
// take the server defaults.
type LayoutDTO struct {
	Mode          string   `json:"mode,omitempty"`
	Margin        *float64 `json:"margin,omitempty"`
	PixelsPerUnit *float64 `json:"pixels_per_unit,omitempty"`
	Alignment     string   `json:"alignment,omitempty"`
	Background    string   `json:"background,omitempty"`
}

// ImagesJobRequestDTO represents the API request for an image job.
type ImagesJobRequestDTO struct {
	Images []string   `json:"images"`
	Layout *LayoutDTO `json:"layout,omitempty"`
	Output string     `json:"output,omitempty"`
}

// PagesJobRequestDTO represents the API request for a page extraction
// job. A source without pages contributes all of its pages.
type PagesJobRequestDTO struct {
	Selection []domain.SourcePages `json:"selection"`
	Output    string               `json:"output,omitempty"`
}

// SubmitImages handles POST /api/v1/jobs/images.
func (h *JobHandler) SubmitImages(w http.ResponseWriter, r *http.Request) {
	var req ImagesJobRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	params, err := resolveLayout(h.opts.Layout, req.Layout)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.submit(w, r, domain.NewImageJob(req.Images, params, h.output(req.Output)))
}

// SubmitPages handles POST /api/v1/jobs/pages.
func (h *JobHandler) SubmitPages(w http.ResponseWriter, r *http.Request) {
	var req PagesJobRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	var sel domain.PageSelection
	for _, src := range req.Selection {
		indices := src.Indices
		if len(indices) == 0 && src.Path != "" {
			all, err := pdf.AllPages(src.Path)
			if err != nil {
				h.writeDomainError(w, err)
				return
			}
			indices = all
		}
		sel = append(sel, domain.SourcePages{Path: src.Path, Indices: indices})
	}

	h.submit(w, r, domain.NewPageJob(sel, h.output(req.Output)))
}

func (h *JobHandler) submit(w http.ResponseWriter, r *http.Request, job domain.Job) {
	run, err := h.sup.Submit(job)
	if err != nil {
		h.logger.WithContext(r.Context()).Warn().
			Err(err).
			Str("kind", string(job.Kind)).
			Msg("job rejected")
		h.writeDomainError(w, err)
		return
	}

	snap, err := h.sup.Lookup(run.ID)
	if err != nil {
		// a fast job may already have been replaced; report what we know
		snap = supervisor.Snapshot{JobID: run.ID, Kind: job.Kind, State: supervisor.Running}
	}
	writeJSON(w, http.StatusAccepted, snap)
}

// Current handles GET /api/v1/jobs/current.
func (h *JobHandler) Current(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.sup.Snapshot()
	if !ok {
		writeError(w, http.StatusNotFound, "no job has been submitted", "")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Get handles GET /api/v1/jobs/{jobId}.
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sup.Lookup(chi.URLParam(r, "jobId"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Cancel handles POST /api/v1/jobs/{jobId}/cancel.
func (h *JobHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobId")
	if err := h.sup.Cancel(id); err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.logger.WithContext(r.Context()).Info().Str("job_id", id).Msg("cancel requested over HTTP")
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": id, "status": "cancelling"})
}

func (h *JobHandler) output(path string) string {
	if strings.TrimSpace(path) == "" {
		return h.opts.Output
	}
	return path
}

// resolveLayout overlays the request fields on the defaults.
func resolveLayout(defaults domain.LayoutParameters, dto *LayoutDTO) (domain.LayoutParameters, error) {
	params := defaults
	if dto == nil {
		return params, nil
	}

	if dto.Mode != "" {
		mode, size, err := domain.ParseMode(dto.Mode)
		if err != nil {
			return params, err
		}
		params = params.WithMode(mode, size)
	}
	if dto.Margin != nil {
		params.Margin = *dto.Margin
	}
	if dto.PixelsPerUnit != nil {
		params.PixelsPerUnit = *dto.PixelsPerUnit
	}
	if dto.Alignment != "" {
		align, err := domain.ParseAlignment(dto.Alignment)
		if err != nil {
			return params, err
		}
		params.Alignment = align
	}
	if dto.Background != "" {
		bg, err := domain.ParseRGB(dto.Background)
		if err != nil {
			return params, err
		}
		params.Background = bg
	}

	return params, params.Validate()
}

// statusFor maps errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, supervisor.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, supervisor.ErrNotRunning):
		return http.StatusConflict
	}

	switch domain.TypeOf(err) {
	case domain.ErrorTypeBusy:
		return http.StatusConflict
	case domain.ErrorTypeValidation, domain.ErrorTypePageRange, domain.ErrorTypeSource,
		domain.ErrorTypeImageDecode, domain.ErrorTypeDegenerateImage:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *JobHandler) writeDomainError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Msg("request failed")
	}

	resp := map[string]string{
		"error":   err.Error(),
		"message": err.Error(),
	}
	if t := domain.TypeOf(err); t != "" {
		resp["type"] = string(t)
	}
	writeJSON(w, status, resp)
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	resp := map[string]string{
		"error":   message,
		"message": message,
	}
	if detail != "" {
		resp["detail"] = detail
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
