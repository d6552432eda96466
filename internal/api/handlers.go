package api

//go:generate mockgen -source=handlers.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"post_scheduler/internal/blob"
	"post_scheduler/internal/domain"
	"post_scheduler/internal/service"
)

// Intake is the operator-facing side of the scheduler.
type Intake interface {
	Submit(ctx context.Context, req service.SubmitRequest) (int64, error)
	List(ctx context.Context) ([]service.PostView, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Flairs(ctx context.Context, subreddit string) []domain.Flair
	Upload(ctx context.Context, filename string, size int64, body io.Reader) (string, error)
}

// BlobReader serves stored uploads back to clients.
type BlobReader interface {
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	intake         Intake
	blobs          BlobReader
	health         HealthCheck
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewHandler(intake Intake, blobs BlobReader, health HealthCheck, maxUploadBytes int64, logger *slog.Logger) *Handler {
	return &Handler{
		intake:         intake,
		blobs:          blobs,
		health:         health,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With("component", "api"),
	}
}

type errorResponse struct {
	Field string `json:"field,omitempty"`
	Error string `json:"error"`
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	var req service.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	id, err := h.intake.Submit(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.intake.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, posts)
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid post id"})
		return
	}

	// Deleting a missing post is not an error.
	if _, err := h.intake.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listFlairs(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.intake.Flairs(r.Context(), chi.URLParam(r, "subreddit")))
}

// multipartOverhead leaves room for boundaries and headers around the file.
const multipartOverhead = 1 << 20

func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	}

	file, header, err := r.FormFile("image_file")
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			h.writeError(w, r, domain.NewValidationError("image_file", "image file too large"))
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			h.writeError(w, r, domain.NewValidationError("image_file", "image file required"))
		default:
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		}
		return
	}
	defer file.Close()

	ref, err := h.intake.Upload(r.Context(), header.Filename, header.Size, file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]string{"ref": ref})
}

func (h *Handler) serveUpload(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")

	rc, err := h.blobs.Open(r.Context(), ref)
	if errors.Is(err, blob.ErrNotFound) || errors.Is(err, blob.ErrInvalidRef) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension("." + blob.Extension(ref))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")

	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("serve upload interrupted", "ref", ref, "error", err)
	}
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			h.logger.Warn("health check failed", "error", err)
			h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Field: vErr.Field, Error: vErr.Message})
		return
	}

	h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("encode response", "error", err)
	}
}
