package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/haneulsoft/caseledger/internal/domain"
)

// AttachmentService defines the methods that the attachment handler requires
// from the service layer.
type AttachmentService interface {
	Upload(ctx context.Context, caseID, fileName, contentType string, size int64, data io.Reader) (domain.Attachment, error)
	Download(ctx context.Context, id string) (domain.Attachment, io.ReadCloser, error)
	ListByCase(ctx context.Context, caseID string) ([]domain.Attachment, error)
	Delete(ctx context.Context, id string) error
}

// AttachmentHandler serves document upload and download endpoints.
type AttachmentHandler struct {
	attachments    AttachmentService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewAttachmentHandler creates an AttachmentHandler with the given service,
// upload size limit, and logger.
func NewAttachmentHandler(attachments AttachmentService, maxUploadBytes int64, logger *slog.Logger) *AttachmentHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 32 << 20 // 32 MiB
	}
	return &AttachmentHandler{
		attachments:    attachments,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Upload stores a document for a case from a multipart form with a "file"
// field.
// POST /api/cases/{id}/attachments
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	caseID := pathParam(r, "id")
	if caseID == "" {
		writeError(w, http.StatusBadRequest, "missing case id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Strip any client-supplied directory components.
	fileName := filepath.Base(header.Filename)

	a, err := h.attachments.Upload(r.Context(), caseID, fileName, contentType, header.Size, file)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "case not found")
		case errors.Is(err, domain.ErrCaseClosed):
			writeError(w, http.StatusConflict, "case is closed")
		case errors.Is(err, domain.ErrEmptyAttachment):
			writeError(w, http.StatusBadRequest, "uploaded file is empty")
		default:
			h.logger.ErrorContext(r.Context(), "handler: upload attachment failed",
				slog.String("case_id", caseID),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "failed to upload attachment")
		}
		return
	}

	writeJSON(w, http.StatusCreated, a)
}

// Download streams an attachment's bytes back to the client.
// GET /api/attachments/{id}
func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing attachment id")
		return
	}

	a, body, err := h.attachments.Download(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "attachment not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: download attachment failed",
			slog.String("attachment_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to download attachment")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.FileName))
	if a.Size > 0 {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", a.Size))
	}

	if _, err := io.Copy(w, body); err != nil {
		h.logger.WarnContext(r.Context(), "handler: attachment stream interrupted",
			slog.String("attachment_id", id),
			slog.String("error", err.Error()),
		)
	}
}

// ListAttachments returns the attachment metadata for a case.
// GET /api/cases/{id}/attachments
func (h *AttachmentHandler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	caseID := pathParam(r, "id")
	if caseID == "" {
		writeError(w, http.StatusBadRequest, "missing case id")
		return
	}

	list, err := h.attachments.ListByCase(r.Context(), caseID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list attachments failed",
			slog.String("case_id", caseID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list attachments")
		return
	}

	if list == nil {
		list = []domain.Attachment{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"attachments": list})
}

// DeleteAttachment removes an attachment's blob and metadata.
// DELETE /api/attachments/{id}
func (h *AttachmentHandler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing attachment id")
		return
	}

	if err := h.attachments.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "attachment not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: delete attachment failed",
			slog.String("attachment_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to delete attachment")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":        "deleted",
		"attachment_id": id,
	})
}
