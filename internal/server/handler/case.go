package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/haneulsoft/caseledger/internal/domain"
)

// CaseService defines the methods that the case handler requires from the
// service layer. It is declared locally so the handler package does not
// depend on the concrete service implementation.
type CaseService interface {
	CreateCase(ctx context.Context, c domain.Case) (domain.Case, error)
	UpdateCase(ctx context.Context, c domain.Case) (domain.Case, error)
	CloseCase(ctx context.Context, id string) error
	GetCase(ctx context.Context, id string) (domain.Case, error)
	ListCases(ctx context.Context, status domain.CaseStatus, opts domain.ListOpts) ([]domain.Case, error)
	Timeline(ctx context.Context, caseID string, opts domain.ListOpts) ([]domain.TimelineEvent, error)
}

// CaseHandler serves case-related HTTP endpoints.
type CaseHandler struct {
	cases  CaseService
	logger *slog.Logger
}

// NewCaseHandler creates a CaseHandler with the given service and logger.
func NewCaseHandler(cases CaseService, logger *slog.Logger) *CaseHandler {
	return &CaseHandler{
		cases:  cases,
		logger: logger,
	}
}

// listCasesResponse wraps the list endpoint output with pagination metadata.
type listCasesResponse struct {
	Cases  []domain.Case `json:"cases"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// ListCases returns cases, optionally filtered by status.
// GET /api/cases?status=active&limit=50&offset=0
func (h *CaseHandler) ListCases(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)
	status := domain.CaseStatus(r.URL.Query().Get("status"))

	cases, err := h.cases.ListCases(r.Context(), status, opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list cases failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list cases")
		return
	}

	if cases == nil {
		cases = []domain.Case{}
	}

	writeJSON(w, http.StatusOK, listCasesResponse{
		Cases:  cases,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	})
}

// CreateCase registers a new case from a JSON body.
// POST /api/cases
func (h *CaseHandler) CreateCase(w http.ResponseWriter, r *http.Request) {
	var c domain.Case
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if c.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	created, err := h.cases.CreateCase(r.Context(), c)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, "case number already registered")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: create case failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to create case")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// GetCase returns a single case by its ID.
// GET /api/cases/{id}
func (h *CaseHandler) GetCase(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing case id")
		return
	}

	c, err := h.cases.GetCase(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "case not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get case failed",
			slog.String("case_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get case")
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// UpdateCase replaces the mutable fields of an existing case.
// PUT /api/cases/{id}
func (h *CaseHandler) UpdateCase(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing case id")
		return
	}

	var c domain.Case
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	c.ID = id

	updated, err := h.cases.UpdateCase(r.Context(), c)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "case not found")
		case errors.Is(err, domain.ErrCaseClosed):
			writeError(w, http.StatusConflict, "case is closed")
		default:
			h.logger.ErrorContext(r.Context(), "handler: update case failed",
				slog.String("case_id", id),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "failed to update case")
		}
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// CloseCase marks a case closed.
// POST /api/cases/{id}/close
func (h *CaseHandler) CloseCase(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing case id")
		return
	}

	if err := h.cases.CloseCase(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "case not found")
		case errors.Is(err, domain.ErrCaseClosed):
			writeError(w, http.StatusConflict, "case is already closed")
		default:
			h.logger.ErrorContext(r.Context(), "handler: close case failed",
				slog.String("case_id", id),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "failed to close case")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "closed",
		"case_id": id,
	})
}

// GetTimeline returns the history of a case, newest first.
// GET /api/cases/{id}/timeline
func (h *CaseHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing case id")
		return
	}

	events, err := h.cases.Timeline(r.Context(), id, parseListOpts(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get timeline failed",
			slog.String("case_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get timeline")
		return
	}

	if events == nil {
		events = []domain.TimelineEvent{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}
