package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/haneulsoft/caseledger/internal/domain"
)

// EnforcementService defines the methods that the enforcement handler
// requires from the service layer.
type EnforcementService interface {
	Record(ctx context.Context, e domain.Enforcement) (domain.Enforcement, error)
	ListByCase(ctx context.Context, caseID string, opts domain.ListOpts) ([]domain.Enforcement, error)
	SumRecovered(ctx context.Context, caseID string) (float64, error)
}

// EnforcementHandler serves enforcement-related HTTP endpoints.
type EnforcementHandler struct {
	enforcements EnforcementService
	logger       *slog.Logger
}

// NewEnforcementHandler creates an EnforcementHandler with the given service
// and logger.
func NewEnforcementHandler(enforcements EnforcementService, logger *slog.Logger) *EnforcementHandler {
	return &EnforcementHandler{
		enforcements: enforcements,
		logger:       logger,
	}
}

// ListEnforcements returns the enforcement history for a case along with the
// total amount recovered so far.
// GET /api/cases/{id}/enforcements
func (h *EnforcementHandler) ListEnforcements(w http.ResponseWriter, r *http.Request) {
	caseID := pathParam(r, "id")
	if caseID == "" {
		writeError(w, http.StatusBadRequest, "missing case id")
		return
	}

	list, err := h.enforcements.ListByCase(r.Context(), caseID, parseListOpts(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list enforcements failed",
			slog.String("case_id", caseID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list enforcements")
		return
	}

	recovered, err := h.enforcements.SumRecovered(r.Context(), caseID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: sum recovered failed",
			slog.String("case_id", caseID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to sum recovered")
		return
	}

	if list == nil {
		list = []domain.Enforcement{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"enforcements":    list,
		"total_recovered": recovered,
	})
}

// RecordEnforcement registers a collection action from a JSON body.
// POST /api/cases/{id}/enforcements
func (h *EnforcementHandler) RecordEnforcement(w http.ResponseWriter, r *http.Request) {
	caseID := pathParam(r, "id")
	if caseID == "" {
		writeError(w, http.StatusBadRequest, "missing case id")
		return
	}

	var e domain.Enforcement
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	e.CaseID = caseID

	created, err := h.enforcements.Record(r.Context(), e)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "case not found")
		case errors.Is(err, domain.ErrCaseClosed):
			writeError(w, http.StatusConflict, "case is closed")
		default:
			h.logger.ErrorContext(r.Context(), "handler: record enforcement failed",
				slog.String("case_id", caseID),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "failed to record enforcement")
		}
		return
	}

	writeJSON(w, http.StatusCreated, created)
}
