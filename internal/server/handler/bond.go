package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/haneulsoft/caseledger/internal/domain"
	"github.com/haneulsoft/caseledger/internal/format"
	"github.com/haneulsoft/caseledger/internal/service"
)

// BondService defines the methods that the bond handler requires from the
// service layer.
type BondService interface {
	SaveBond(ctx context.Context, caseID string, b domain.BondRecord) (domain.BondRecord, error)
	GetStatement(ctx context.Context, caseID string) (service.BondStatement, error)
	DeleteBond(ctx context.Context, caseID string) error
}

// BondHandler serves bond-related HTTP endpoints.
type BondHandler struct {
	bonds  BondService
	logger *slog.Logger
}

// NewBondHandler creates a BondHandler with the given service and logger.
func NewBondHandler(bonds BondService, logger *slog.Logger) *BondHandler {
	return &BondHandler{
		bonds:  bonds,
		logger: logger,
	}
}

// statementResponse is the evaluated bond statement plus the floored display
// string for the grand total. Internal figures keep full precision; only the
// display string truncates.
type statementResponse struct {
	service.BondStatement
	TotalDisplay string `json:"total_display"`
}

// GetBond returns the bond record for a case, evaluated at the current date.
// GET /api/cases/{id}/bond
func (h *BondHandler) GetBond(w http.ResponseWriter, r *http.Request) {
	caseID := pathParam(r, "id")
	if caseID == "" {
		writeError(w, http.StatusBadRequest, "missing case id")
		return
	}

	stmt, err := h.bonds.GetStatement(r.Context(), caseID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no bond record for case")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get bond failed",
			slog.String("case_id", caseID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get bond")
		return
	}

	writeJSON(w, http.StatusOK, statementResponse{
		BondStatement: stmt,
		TotalDisplay:  format.Won(stmt.Total),
	})
}

// SaveBond replaces the bond record for a case wholesale.
// PUT /api/cases/{id}/bond
func (h *BondHandler) SaveBond(w http.ResponseWriter, r *http.Request) {
	caseID := pathParam(r, "id")
	if caseID == "" {
		writeError(w, http.StatusBadRequest, "missing case id")
		return
	}

	var b domain.BondRecord
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	saved, err := h.bonds.SaveBond(r.Context(), caseID, b)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "case not found")
		case errors.Is(err, domain.ErrCaseClosed):
			writeError(w, http.StatusConflict, "case is closed")
		case errors.Is(err, domain.ErrTooManyTranches):
			writeError(w, http.StatusBadRequest, "at most two interest tranches are allowed")
		default:
			h.logger.ErrorContext(r.Context(), "handler: save bond failed",
				slog.String("case_id", caseID),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "failed to save bond")
		}
		return
	}

	writeJSON(w, http.StatusOK, saved)
}

// DeleteBond removes the bond record for a case.
// DELETE /api/cases/{id}/bond
func (h *BondHandler) DeleteBond(w http.ResponseWriter, r *http.Request) {
	caseID := pathParam(r, "id")
	if caseID == "" {
		writeError(w, http.StatusBadRequest, "missing case id")
		return
	}

	if err := h.bonds.DeleteBond(r.Context(), caseID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no bond record for case")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: delete bond failed",
			slog.String("case_id", caseID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to delete bond")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "deleted",
		"case_id": caseID,
	})
}
