package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/haneulsoft/caseledger/internal/domain"
	"github.com/haneulsoft/caseledger/internal/format"
)

// DashboardService defines the methods that the dashboard handler requires
// from the service layer.
type DashboardService interface {
	Snapshot(ctx context.Context) (domain.DashboardSnapshot, error)
}

// OutstandingService reports the aggregate bond total. It is separate from
// the cached snapshot because the figure drifts daily and is computed fresh
// per request.
type OutstandingService interface {
	OutstandingTotal(ctx context.Context) (float64, error)
}

// DashboardHandler serves the operator dashboard endpoint.
type DashboardHandler struct {
	dashboard   DashboardService
	outstanding OutstandingService
	logger      *slog.Logger
}

// NewDashboardHandler creates a DashboardHandler with the given services and
// logger.
func NewDashboardHandler(dashboard DashboardService, outstanding OutstandingService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard:   dashboard,
		outstanding: outstanding,
		logger:      logger,
	}
}

// GetDashboard returns the cached snapshot plus the freshly computed
// outstanding bond total.
// GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := h.dashboard.Snapshot(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: dashboard snapshot failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}

	total, err := h.outstanding.OutstandingTotal(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: outstanding total failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to compute outstanding total")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"snapshot":            snap,
		"outstanding_total":   total,
		"outstanding_display": format.Won(total),
	})
}
