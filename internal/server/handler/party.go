package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/haneulsoft/caseledger/internal/domain"
	"github.com/haneulsoft/caseledger/internal/format"
)

// PartyService defines the methods that the party handler requires from the
// service layer.
type PartyService interface {
	CreateParty(ctx context.Context, p domain.Party) (domain.Party, error)
	UpdateParty(ctx context.Context, p domain.Party) (domain.Party, error)
	GetParty(ctx context.Context, id string) (domain.Party, error)
	ListParties(ctx context.Context, role domain.PartyRole, opts domain.ListOpts) ([]domain.Party, error)
}

// PartyHandler serves party-related HTTP endpoints. Responses always carry
// masked phone numbers and resident numbers; the raw values never leave the
// service layer.
type PartyHandler struct {
	parties PartyService
	logger  *slog.Logger
}

// NewPartyHandler creates a PartyHandler with the given service and logger.
func NewPartyHandler(parties PartyService, logger *slog.Logger) *PartyHandler {
	return &PartyHandler{
		parties: parties,
		logger:  logger,
	}
}

// partyView is the masked representation returned by the API.
type partyView struct {
	ID         string           `json:"id"`
	Role       domain.PartyRole `json:"role"`
	Name       string           `json:"name"`
	Phone      string           `json:"phone"`
	ResidentNo string           `json:"resident_no"`
	Address    string           `json:"address"`
	CreatedAt  time.Time        `json:"created_at"`
}

func maskParty(p domain.Party) partyView {
	return partyView{
		ID:         p.ID,
		Role:       p.Role,
		Name:       p.Name,
		Phone:      format.MaskPhone(p.Phone),
		ResidentNo: format.MaskResidentNo(p.ResidentNo),
		Address:    p.Address,
		CreatedAt:  p.CreatedAt,
	}
}

// ListParties returns parties, optionally filtered by role.
// GET /api/parties?role=debtor&limit=50&offset=0
func (h *PartyHandler) ListParties(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)
	role := domain.PartyRole(r.URL.Query().Get("role"))

	parties, err := h.parties.ListParties(r.Context(), role, opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list parties failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list parties")
		return
	}

	views := make([]partyView, 0, len(parties))
	for _, p := range parties {
		views = append(views, maskParty(p))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"parties": views,
		"limit":   opts.Limit,
		"offset":  opts.Offset,
	})
}

// CreateParty registers a creditor or debtor from a JSON body.
// POST /api/parties
func (h *PartyHandler) CreateParty(w http.ResponseWriter, r *http.Request) {
	var p domain.Party
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if p.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	created, err := h.parties.CreateParty(r.Context(), p)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: create party failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to create party")
		return
	}

	writeJSON(w, http.StatusCreated, maskParty(created))
}

// GetParty returns a single party by its ID with masked contact fields.
// GET /api/parties/{id}
func (h *PartyHandler) GetParty(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing party id")
		return
	}

	p, err := h.parties.GetParty(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "party not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get party failed",
			slog.String("party_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get party")
		return
	}

	writeJSON(w, http.StatusOK, maskParty(p))
}

// UpdateParty replaces an existing party's fields.
// PUT /api/parties/{id}
func (h *PartyHandler) UpdateParty(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing party id")
		return
	}

	var p domain.Party
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	p.ID = id

	updated, err := h.parties.UpdateParty(r.Context(), p)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "party not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: update party failed",
			slog.String("party_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to update party")
		return
	}

	writeJSON(w, http.StatusOK, maskParty(updated))
}
