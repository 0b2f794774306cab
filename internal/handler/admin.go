package handler

import (
	"net/http"

	"github.com/crickbet/platform/internal/domain"
	"github.com/crickbet/platform/internal/ledger"
	"github.com/crickbet/platform/internal/service"
	"github.com/crickbet/platform/internal/settlement"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// AdminHandler exposes the settlement override endpoints and wager placement.
type AdminHandler struct {
	admin   *settlement.AdminService
	wagers  *service.WagerService
	auditor *ledger.Auditor
}

// NewAdminHandler creates the admin HTTP handler.
func NewAdminHandler(admin *settlement.AdminService, wagers *service.WagerService, auditor *ledger.Auditor) *AdminHandler {
	return &AdminHandler{admin: admin, wagers: wagers, auditor: auditor}
}

// Routes mounts the admin and wager endpoints.
func (h *AdminHandler) Routes(r chi.Router) {
	r.Post("/admin/matches/{matchID}/settle", h.manualSettle)
	r.Post("/admin/matches/{matchID}/void", h.manualVoid)
	r.Post("/admin/fancy/{marketID}/settle", h.manualFancySettle)
	r.Get("/admin/settlement/unsettled", h.unsettledSummary)
	r.Get("/admin/accounts/{accountID}/audit", h.auditAccount)
	r.Post("/wagers", h.placeWager)
}

func urlUUID(r *http.Request, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, key))
	if err != nil {
		return uuid.Nil, domain.ErrValidation("invalid " + key)
	}
	return id, nil
}

// actor resolves the audit identity for manual operations. Authentication
// is handled upstream; the gateway forwards the operator name.
func actor(r *http.Request) string {
	if op := r.Header.Get("X-Operator"); op != "" {
		return "admin:" + op
	}
	return "admin"
}

func (h *AdminHandler) manualSettle(w http.ResponseWriter, r *http.Request) {
	matchID, err := urlUUID(r, "matchID")
	if err != nil {
		RespondError(w, err)
		return
	}

	var req struct {
		Winner string `json:"winner"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	report, err := h.admin.ManualSettle(r.Context(), matchID, req.Winner, actor(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, report)
}

func (h *AdminHandler) manualVoid(w http.ResponseWriter, r *http.Request) {
	matchID, err := urlUUID(r, "matchID")
	if err != nil {
		RespondError(w, err)
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	report, err := h.admin.ManualVoid(r.Context(), matchID, req.Reason, actor(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, report)
}

func (h *AdminHandler) manualFancySettle(w http.ResponseWriter, r *http.Request) {
	marketID, err := urlUUID(r, "marketID")
	if err != nil {
		RespondError(w, err)
		return
	}

	var req struct {
		Result *int `json:"result"`
	}
	if err := DecodeJSON(r, &req); err != nil || req.Result == nil {
		RespondError(w, domain.ErrValidation("result is required"))
		return
	}

	report, err := h.admin.ManualFancySettle(r.Context(), marketID, *req.Result, actor(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, report)
}

func (h *AdminHandler) unsettledSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.admin.GetUnsettledSummary(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, summary)
}

func (h *AdminHandler) auditAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := urlUUID(r, "accountID")
	if err != nil {
		RespondError(w, err)
		return
	}

	result, err := h.auditor.AuditAccount(r.Context(), accountID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}

func (h *AdminHandler) placeWager(w http.ResponseWriter, r *http.Request) {
	var req service.PlaceWagerRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	wager, err := h.wagers.PlaceWager(r.Context(), req)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, wager)
}
