package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/md-rashed-zaman/bookable/internal/model"
	"github.com/md-rashed-zaman/bookable/internal/storage"
	"github.com/md-rashed-zaman/bookable/libs/auth"
)

// BlocklistHandler manages per-business customer blocks. Auto-blocks live on
// the customer row; these are the manual, business-scoped ones.
type BlocklistHandler struct {
	customers *storage.CustomerRepository
	logger    *slog.Logger
}

func NewBlocklistHandler(customers *storage.CustomerRepository, logger *slog.Logger) *BlocklistHandler {
	return &BlocklistHandler{customers: customers, logger: logger}
}

type blocklistRequest struct {
	BusinessID string `json:"business_id"`
	CustomerID string `json:"customer_id"`
	Reason     string `json:"reason"`
}

func (h *BlocklistHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.add(w, r)
	case http.MethodDelete:
		h.remove(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *BlocklistHandler) add(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	createdBy := "owner"
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		createdBy = claims.Sub
	}
	block := model.BlockedCustomer{
		BusinessID: req.BusinessID,
		CustomerID: req.CustomerID,
		Reason:     req.Reason,
		CreatedBy:  createdBy,
	}
	if err := h.customers.AddBlock(r.Context(), block); err != nil {
		h.logger.Error("blocklist add failed", "err", err, "business_id", req.BusinessID)
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to block customer")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"blocked": true})
}

func (h *BlocklistHandler) remove(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	if err := h.customers.RemoveBlock(r.Context(), req.BusinessID, req.CustomerID); err != nil {
		h.logger.Error("blocklist remove failed", "err", err, "business_id", req.BusinessID)
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to unblock customer")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"blocked": false})
}

func (h *BlocklistHandler) decode(w http.ResponseWriter, r *http.Request) (blocklistRequest, bool) {
	var req blocklistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid json body")
		return req, false
	}
	req.BusinessID = strings.TrimSpace(req.BusinessID)
	req.CustomerID = strings.TrimSpace(req.CustomerID)
	req.Reason = strings.TrimSpace(req.Reason)
	if req.BusinessID == "" || req.CustomerID == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "business_id and customer_id required")
		return req, false
	}
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil && claims.BusinessID != req.BusinessID {
		writeError(w, http.StatusForbidden, codeBlocked, "token does not match business")
		return req, false
	}
	return req, true
}
