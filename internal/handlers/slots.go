package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/md-rashed-zaman/bookable/internal/availability"
	"github.com/md-rashed-zaman/bookable/internal/storage"
	"github.com/md-rashed-zaman/bookable/libs/auth"
)

// SlotHandler serves the availability ledger: bulk generation, short-lived
// reservation holds, and owner block/unblock. Holds expire by timestamp
// comparison only; nothing sweeps them.
type SlotHandler struct {
	slots   *storage.SlotRepository
	logger  *slog.Logger
	loc     *time.Location
	holdTTL time.Duration
}

func NewSlotHandler(slots *storage.SlotRepository, logger *slog.Logger, loc *time.Location, holdTTL time.Duration) *SlotHandler {
	if holdTTL <= 0 {
		holdTTL = 2 * time.Minute
	}
	return &SlotHandler{slots: slots, logger: logger, loc: loc, holdTTL: holdTTL}
}

type generateSlotsRequest struct {
	BusinessID      string `json:"business_id"`
	Date            string `json:"date"`
	StartHour       string `json:"start_hour"`
	EndHour         string `json:"end_hour"`
	DurationMinutes int    `json:"duration_minutes"`
}

func (h *SlotHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req generateSlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid json body")
		return
	}
	req.BusinessID = strings.TrimSpace(req.BusinessID)
	if req.BusinessID == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "business_id required")
		return
	}
	date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(req.Date), h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid date")
		return
	}

	times, err := availability.SlotTimes(
		strings.TrimSpace(req.StartHour),
		strings.TrimSpace(req.EndHour),
		time.Duration(req.DurationMinutes)*time.Minute,
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	ctx := r.Context()
	tx, err := h.slots.Begin(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "db error")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	created, err := h.slots.InsertBatch(ctx, tx, req.BusinessID, date, times)
	if err != nil {
		h.logger.Error("slot generation failed", "err", err, "business_id", req.BusinessID)
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to generate slots")
		return
	}
	if err := tx.Commit(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to commit")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int{"created": created})
}

type reserveSlotRequest struct {
	SlotID   string `json:"slot_id"`
	HolderID string `json:"holder_id"`
}

// Reserve places a 2-minute hold on an available slot so the holder can
// finish the booking flow without losing it.
func (h *SlotHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req reserveSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid json body")
		return
	}
	req.SlotID = strings.TrimSpace(req.SlotID)
	req.HolderID = strings.TrimSpace(req.HolderID)
	if req.SlotID == "" || req.HolderID == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "slot_id and holder_id required")
		return
	}

	ctx := r.Context()
	tx, err := h.slots.Begin(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "db error")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	slot, err := h.slots.GetForUpdate(ctx, tx, req.SlotID)
	if errors.Is(err, storage.ErrSlotNotFound) {
		writeError(w, http.StatusNotFound, codeSlotNotFound, "slot not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to load slot")
		return
	}

	now := time.Now()
	if slot.IsBooked {
		writeError(w, http.StatusConflict, codeAlreadyBooked, "slot already booked")
		return
	}
	if slot.HeldAt(now) && (slot.ReservedBy == nil || *slot.ReservedBy != req.HolderID) {
		writeError(w, http.StatusConflict, codeReserved, "slot held by another customer")
		return
	}
	startAt, err := slot.StartAt(h.loc)
	if err != nil {
		h.logger.Error("bad slot clock", "err", err, "slot_id", slot.ID)
		writeError(w, http.StatusInternalServerError, codeInternal, "corrupt slot times")
		return
	}
	if !startAt.After(now) {
		writeError(w, http.StatusConflict, codeSlotExpired, "slot start time has passed")
		return
	}

	reservedUntil := now.Add(h.holdTTL)
	if err := h.slots.SetHold(ctx, tx, slot.ID, req.HolderID, reservedUntil); err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to reserve slot")
		return
	}
	if err := tx.Commit(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to commit")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"reserved_until": reservedUntil.UTC().Format(time.RFC3339),
	})
}

type releaseSlotRequest struct {
	SlotID string `json:"slot_id"`
}

// Release drops a hold unconditionally. Clients call it on navigation-away
// as a courtesy; correctness never depends on it.
func (h *SlotHandler) Release(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req releaseSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid json body")
		return
	}
	req.SlotID = strings.TrimSpace(req.SlotID)
	if req.SlotID == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "slot_id required")
		return
	}

	if err := h.slots.ClearHold(r.Context(), req.SlotID); err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to release slot")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type slotActionRequest struct {
	SlotID string `json:"slot_id"`
}

// Block marks a slot unavailable on the owner's behalf without attaching a
// customer. Slots carrying an active booking cannot be blocked.
func (h *SlotHandler) Block(w http.ResponseWriter, r *http.Request) {
	h.ownerSlotAction(w, r, true)
}

// Unblock reopens an owner-blocked (or freed) slot. A slot claimed by a
// customer is never reopened here; owner-cancel is the path for that.
func (h *SlotHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	h.ownerSlotAction(w, r, false)
}

func (h *SlotHandler) ownerSlotAction(w http.ResponseWriter, r *http.Request, block bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req slotActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid json body")
		return
	}
	req.SlotID = strings.TrimSpace(req.SlotID)
	if req.SlotID == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "slot_id required")
		return
	}

	ctx := r.Context()
	tx, err := h.slots.Begin(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "db error")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	slot, err := h.slots.GetForUpdate(ctx, tx, req.SlotID)
	if errors.Is(err, storage.ErrSlotNotFound) {
		writeError(w, http.StatusNotFound, codeSlotNotFound, "slot not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to load slot")
		return
	}
	if claims := auth.ClaimsFromContext(ctx); claims != nil && claims.BusinessID != slot.BusinessID {
		writeError(w, http.StatusForbidden, codeBlocked, "slot belongs to another business")
		return
	}
	if slot.BookedBy != nil {
		writeError(w, http.StatusConflict, codeAlreadyBooked, "slot has an active booking")
		return
	}

	if block {
		err = h.slots.Block(ctx, tx, slot.ID)
	} else {
		err = h.slots.Free(ctx, tx, slot.ID)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to update slot")
		return
	}
	if err := tx.Commit(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to commit")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type slotItem struct {
	SlotID        string `json:"slot_id"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	IsBooked      bool   `json:"is_booked"`
	Reserved      bool   `json:"reserved"`
	ReservedUntil string `json:"reserved_until,omitempty"`
}

// List returns a business day's slots. The reserved flag is computed lazily
// against now, so expired holds read as available without any cleanup pass.
func (h *SlotHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	businessID := strings.TrimSpace(r.URL.Query().Get("business_id"))
	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if businessID == "" || dateStr == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "business_id and date required")
		return
	}
	date, err := time.ParseInLocation("2006-01-02", dateStr, h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid date")
		return
	}

	slots, err := h.slots.ListForDay(r.Context(), businessID, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to list slots")
		return
	}

	now := time.Now()
	items := make([]slotItem, 0, len(slots))
	for _, s := range slots {
		item := slotItem{
			SlotID:    s.ID,
			Date:      s.SlotDate.Format("2006-01-02"),
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			IsBooked:  s.IsBooked,
			Reserved:  !s.IsBooked && s.HeldAt(now),
		}
		if item.Reserved {
			item.ReservedUntil = s.ReservedUntil.UTC().Format(time.RFC3339)
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, items)
}
