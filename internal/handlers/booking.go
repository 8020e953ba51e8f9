package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/md-rashed-zaman/bookable/internal/abuse"
	"github.com/md-rashed-zaman/bookable/internal/availability"
	"github.com/md-rashed-zaman/bookable/internal/model"
	"github.com/md-rashed-zaman/bookable/internal/outbox"
	"github.com/md-rashed-zaman/bookable/internal/policy"
	"github.com/md-rashed-zaman/bookable/internal/storage"
	"github.com/md-rashed-zaman/bookable/libs/auth"
)

// BookingHandler owns the slot-to-appointment conversion and both
// cancellation paths. Every flow is one transaction around a row-locked
// slot or appointment; the outbox insert rides in the same transaction, so
// an event exists exactly when its state change committed.
type BookingHandler struct {
	slots      *storage.SlotRepository
	appts      *storage.AppointmentRepository
	customers  *storage.CustomerRepository
	outboxRepo *outbox.Repository
	policies   policy.Provider
	logger     *slog.Logger
	loc        *time.Location
	maxPerDay  int
}

func NewBookingHandler(
	slots *storage.SlotRepository,
	appts *storage.AppointmentRepository,
	customers *storage.CustomerRepository,
	outboxRepo *outbox.Repository,
	policies policy.Provider,
	logger *slog.Logger,
	loc *time.Location,
	maxPerDay int,
) *BookingHandler {
	if maxPerDay <= 0 {
		maxPerDay = 3
	}
	return &BookingHandler{
		slots:      slots,
		appts:      appts,
		customers:  customers,
		outboxRepo: outboxRepo,
		policies:   policies,
		logger:     logger,
		loc:        loc,
		maxPerDay:  maxPerDay,
	}
}

type createBookingRequest struct {
	SlotID        string `json:"slot_id"`
	CustomerID    string `json:"customer_id"`
	DeviceID      string `json:"device_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	ServiceID     string `json:"service_id"`
	Notes         string `json:"notes"`
}

type createBookingResponse struct {
	AppointmentID string `json:"appointment_id"`
	CustomerID    string `json:"customer_id"`
	Status        string `json:"status"`
}

// Create converts an available (or self-held) slot into a pending
// appointment. All checks and both writes commit atomically; any failure
// leaves no partial state.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid json body")
		return
	}
	req.SlotID = strings.TrimSpace(req.SlotID)
	req.CustomerID = strings.TrimSpace(req.CustomerID)
	req.DeviceID = strings.TrimSpace(req.DeviceID)
	req.CustomerName = strings.TrimSpace(req.CustomerName)

	if req.SlotID == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "slot_id required")
		return
	}
	if (req.CustomerID == "") == (req.DeviceID == "") {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "exactly one of customer_id or device_id required")
		return
	}
	if req.CustomerID == "" && req.CustomerName == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "customer_name required for device bookings")
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
	startAt, err := slot.StartAt(h.loc)
	if err != nil {
		h.logger.Error("bad slot clock", "err", err, "slot_id", slot.ID)
		writeError(w, http.StatusInternalServerError, codeInternal, "corrupt slot times")
		return
	}
	endAt, err := slot.EndAt(h.loc)
	if err != nil {
		h.logger.Error("bad slot clock", "err", err, "slot_id", slot.ID)
		writeError(w, http.StatusInternalServerError, codeInternal, "corrupt slot times")
		return
	}
	if !startAt.After(now) {
		writeError(w, http.StatusConflict, codeSlotExpired, "slot start time has passed")
		return
	}

	holder := req.CustomerID
	if holder == "" {
		holder = req.DeviceID
	}
	if slot.HeldAt(now) && (slot.ReservedBy == nil || *slot.ReservedBy != holder) {
		writeError(w, http.StatusConflict, codeReserved, "slot held by another customer")
		return
	}

	var customer model.Customer
	if req.CustomerID != "" {
		customer, err = h.customers.GetByID(ctx, tx, req.CustomerID)
		if errors.Is(err, storage.ErrCustomerNotFound) {
			writeError(w, http.StatusNotFound, codeCustomerNotFound, "customer not found")
			return
		}
	} else {
		customer, err = h.customers.UpsertDevice(ctx, tx, req.DeviceID, req.CustomerName, strings.TrimSpace(req.CustomerEmail), strings.TrimSpace(req.CustomerPhone))
	}
	if err != nil {
		h.logger.Error("customer resolution failed", "err", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to resolve customer")
		return
	}

	if customer.IsBlocked {
		writeError(w, http.StatusForbidden, codeBlocked, "customer is blocked from booking")
		return
	}
	blocked, err := h.customers.IsBlockedBy(ctx, tx, slot.BusinessID, customer.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "blocklist check failed")
		return
	}
	if blocked {
		writeError(w, http.StatusForbidden, codeBlocked, "customer is blocked by this business")
		return
	}

	// Per-day cap applies to authenticated customers only; device identities
	// are throttled at the edge instead.
	if req.CustomerID != "" {
		cnt, err := h.slots.CountBookedByCustomer(ctx, tx, slot.BusinessID, customer.ID, slot.SlotDate)
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternal, "booking limit check failed")
			return
		}
		if cnt >= h.maxPerDay {
			writeError(w, http.StatusConflict, codeOverBookingLimit, "daily booking limit reached for this business")
			return
		}
	}

	busy, err := h.appts.BusyIntervals(ctx, tx, customer.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "overlap check failed")
		return
	}
	if availability.OverlapsAny(startAt, endAt, busy) {
		writeError(w, http.StatusConflict, codeOverlap, "customer has an overlapping appointment")
		return
	}

	if err := h.slots.Claim(ctx, tx, slot.ID, customer.ID); err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to claim slot")
		return
	}

	appt := &model.Appointment{
		SlotID:     slot.ID,
		BusinessID: slot.BusinessID,
		CustomerID: customer.ID,
		ServiceID:  strings.TrimSpace(req.ServiceID),
		StartTime:  startAt,
		EndTime:    endAt,
		Status:     model.StatusPending,
		Notes:      strings.TrimSpace(req.Notes),
	}
	appointmentID, err := h.appts.Insert(ctx, tx, appt)
	if err != nil {
		h.logger.Error("appointment insert failed", "err", err, "slot_id", slot.ID)
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to create appointment")
		return
	}

	payload, err := json.Marshal(map[string]any{
		"appointment_id": appointmentID,
		"slot_id":        slot.ID,
		"business_id":    slot.BusinessID,
		"customer_id":    customer.ID,
		"service_id":     appt.ServiceID,
		"start_time":     startAt.UTC().Format(time.RFC3339),
		"end_time":       endAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to build event payload")
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appointmentID,
		EventType:     outbox.EventAppointmentBooked,
		Payload:       payload,
	}); err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to write outbox event")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to commit")
		return
	}

	writeJSON(w, http.StatusCreated, createBookingResponse{
		AppointmentID: appointmentID,
		CustomerID:    customer.ID,
		Status:        string(model.StatusPending),
	})
}

type cancelBookingRequest struct {
	AppointmentID string `json:"appointment_id"`
	CustomerID    string `json:"customer_id"`
	Reason        string `json:"reason"`
}

// FeePercent is only present on the request that performed the cancellation;
// an idempotent replay does not know the fee the original carried and omits
// the field rather than reporting a free cancel.
type cancelBookingResponse struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
	CancelledAt   string `json:"cancelled_at"`
	FeePercent    *int   `json:"fee_percent,omitempty"`
}

// Cancel is the customer-initiated path: policy-gated, fee-bearing, and
// counted by the auto-block tracker. The slot stays booked; only the owner
// reopens it.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req cancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid json body")
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	req.CustomerID = strings.TrimSpace(req.CustomerID)
	req.Reason = strings.TrimSpace(req.Reason)
	if req.AppointmentID == "" || req.CustomerID == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "appointment_id and customer_id required")
		return
	}

	ctx := r.Context()
	tx, err := h.appts.Begin(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "db error")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.appts.GetForUpdate(ctx, tx, req.AppointmentID)
	if errors.Is(err, storage.ErrAppointmentNotFound) {
		writeError(w, http.StatusNotFound, codeApptNotFound, "appointment not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to load appointment")
		return
	}
	if appt.CustomerID != req.CustomerID {
		// Not the caller's appointment; indistinguishable from missing.
		writeError(w, http.StatusNotFound, codeApptNotFound, "appointment not found")
		return
	}

	if appt.Status == model.StatusCancelled && appt.CancelledAt != nil {
		writeJSON(w, http.StatusOK, cancelBookingResponse{
			AppointmentID: appt.ID,
			Status:        string(model.StatusCancelled),
			CancelledAt:   appt.CancelledAt.UTC().Format(time.RFC3339),
		})
		return
	}

	pol, err := h.policies.PolicyFor(ctx, appt.BusinessID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "policy lookup failed")
		return
	}
	decision := policy.CanCancel(appt.StartTime, pol, time.Now())
	if !decision.Allowed {
		writeError(w, http.StatusConflict, codeCancelRefused, "appointment can no longer be cancelled")
		return
	}

	cancelledAt, err := h.appts.MarkCancelled(ctx, tx, appt.ID, req.Reason)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to cancel appointment")
		return
	}

	payload, err := json.Marshal(map[string]any{
		"appointment_id": appt.ID,
		"business_id":    appt.BusinessID,
		"customer_id":    appt.CustomerID,
		"start_time":     appt.StartTime.UTC().Format(time.RFC3339),
		"cancelled_at":   cancelledAt.UTC().Format(time.RFC3339),
		"fee_percent":    decision.FeePercent,
		"reason":         req.Reason,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to build event payload")
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     outbox.EventAppointmentCancelled,
		Payload:       payload,
	}); err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to write outbox event")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to commit")
		return
	}

	// The counter update runs after the commit, outside the cancellation
	// transaction. Concurrent cancellations can miscount by one; the fee
	// outcome has no bearing on it.
	h.recordCancellation(detachedContext(ctx), appt.CustomerID)

	fee := decision.FeePercent
	writeJSON(w, http.StatusOK, cancelBookingResponse{
		AppointmentID: appt.ID,
		Status:        string(model.StatusCancelled),
		CancelledAt:   cancelledAt.UTC().Format(time.RFC3339),
		FeePercent:    &fee,
	})
}

// detachedContext keeps request-scoped values (trace context) but sheds the
// client's cancellation signal. Post-commit work must not be skippable by a
// client dropping the connection right after the cancel commits.
func detachedContext(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

func (h *BookingHandler) recordCancellation(ctx context.Context, customerID string) {
	count, lastReset, err := h.customers.ReadCancellationState(ctx, customerID)
	if err != nil {
		h.logger.Error("cancellation counter read failed", "err", err, "customer_id", customerID)
		return
	}
	state, shouldBlock := abuse.Record(abuse.State{Count: count, LastReset: lastReset}, time.Now())
	if err := h.customers.WriteCancellationState(ctx, customerID, state.Count, state.LastReset, shouldBlock); err != nil {
		h.logger.Error("cancellation counter write failed", "err", err, "customer_id", customerID)
		return
	}
	if !shouldBlock {
		return
	}
	h.logger.Info("customer auto-blocked", "customer_id", customerID, "cancellations", state.Count)

	tx, err := h.appts.Begin(ctx)
	if err != nil {
		h.logger.Error("autoblock event tx failed", "err", err)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	payload, err := json.Marshal(map[string]any{
		"customer_id":   customerID,
		"cancellations": state.Count,
		"blocked_at":    time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "customer",
		AggregateID:   customerID,
		EventType:     outbox.EventCustomerAutoBlocked,
		Payload:       payload,
	}); err != nil {
		h.logger.Error("autoblock event write failed", "err", err)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		h.logger.Error("autoblock event commit failed", "err", err)
	}
}

type ownerCancelRequest struct {
	BusinessID    string `json:"business_id"`
	AppointmentID string `json:"appointment_id"`
	Reason        string `json:"reason"`
}

// OwnerCancel voids a booking on the business's behalf: no policy, no fee,
// no counter, and the slot goes straight back to available through its
// foreign key.
func (h *BookingHandler) OwnerCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ownerCancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid json body")
		return
	}
	req.BusinessID = strings.TrimSpace(req.BusinessID)
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.BusinessID == "" || req.AppointmentID == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "business_id and appointment_id required")
		return
	}
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil && claims.BusinessID != req.BusinessID {
		writeError(w, http.StatusForbidden, codeBlocked, "token does not match business")
		return
	}

	ctx := r.Context()
	tx, err := h.appts.Begin(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "db error")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.appts.GetForUpdate(ctx, tx, req.AppointmentID)
	if errors.Is(err, storage.ErrAppointmentNotFound) || (err == nil && appt.BusinessID != req.BusinessID) {
		writeError(w, http.StatusNotFound, codeApptNotFound, "appointment not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to load appointment")
		return
	}

	if appt.Status == model.StatusCancelled && appt.CancelledAt != nil {
		writeJSON(w, http.StatusOK, cancelBookingResponse{
			AppointmentID: appt.ID,
			Status:        string(model.StatusCancelled),
			CancelledAt:   appt.CancelledAt.UTC().Format(time.RFC3339),
		})
		return
	}

	reason := req.Reason
	if reason == "" {
		reason = "cancelled by business"
	}
	cancelledAt, err := h.appts.MarkCancelled(ctx, tx, appt.ID, reason)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to cancel appointment")
		return
	}
	if err := h.slots.Free(ctx, tx, appt.SlotID); err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to free slot")
		return
	}

	payload, err := json.Marshal(map[string]any{
		"appointment_id": appt.ID,
		"business_id":    appt.BusinessID,
		"customer_id":    appt.CustomerID,
		"slot_id":        appt.SlotID,
		"cancelled_at":   cancelledAt.UTC().Format(time.RFC3339),
		"reason":         reason,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to build event payload")
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     outbox.EventAppointmentOwnerCancelled,
		Payload:       payload,
	}); err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to write outbox event")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to commit")
		return
	}
	writeJSON(w, http.StatusOK, cancelBookingResponse{
		AppointmentID: appt.ID,
		Status:        string(model.StatusCancelled),
		CancelledAt:   cancelledAt.UTC().Format(time.RFC3339),
	})
}

type updateStatusRequest struct {
	BusinessID    string `json:"business_id"`
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
}

// UpdateStatus is the owner approve/reject action on a pending appointment.
// Rejection frees the slot; approval pins it.
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid json body")
		return
	}
	req.BusinessID = strings.TrimSpace(req.BusinessID)
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.BusinessID == "" || req.AppointmentID == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "business_id and appointment_id required")
		return
	}
	status, err := model.ParseAppointmentStatus(strings.TrimSpace(req.Status))
	if err != nil || status == model.StatusPending {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "status must be confirmed or cancelled")
		return
	}
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil && claims.BusinessID != req.BusinessID {
		writeError(w, http.StatusForbidden, codeBlocked, "token does not match business")
		return
	}

	ctx := r.Context()
	tx, err := h.appts.Begin(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "db error")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.appts.GetForUpdate(ctx, tx, req.AppointmentID)
	if errors.Is(err, storage.ErrAppointmentNotFound) || (err == nil && appt.BusinessID != req.BusinessID) {
		writeError(w, http.StatusNotFound, codeApptNotFound, "appointment not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to load appointment")
		return
	}
	if appt.Status != model.StatusPending {
		writeError(w, http.StatusConflict, codeInvalidStatus, "only pending appointments can be approved or rejected")
		return
	}

	if status == model.StatusCancelled {
		if _, err := h.appts.MarkCancelled(ctx, tx, appt.ID, "rejected by business"); err != nil {
			writeError(w, http.StatusInternalServerError, codeInternal, "failed to update appointment")
			return
		}
		if err := h.slots.Free(ctx, tx, appt.SlotID); err != nil {
			writeError(w, http.StatusInternalServerError, codeInternal, "failed to free slot")
			return
		}
	} else {
		if err := h.appts.SetStatus(ctx, tx, appt.ID, status); err != nil {
			writeError(w, http.StatusInternalServerError, codeInternal, "failed to update appointment")
			return
		}
	}

	payload, err := json.Marshal(map[string]any{
		"appointment_id": appt.ID,
		"business_id":    appt.BusinessID,
		"customer_id":    appt.CustomerID,
		"status":         string(status),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to build event payload")
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     outbox.EventAppointmentStatusChanged,
		Payload:       payload,
	}); err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to write outbox event")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to commit")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"appointment_id": appt.ID,
		"status":         string(status),
	})
}

type listAppointmentItem struct {
	AppointmentID string `json:"appointment_id"`
	SlotID        string `json:"slot_id"`
	CustomerID    string `json:"customer_id"`
	ServiceID     string `json:"service_id,omitempty"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Status        string `json:"status"`
	CancelledAt   string `json:"cancelled_at,omitempty"`
	CreatedAt     string `json:"created_at"`
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	businessID := strings.TrimSpace(r.URL.Query().Get("business_id"))
	if businessID == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "business_id required")
		return
	}
	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	appts, err := h.appts.ListByBusiness(r.Context(), businessID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to list appointments")
		return
	}

	items := make([]listAppointmentItem, 0, len(appts))
	for _, appt := range appts {
		item := listAppointmentItem{
			AppointmentID: appt.ID,
			SlotID:        appt.SlotID,
			CustomerID:    appt.CustomerID,
			ServiceID:     appt.ServiceID,
			StartTime:     appt.StartTime.UTC().Format(time.RFC3339),
			EndTime:       appt.EndTime.UTC().Format(time.RFC3339),
			Status:        string(appt.Status),
			CreatedAt:     appt.CreatedAt.UTC().Format(time.RFC3339),
		}
		if appt.CancelledAt != nil {
			item.CancelledAt = appt.CancelledAt.UTC().Format(time.RFC3339)
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, items)
}
