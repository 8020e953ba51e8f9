package handlers

import (
	"encoding/json"
	"net/http"
)

// Error codes returned to clients. Booking and reservation failures are
// discriminated results, not opaque 500s.
const (
	codeInvalidRequest   = "invalid_request"
	codeSlotNotFound     = "slot_not_found"
	codeAlreadyBooked    = "already_booked"
	codeReserved         = "reserved"
	codeSlotExpired      = "slot_expired"
	codeBlocked          = "blocked"
	codeOverBookingLimit = "over_booking_limit"
	codeOverlap          = "overlap"
	codeApptNotFound     = "appointment_not_found"
	codeCustomerNotFound = "customer_not_found"
	codeCancelRefused    = "cancel_window_passed"
	codeInvalidStatus    = "invalid_status_transition"
	codeInternal         = "internal_error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}
