package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/md-rashed-zaman/bookable/libs/httpx"
)

func testBookingHandler() *BookingHandler {
	return NewBookingHandler(nil, nil, nil, nil, nil, slog.New(slog.DiscardHandler), time.UTC, 3)
}

func TestCreateBookingRejectsBadMethod(t *testing.T) {
	h := testBookingHandler()
	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/v1/public/book", nil)
	rw := httptest.NewRecorder()
	h.Create(rw, req)
	if rw.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rw.Code)
	}
}

func TestCreateBookingRequiresSlotID(t *testing.T) {
	h := testBookingHandler()
	body := strings.NewReader(`{"customer_id":"cust-1"}`)
	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/v1/public/book", body)
	rw := httptest.NewRecorder()
	h.Create(rw, req)
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rw.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	if resp["error"] != "invalid_request" {
		t.Fatalf("expected invalid_request, got %q", resp["error"])
	}
}

func TestCreateBookingRejectsBothIdentities(t *testing.T) {
	h := testBookingHandler()
	body := strings.NewReader(`{"slot_id":"slot-1","customer_id":"cust-1","device_id":"dev-1"}`)
	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/v1/public/book", body)
	rw := httptest.NewRecorder()
	h.Create(rw, req)
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}
}

func TestCreateBookingRejectsNeitherIdentity(t *testing.T) {
	h := testBookingHandler()
	body := strings.NewReader(`{"slot_id":"slot-1"}`)
	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/v1/public/book", body)
	rw := httptest.NewRecorder()
	h.Create(rw, req)
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}
}

func TestCreateBookingDeviceNeedsName(t *testing.T) {
	h := testBookingHandler()
	body := strings.NewReader(`{"slot_id":"slot-1","device_id":"dev-1"}`)
	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/v1/public/book", body)
	rw := httptest.NewRecorder()
	h.Create(rw, req)
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}
}

func TestCancelBookingRequiresIDs(t *testing.T) {
	h := testBookingHandler()
	body := strings.NewReader(`{"appointment_id":"appt-1"}`)
	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/v1/appointments/cancel", body)
	rw := httptest.NewRecorder()
	h.Cancel(rw, req)
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}
}

func TestCancelBookingRejectsBadJSON(t *testing.T) {
	h := testBookingHandler()
	body := strings.NewReader(`not-json`)
	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/v1/appointments/cancel", body)
	rw := httptest.NewRecorder()
	h.Cancel(rw, req)
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}
}

func TestUpdateStatusRejectsPending(t *testing.T) {
	h := testBookingHandler()
	body := strings.NewReader(`{"business_id":"biz-1","appointment_id":"appt-1","status":"pending"}`)
	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/v1/appointments/status", body)
	rw := httptest.NewRecorder()
	h.UpdateStatus(rw, req)
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	h := testBookingHandler()
	body := strings.NewReader(`{"business_id":"biz-1","appointment_id":"appt-1","status":"done"}`)
	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/v1/appointments/status", body)
	rw := httptest.NewRecorder()
	h.UpdateStatus(rw, req)
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}
}

func TestListAppointmentsRequiresBusinessID(t *testing.T) {
	h := testBookingHandler()
	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/v1/appointments", nil)
	rw := httptest.NewRecorder()
	h.List(rw, req)
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}
}

type testCtxKey struct{}

func TestDetachedContextSurvivesClientDisconnect(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	parent = context.WithValue(parent, testCtxKey{}, "marker")
	detached := detachedContext(parent)

	cancel()
	if parent.Err() == nil {
		t.Fatal("parent should be cancelled")
	}
	if detached.Err() != nil {
		t.Fatalf("detached context must outlive the client disconnect: %v", detached.Err())
	}
	if detached.Value(testCtxKey{}) != "marker" {
		t.Fatal("detached context must keep request-scoped values")
	}
}

func TestDetachedContextKeepsRequestID(t *testing.T) {
	var detached context.Context
	h := httpx.WithRequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		detached = detachedContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/v1/public/cancel", nil)
	req.Header.Set(httpx.RequestIDHeader, "req-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got := httpx.RequestIDFromContext(detached); got != "req-42" {
		t.Fatalf("expected request id to survive detachment, got %q", got)
	}
}

func TestCancelResponseOmitsFeeOnReplay(t *testing.T) {
	fee := 50
	fresh, err := json.Marshal(cancelBookingResponse{
		AppointmentID: "appt-1",
		Status:        "cancelled",
		CancelledAt:   "2026-03-01T10:00:00Z",
		FeePercent:    &fee,
	})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(fresh), `"fee_percent":50`) {
		t.Fatalf("fresh cancellation must carry the fee, got %s", fresh)
	}

	replay, err := json.Marshal(cancelBookingResponse{
		AppointmentID: "appt-1",
		Status:        "cancelled",
		CancelledAt:   "2026-03-01T10:00:00Z",
	})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(replay), "fee_percent") {
		t.Fatalf("replay must not report a fee it does not know, got %s", replay)
	}
}

func TestOwnerCancelRequiresIDs(t *testing.T) {
	h := testBookingHandler()
	body := strings.NewReader(`{"business_id":"biz-1"}`)
	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/v1/appointments/owner-cancel", body)
	rw := httptest.NewRecorder()
	h.OwnerCancel(rw, req)
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}
}
