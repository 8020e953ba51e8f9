package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testSlotHandler() *SlotHandler {
	return NewSlotHandler(nil, slog.New(slog.DiscardHandler), time.UTC, 2*time.Minute)
}

func TestGenerateSlotsRejectsBadMethod(t *testing.T) {
	h := testSlotHandler()
	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/v1/slots/generate", nil)
	rw := httptest.NewRecorder()
	h.Generate(rw, req)
	if rw.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rw.Code)
	}
}

func TestGenerateSlotsRequiresBusinessID(t *testing.T) {
	h := testSlotHandler()
	body := strings.NewReader(`{"date":"2026-03-01","start_hour":"09:00","end_hour":"17:00","duration_minutes":30}`)
	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/v1/slots/generate", body)
	rw := httptest.NewRecorder()
	h.Generate(rw, req)
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}
}

func TestGenerateSlotsRejectsInvalidDate(t *testing.T) {
	h := testSlotHandler()
	body := strings.NewReader(`{"business_id":"biz-1","date":"03/01/2026","start_hour":"09:00","end_hour":"17:00","duration_minutes":30}`)
	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/v1/slots/generate", body)
	rw := httptest.NewRecorder()
	h.Generate(rw, req)
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}
}

func TestGenerateSlotsRejectsInvertedRange(t *testing.T) {
	h := testSlotHandler()
	body := strings.NewReader(`{"business_id":"biz-1","date":"2026-03-01","start_hour":"17:00","end_hour":"09:00","duration_minutes":30}`)
	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/v1/slots/generate", body)
	rw := httptest.NewRecorder()
	h.Generate(rw, req)
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

func TestGenerateSlotsRejectsZeroDuration(t *testing.T) {
	h := testSlotHandler()
	body := strings.NewReader(`{"business_id":"biz-1","date":"2026-03-01","start_hour":"09:00","end_hour":"17:00","duration_minutes":0}`)
	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/v1/slots/generate", body)
	rw := httptest.NewRecorder()
	h.Generate(rw, req)
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}
}

func TestReserveSlotRequiresHolder(t *testing.T) {
	h := testSlotHandler()
	body := strings.NewReader(`{"slot_id":"slot-1"}`)
	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/v1/slots/reserve", body)
	rw := httptest.NewRecorder()
	h.Reserve(rw, req)
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}
}

func TestReleaseSlotRequiresSlotID(t *testing.T) {
	h := testSlotHandler()
	body := strings.NewReader(`{}`)
	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/v1/slots/release", body)
	rw := httptest.NewRecorder()
	h.Release(rw, req)
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}
}

func TestListSlotsRequiresQueryParams(t *testing.T) {
	h := testSlotHandler()
	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/v1/slots?business_id=biz-1", nil)
	rw := httptest.NewRecorder()
	h.List(rw, req)
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}
}

func TestBlockSlotRejectsBadMethod(t *testing.T) {
	h := testSlotHandler()
	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/v1/slots/block", nil)
	rw := httptest.NewRecorder()
	h.Block(rw, req)
	if rw.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rw.Code)
	}
}
