package model

import (
	"testing"
	"time"
)

func TestHeldAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	var s TimeSlot
	if s.HeldAt(now) {
		t.Fatal("slot without a hold must not read as held")
	}

	future := now.Add(2 * time.Minute)
	s.ReservedUntil = &future
	if !s.HeldAt(now) {
		t.Fatal("slot with an unexpired hold must read as held")
	}
	if !s.HeldAt(future.Add(-time.Nanosecond)) {
		t.Fatal("hold must last until the expiry instant")
	}

	// Expiry is the timestamp comparison itself: at exactly reserved_until
	// the hold is gone, with no release call and no sweeper.
	if s.HeldAt(future) {
		t.Fatal("hold must expire at exactly reserved_until")
	}
	if s.HeldAt(future.Add(time.Second)) {
		t.Fatal("expired hold must read as available")
	}
}

func TestCombineDateClock(t *testing.T) {
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	got, err := CombineDateClock(date, "09:30", time.UTC)
	if err != nil {
		t.Fatalf("CombineDateClock failed: %v", err)
	}
	want := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if _, err := CombineDateClock(date, "9:30pm", time.UTC); err == nil {
		t.Fatal("expected error for malformed clock")
	}
}
