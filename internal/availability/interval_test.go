package availability

import (
	"errors"
	"testing"
	"time"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 12, hour, min, 0, 0, time.UTC)
}

func TestOverlaps_HalfOpen(t *testing.T) {
	booked := Interval{Start: at(10, 0), End: at(10, 30)}

	if !booked.Overlaps(Interval{Start: at(10, 15), End: at(10, 45)}) {
		t.Fatal("[10:00,10:30) should overlap [10:15,10:45)")
	}
	if booked.Overlaps(Interval{Start: at(10, 30), End: at(11, 0)}) {
		t.Fatal("touching intervals must not overlap")
	}
	if booked.Overlaps(Interval{Start: at(9, 30), End: at(10, 0)}) {
		t.Fatal("[9:30,10:00) touches but must not overlap")
	}
	if !booked.Overlaps(Interval{Start: at(9, 0), End: at(12, 0)}) {
		t.Fatal("containing interval should overlap")
	}
}

func TestOverlapsAny(t *testing.T) {
	busy := []Interval{
		{Start: at(9, 0), End: at(9, 30)},
		{Start: at(14, 0), End: at(15, 0)},
	}
	if OverlapsAny(at(9, 30), at(10, 0), busy) {
		t.Fatal("adjacent interval should not match")
	}
	if !OverlapsAny(at(14, 30), at(14, 45), busy) {
		t.Fatal("contained interval should match")
	}
}

func TestSlotTimes_Basic(t *testing.T) {
	slots, err := SlotTimes("08:00", "09:00", 30*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if slots[0].Start != "08:00" || slots[0].End != "08:30" {
		t.Fatalf("unexpected first slot: %+v", slots[0])
	}
	if slots[1].Start != "08:30" || slots[1].End != "09:00" {
		t.Fatalf("unexpected second slot: %+v", slots[1])
	}
}

func TestSlotTimes_DiscardsTrailingPartial(t *testing.T) {
	slots, err := SlotTimes("08:00", "09:10", 30*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected trailing 10 minutes discarded, got %d slots", len(slots))
	}
}

func TestSlotTimes_Invalid(t *testing.T) {
	if _, err := SlotTimes("09:00", "08:00", 30*time.Minute); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange for reversed range, got %v", err)
	}
	if _, err := SlotTimes("08:00", "08:00", 30*time.Minute); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange for empty range, got %v", err)
	}
	if _, err := SlotTimes("8am", "09:00", 30*time.Minute); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange for bad clock, got %v", err)
	}
	if _, err := SlotTimes("08:00", "09:00", 0); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration for zero duration, got %v", err)
	}
	if _, err := SlotTimes("08:00", "18:00", 5*time.Hour); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration above the cap, got %v", err)
	}
}
