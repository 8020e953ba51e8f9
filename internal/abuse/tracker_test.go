package abuse

import (
	"testing"
	"time"
)

func TestRecord_ThirdCancellationBlocks(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := State{Count: 0, LastReset: now}

	s, blocked := Record(s, now.Add(24*time.Hour))
	if blocked || s.Count != 1 {
		t.Fatalf("first cancellation: want count 1 unblocked, got %+v blocked=%v", s, blocked)
	}
	s, blocked = Record(s, now.Add(5*24*time.Hour))
	if blocked || s.Count != 2 {
		t.Fatalf("second cancellation: want count 2 unblocked, got %+v blocked=%v", s, blocked)
	}
	s, blocked = Record(s, now.Add(20*24*time.Hour))
	if !blocked || s.Count != 3 {
		t.Fatalf("third cancellation inside window must block, got %+v blocked=%v", s, blocked)
	}
}

func TestRecord_WindowElapsedResetsToOne(t *testing.T) {
	reset := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := State{Count: 2, LastReset: reset}

	now := reset.Add(ResetWindow)
	s, blocked := Record(s, now)
	if blocked {
		t.Fatal("reset cancellation must not block")
	}
	if s.Count != 1 {
		t.Fatalf("want count reset to 1, got %d", s.Count)
	}
	if !s.LastReset.Equal(now) {
		t.Fatalf("want LastReset moved to now, got %s", s.LastReset)
	}
}

func TestRecord_JustInsideWindowIncrements(t *testing.T) {
	reset := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := State{Count: 1, LastReset: reset}

	s, _ = Record(s, reset.Add(ResetWindow-time.Minute))
	if s.Count != 2 {
		t.Fatalf("want increment inside window, got %d", s.Count)
	}
	if !s.LastReset.Equal(reset) {
		t.Fatal("LastReset must not move on increment")
	}
}
