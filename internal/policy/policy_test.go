package policy

import (
	"testing"
	"time"
)

func decisionAt(t *testing.T, name Name, hoursUntil float64) Decision {
	t.Helper()
	p, ok := ByName(name)
	if !ok {
		t.Fatalf("unknown policy %q", name)
	}
	now := time.Date(2026, 3, 12, 12, 0, 0, 0, time.UTC)
	start := now.Add(time.Duration(hoursUntil * float64(time.Hour)))
	return CanCancel(start, p, now)
}

func TestCanCancel_FeeTable(t *testing.T) {
	d := decisionAt(t, Flexible, 3)
	if !d.Allowed || d.FeePercent != 0 {
		t.Fatalf("flexible at 3h: want free cancel, got %+v", d)
	}

	d = decisionAt(t, Moderate, 10)
	if !d.Allowed || d.FeePercent != 50 {
		t.Fatalf("moderate at 10h: want 50%% fee, got %+v", d)
	}

	d = decisionAt(t, Strict, -1)
	if d.Allowed {
		t.Fatalf("strict at -1h: want cancel refused, got %+v", d)
	}
}

func TestCanCancel_ThresholdBoundary(t *testing.T) {
	d := decisionAt(t, Moderate, 24)
	if !d.Allowed || d.FeePercent != 0 {
		t.Fatalf("exactly at threshold should be free, got %+v", d)
	}

	d = decisionAt(t, Strict, 47)
	if !d.Allowed || d.FeePercent != 100 {
		t.Fatalf("inside strict window should carry full fee, got %+v", d)
	}

	d = decisionAt(t, Flexible, 0)
	if !d.Allowed || d.FeePercent != 0 {
		t.Fatalf("zero hours until start is still cancellable, got %+v", d)
	}
}

func TestParseName(t *testing.T) {
	if _, err := ParseName("moderate"); err != nil {
		t.Fatalf("moderate should parse: %v", err)
	}
	if _, err := ParseName("lenient"); err == nil {
		t.Fatal("unknown policy should fail to parse")
	}
}
