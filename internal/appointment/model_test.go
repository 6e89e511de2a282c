package appointment

import (
	"errors"
	"testing"
	"time"
)

func TestStatusLifecycle(t *testing.T) {
	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusRequested, StatusConfirmed, true},
		{StatusRequested, StatusCancelled, true},
		{StatusRequested, StatusCompleted, true}, // terminal guard only, no step-wise graph
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusRequested, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusConfirmed, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("confirmed")
	if err != nil || st != StatusConfirmed {
		t.Fatalf("ParseStatus(confirmed) = %v, %v", st, err)
	}

	if _, err := ParseStatus("postponed"); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown status should be ErrValidation, got %v", err)
	}
}

func TestOverlapsHalfOpen(t *testing.T) {
	base := time.Date(2026, time.March, 10, 10, 0, 0, 0, time.UTC)
	appt := &Appointment{
		StartTime: base,
		EndTime:   base.Add(time.Hour),
		Status:    StatusConfirmed,
	}

	if !appt.Overlaps(base.Add(30*time.Minute), base.Add(90*time.Minute)) {
		t.Error("intersecting window should overlap")
	}
	if appt.Overlaps(base.Add(time.Hour), base.Add(2*time.Hour)) {
		t.Error("window starting at the end boundary must not overlap")
	}
	if appt.Overlaps(base.Add(-time.Hour), base) {
		t.Error("window ending at the start boundary must not overlap")
	}

	appt.Status = StatusCancelled
	if appt.Overlaps(base, base.Add(time.Hour)) {
		t.Error("cancelled appointments never overlap")
	}
}
