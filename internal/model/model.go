package model

import (
	"fmt"
	"time"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// ParseAppointmentStatus validates status strings at the API boundary.
func ParseAppointmentStatus(raw string) (AppointmentStatus, error) {
	switch AppointmentStatus(raw) {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return AppointmentStatus(raw), nil
	default:
		return "", fmt.Errorf("unknown appointment status %q", raw)
	}
}

// TimeSlot is the per-business availability ledger row. Start and end are
// wall-clock "HH:MM" strings on SlotDate in the business-local zone.
// ReservedBy/ReservedUntil are meaningful only while IsBooked is false; a
// booked slot never carries a hold. A booked slot with a nil BookedBy is an
// owner-blocked slot.
type TimeSlot struct {
	ID            string
	BusinessID    string
	SlotDate      time.Time
	StartTime     string
	EndTime       string
	IsBooked      bool
	BookedBy      *string
	ReservedBy    *string
	ReservedUntil *time.Time
	CreatedAt     time.Time
}

// StartAt materializes the slot start as an absolute time in loc.
func (s TimeSlot) StartAt(loc *time.Location) (time.Time, error) {
	return CombineDateClock(s.SlotDate, s.StartTime, loc)
}

// EndAt materializes the slot end as an absolute time in loc.
func (s TimeSlot) EndAt(loc *time.Location) (time.Time, error) {
	return CombineDateClock(s.SlotDate, s.EndTime, loc)
}

// HeldAt reports whether the slot carries an unexpired hold. Expiry is
// evaluated lazily wherever a slot is read; there is no sweeper.
func (s TimeSlot) HeldAt(now time.Time) bool {
	return s.ReservedUntil != nil && s.ReservedUntil.After(now)
}

// CombineDateClock joins a calendar date and an "HH:MM" wall-clock string
// into an absolute time in loc.
func CombineDateClock(date time.Time, clock string, loc *time.Location) (time.Time, error) {
	c, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid clock %q: %w", clock, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour(), c.Minute(), 0, 0, loc), nil
}

// Appointment is the business-facing record created in lockstep with
// claiming a slot. SlotID is a real foreign key back to the claimed slot.
type Appointment struct {
	ID           string
	SlotID       string
	BusinessID   string
	CustomerID   string
	ServiceID    string
	StartTime    time.Time
	EndTime      time.Time
	Status       AppointmentStatus
	Notes        string
	CancelledAt  *time.Time
	CancelReason string
	CreatedAt    time.Time
}

// Customer is either an authenticated user or an anonymous device identity
// materialized on first public booking. Cancellation counters feed the
// auto-block tracker.
type Customer struct {
	ID                    string
	DeviceID              string
	Name                  string
	Email                 string
	Phone                 string
	CancellationCount     int
	LastCancellationReset time.Time
	IsBlocked             bool
	CreatedAt             time.Time
}

// BlockedCustomer is a per-business block created by an owner.
type BlockedCustomer struct {
	BusinessID string
	CustomerID string
	Reason     string
	CreatedBy  string
	CreatedAt  time.Time
}
