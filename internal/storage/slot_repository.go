package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/bookable/internal/availability"
	"github.com/md-rashed-zaman/bookable/internal/model"
	"github.com/md-rashed-zaman/bookable/libs/db"
)

// SlotRepository owns the time_slots ledger. Every mutation that decides
// availability runs inside a caller-held transaction with the row locked;
// hold expiry is never swept, only compared against now at read time.
type SlotRepository struct {
	pool *db.Pool
}

func NewSlotRepository(pool *db.Pool) *SlotRepository {
	return &SlotRepository{pool: pool}
}

func (r *SlotRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// InsertBatch writes generated slots for one business day. Re-running with
// identical parameters is a no-op per slot: the unique
// (business_id, slot_date, start_time) key skips existing rows. Returns the
// number of rows actually created.
func (r *SlotRepository) InsertBatch(ctx context.Context, tx pgx.Tx, businessID string, date time.Time, times []availability.SlotTime) (int, error) {
	created := 0
	for _, st := range times {
		tag, err := tx.Exec(ctx, `
			INSERT INTO time_slots (business_id, slot_date, start_time, end_time)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (business_id, slot_date, start_time) DO NOTHING
		`, businessID, date, st.Start, st.End)
		if err != nil {
			return 0, err
		}
		created += int(tag.RowsAffected())
	}
	return created, nil
}

// GetForUpdate loads and row-locks a slot for the duration of tx.
func (r *SlotRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, slotID string) (model.TimeSlot, error) {
	var s model.TimeSlot
	err := tx.QueryRow(ctx, `
		SELECT id::text, business_id::text, slot_date, start_time, end_time,
			is_booked, booked_by::text, reserved_by, reserved_until, created_at
		FROM time_slots
		WHERE id = $1
		FOR UPDATE
	`, slotID).Scan(
		&s.ID,
		&s.BusinessID,
		&s.SlotDate,
		&s.StartTime,
		&s.EndTime,
		&s.IsBooked,
		&s.BookedBy,
		&s.ReservedBy,
		&s.ReservedUntil,
		&s.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.TimeSlot{}, ErrSlotNotFound
	}
	if err != nil {
		return model.TimeSlot{}, err
	}
	return s, nil
}

// SetHold places or refreshes a reservation on a slot the caller has locked
// and validated.
func (r *SlotRepository) SetHold(ctx context.Context, tx pgx.Tx, slotID, holderID string, until time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE time_slots
		SET reserved_by = $2, reserved_until = $3
		WHERE id = $1
	`, slotID, holderID, until)
	return err
}

// ClearHold releases a reservation unconditionally. Idempotent: clearing a
// slot without a hold, or a missing slot, is not an error. Client-side
// release calls are an optimization only; the TTL comparison at read time is
// the correctness guarantee.
func (r *SlotRepository) ClearHold(ctx context.Context, slotID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE time_slots
		SET reserved_by = NULL, reserved_until = NULL
		WHERE id = $1
	`, slotID)
	return err
}

// Claim converts a locked, validated slot into a booked one, dropping any
// hold fields in the same statement.
func (r *SlotRepository) Claim(ctx context.Context, tx pgx.Tx, slotID, customerID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE time_slots
		SET is_booked = TRUE, booked_by = $2, reserved_by = NULL, reserved_until = NULL
		WHERE id = $1
	`, slotID, customerID)
	return err
}

// Free returns a slot to the available pool with all claim fields cleared.
func (r *SlotRepository) Free(ctx context.Context, tx pgx.Tx, slotID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE time_slots
		SET is_booked = FALSE, booked_by = NULL, reserved_by = NULL, reserved_until = NULL
		WHERE id = $1
	`, slotID)
	return err
}

// Block marks a slot unavailable on the owner's behalf. A blocked slot is
// booked with no customer attached.
func (r *SlotRepository) Block(ctx context.Context, tx pgx.Tx, slotID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE time_slots
		SET is_booked = TRUE, booked_by = NULL, reserved_by = NULL, reserved_until = NULL
		WHERE id = $1
	`, slotID)
	return err
}

// CountBookedByCustomer counts a customer's booked slots for one business
// day, for the per-day booking cap.
func (r *SlotRepository) CountBookedByCustomer(ctx context.Context, tx pgx.Tx, businessID, customerID string, date time.Time) (int, error) {
	var n int
	err := tx.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM time_slots
		WHERE business_id = $1 AND booked_by = $2 AND slot_date = $3 AND is_booked
	`, businessID, customerID, date).Scan(&n)
	return n, err
}

// ListForDay returns all slots for a business day ordered by start time.
// Hold expiry is left to the caller to evaluate against now.
func (r *SlotRepository) ListForDay(ctx context.Context, businessID string, date time.Time) ([]model.TimeSlot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, business_id::text, slot_date, start_time, end_time,
			is_booked, booked_by::text, reserved_by, reserved_until, created_at
		FROM time_slots
		WHERE business_id = $1 AND slot_date = $2
		ORDER BY start_time ASC
	`, businessID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []model.TimeSlot
	for rows.Next() {
		var s model.TimeSlot
		if err := rows.Scan(
			&s.ID,
			&s.BusinessID,
			&s.SlotDate,
			&s.StartTime,
			&s.EndTime,
			&s.IsBooked,
			&s.BookedBy,
			&s.ReservedBy,
			&s.ReservedUntil,
			&s.CreatedAt,
		); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return slots, nil
}
