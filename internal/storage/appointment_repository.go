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

type AppointmentRepository struct {
	pool *db.Pool
}

func NewAppointmentRepository(pool *db.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

func (r *AppointmentRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *AppointmentRepository) Insert(ctx context.Context, tx pgx.Tx, appt *model.Appointment) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
		INSERT INTO appointments
			(slot_id, business_id, customer_id, service_id, start_time, end_time, status, notes)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8)
		RETURNING id::text
	`, appt.SlotID, appt.BusinessID, appt.CustomerID, appt.ServiceID,
		appt.StartTime, appt.EndTime, string(appt.Status), appt.Notes).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *AppointmentRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, appointmentID string) (model.Appointment, error) {
	var appt model.Appointment
	var status string
	err := tx.QueryRow(ctx, `
		SELECT id::text, slot_id::text, business_id::text, customer_id::text,
			COALESCE(service_id::text, ''), start_time, end_time, status,
			COALESCE(notes, ''), cancelled_at, COALESCE(cancellation_reason, ''), created_at
		FROM appointments
		WHERE id = $1
		FOR UPDATE
	`, appointmentID).Scan(
		&appt.ID,
		&appt.SlotID,
		&appt.BusinessID,
		&appt.CustomerID,
		&appt.ServiceID,
		&appt.StartTime,
		&appt.EndTime,
		&status,
		&appt.Notes,
		&appt.CancelledAt,
		&appt.CancelReason,
		&appt.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Appointment{}, ErrAppointmentNotFound
	}
	if err != nil {
		return model.Appointment{}, err
	}
	appt.Status = model.AppointmentStatus(status)
	return appt, nil
}

func (r *AppointmentRepository) MarkCancelled(ctx context.Context, tx pgx.Tx, appointmentID, reason string) (time.Time, error) {
	var cancelledAt time.Time
	err := tx.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'cancelled',
			cancelled_at = now(),
			cancellation_reason = $2
		WHERE id = $1
		RETURNING cancelled_at
	`, appointmentID, reason).Scan(&cancelledAt)
	return cancelledAt, err
}

func (r *AppointmentRepository) SetStatus(ctx context.Context, tx pgx.Tx, appointmentID string, status model.AppointmentStatus) error {
	_, err := tx.Exec(ctx, `
		UPDATE appointments
		SET status = $2
		WHERE id = $1
	`, appointmentID, string(status))
	return err
}

// BusyIntervals returns the customer's pending and confirmed appointment
// intervals across all businesses. The overlap decision itself lives in the
// availability package, not in SQL, so there is exactly one predicate. The
// read set is not locked; the booking transaction as a whole is the
// serialization point.
func (r *AppointmentRepository) BusyIntervals(ctx context.Context, tx pgx.Tx, customerID string) ([]availability.Interval, error) {
	rows, err := tx.Query(ctx, `
		SELECT start_time, end_time
		FROM appointments
		WHERE customer_id = $1
			AND status IN ('pending', 'confirmed')
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var busy []availability.Interval
	for rows.Next() {
		var iv availability.Interval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, err
		}
		busy = append(busy, iv)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return busy, nil
}

func (r *AppointmentRepository) ListByBusiness(ctx context.Context, businessID string, limit int) ([]model.Appointment, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, slot_id::text, business_id::text, customer_id::text,
			COALESCE(service_id::text, ''), start_time, end_time, status,
			COALESCE(notes, ''), cancelled_at, COALESCE(cancellation_reason, ''), created_at
		FROM appointments
		WHERE business_id = $1
		ORDER BY start_time DESC
		LIMIT $2
	`, businessID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		var appt model.Appointment
		var status string
		if err := rows.Scan(
			&appt.ID,
			&appt.SlotID,
			&appt.BusinessID,
			&appt.CustomerID,
			&appt.ServiceID,
			&appt.StartTime,
			&appt.EndTime,
			&status,
			&appt.Notes,
			&appt.CancelledAt,
			&appt.CancelReason,
			&appt.CreatedAt,
		); err != nil {
			return nil, err
		}
		appt.Status = model.AppointmentStatus(status)
		appts = append(appts, appt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}
