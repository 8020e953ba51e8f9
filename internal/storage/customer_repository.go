package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/bookable/internal/model"
	"github.com/md-rashed-zaman/bookable/libs/db"
	"golang.org/x/crypto/bcrypt"
)

type CustomerRepository struct {
	pool *db.Pool
}

func NewCustomerRepository(pool *db.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

const customerColumns = `id::text, COALESCE(device_id, ''), COALESCE(name, ''),
	COALESCE(email, ''), COALESCE(phone, ''), cancellation_count,
	last_cancellation_reset, is_blocked, created_at`

func scanCustomer(row pgx.Row) (model.Customer, error) {
	var c model.Customer
	err := row.Scan(
		&c.ID,
		&c.DeviceID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.CancellationCount,
		&c.LastCancellationReset,
		&c.IsBlocked,
		&c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Customer{}, ErrCustomerNotFound
	}
	if err != nil {
		return model.Customer{}, err
	}
	return c, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, tx pgx.Tx, customerID string) (model.Customer, error) {
	return scanCustomer(tx.QueryRow(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE id = $1
	`, customerID))
}

// UpsertDevice materializes an anonymous device customer on first use and
// refreshes contact details on every subsequent booking. The stored
// credential is a bcrypt digest of the device identifier; there is no
// password flow for device customers.
func (r *CustomerRepository) UpsertDevice(ctx context.Context, tx pgx.Tx, deviceID, name, email, phone string) (model.Customer, error) {
	secret, err := bcrypt.GenerateFromPassword([]byte(deviceID), bcrypt.DefaultCost)
	if err != nil {
		return model.Customer{}, err
	}
	return scanCustomer(tx.QueryRow(ctx, `
		INSERT INTO customers (id, device_id, device_secret, name, email, phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (device_id) DO UPDATE
		SET name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone
		RETURNING `+customerColumns+`
	`, uuid.NewString(), deviceID, string(secret), name, email, phone))
}

// IsBlockedBy reports whether the business has blocklisted the customer.
func (r *CustomerRepository) IsBlockedBy(ctx context.Context, tx pgx.Tx, businessID, customerID string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM blocked_customers
			WHERE business_id = $1 AND customer_id = $2
		)
	`, businessID, customerID).Scan(&exists)
	return exists, err
}

func (r *CustomerRepository) AddBlock(ctx context.Context, block model.BlockedCustomer) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO blocked_customers (business_id, customer_id, reason, created_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (business_id, customer_id) DO UPDATE
		SET reason = EXCLUDED.reason, created_by = EXCLUDED.created_by
	`, block.BusinessID, block.CustomerID, block.Reason, block.CreatedBy)
	return err
}

func (r *CustomerRepository) RemoveBlock(ctx context.Context, businessID, customerID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM blocked_customers
		WHERE business_id = $1 AND customer_id = $2
	`, businessID, customerID)
	return err
}

// ReadCancellationState reads the counter outside any transaction; the
// auto-block update is deliberately not part of the cancellation
// transaction, so concurrent cancellations may miscount by one.
func (r *CustomerRepository) ReadCancellationState(ctx context.Context, customerID string) (int, time.Time, error) {
	var count int
	var lastReset time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT cancellation_count, last_cancellation_reset
		FROM customers
		WHERE id = $1
	`, customerID).Scan(&count, &lastReset)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, time.Time{}, ErrCustomerNotFound
	}
	return count, lastReset, err
}

func (r *CustomerRepository) WriteCancellationState(ctx context.Context, customerID string, count int, lastReset time.Time, blocked bool) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE customers
		SET cancellation_count = $2,
			last_cancellation_reset = $3,
			is_blocked = is_blocked OR $4
		WHERE id = $1
	`, customerID, count, lastReset, blocked)
	return err
}
