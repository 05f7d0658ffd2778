package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fieldservice-backend/internal/domain"
	"fieldservice-backend/internal/logger"
)

type rentalRepository struct {
	db querier
}

const rentalColumns = `id, customer_name, phone_number, device_serial, from_date, to_date, rental_days, security_deposit_cents, status, returned_at, created_at`

func scanRental(row interface{ Scan(...any) error }) (*domain.Rental, error) {
	rt := &domain.Rental{}
	var returnedAt sql.NullTime
	err := row.Scan(&rt.ID, &rt.CustomerName, &rt.PhoneNumber, &rt.DeviceSerial, &rt.FromDate, &rt.ToDate,
		&rt.RentalDays, &rt.SecurityDepositCents, &rt.Status, &returnedAt, &rt.CreatedAt)
	if err != nil {
		return nil, err
	}
	if returnedAt.Valid {
		rt.ReturnedAt = &returnedAt.Time
	}
	return rt, nil
}

// Create inserts an active rental. The partial unique index on
// (device_serial) WHERE status = 'active' rejects a second active rental for
// the same device; that surfaces as domain.ErrConflict.
func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	rt.Status = domain.RentalStatusActive
	rt.ReturnedAt = nil
	query := `INSERT INTO rentals (customer_name, phone_number, device_serial, from_date, to_date, rental_days, security_deposit_cents, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`
	logger.DatabaseCall("rentals.create", query, "device_serial", rt.DeviceSerial)
	err := r.db.QueryRowContext(ctx, query, rt.CustomerName, rt.PhoneNumber, rt.DeviceSerial, rt.FromDate, rt.ToDate,
		rt.RentalDays, rt.SecurityDepositCents, rt.Status).Scan(&rt.ID, &rt.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("active rental exists for device %q: %w", rt.DeviceSerial, domain.ErrConflict)
	}
	return err
}

func (r *rentalRepository) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	logger.DatabaseCall("rentals.get", query, "id", id)
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRentalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rental %d: %w", id, err)
	}
	return rt, nil
}

func (r *rentalRepository) MarkReturned(ctx context.Context, id int32, at time.Time) error {
	query := `UPDATE rentals SET status = $1, returned_at = $2 WHERE id = $3 AND status = $4`
	logger.DatabaseCall("rentals.mark_returned", query, "id", id)
	res, err := r.db.ExecContext(ctx, query, domain.RentalStatusReturned, at, id, domain.RentalStatusActive)
	if err != nil {
		return fmt.Errorf("failed to return rental %d: %w", id, err)
	}
	n, err := rowsAffected("rentals.mark_returned", res)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	// Nothing matched: either the rental is gone or it's no longer active.
	var status domain.RentalStatus
	err = r.db.QueryRowContext(ctx, `SELECT status FROM rentals WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrRentalNotFound
	}
	if err != nil {
		return err
	}
	return domain.ErrAlreadyReturned
}

func (r *rentalRepository) List(ctx context.Context, status domain.RentalStatus) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`
	return r.list(ctx, "rentals.list", query, args...)
}

func (r *rentalRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE status = $1 AND to_date < $2 ORDER BY to_date`
	return r.list(ctx, "rentals.list_overdue", query, domain.RentalStatusActive, asOf.Format(domain.DateLayout))
}

func (r *rentalRepository) list(ctx context.Context, operation, query string, args ...any) ([]domain.Rental, error) {
	logger.DatabaseCall(operation, query)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, rows.Err()
}

func (r *rentalRepository) CountByStatus(ctx context.Context) (map[domain.RentalStatus]int32, error) {
	query := `SELECT status, count(*) FROM rentals GROUP BY status`
	logger.DatabaseCall("rentals.count", query)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.RentalStatus]int32)
	for rows.Next() {
		var s domain.RentalStatus
		var n int32
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		counts[s] = n
	}
	return counts, rows.Err()
}
