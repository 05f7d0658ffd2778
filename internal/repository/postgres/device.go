package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fieldservice-backend/internal/domain"
	"fieldservice-backend/internal/logger"
)

type deviceRepository struct {
	db querier
}

const deviceColumns = `id, device_name, serial_no, model, availability, created_at`

func scanDevice(row interface{ Scan(...any) error }) (*domain.Device, error) {
	d := &domain.Device{}
	if err := row.Scan(&d.ID, &d.DeviceName, &d.SerialNo, &d.Model, &d.Availability, &d.CreatedAt); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *deviceRepository) Create(ctx context.Context, d *domain.Device) error {
	if d.Availability == "" {
		d.Availability = domain.DeviceAvailable
	}
	query := `INSERT INTO devices (device_name, serial_no, model, availability)
	          VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	logger.DatabaseCall("devices.create", query, "serial_no", d.SerialNo)
	err := r.db.QueryRowContext(ctx, query, d.DeviceName, d.SerialNo, d.Model, d.Availability).Scan(&d.ID, &d.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateSerial
	}
	return err
}

func (r *deviceRepository) GetBySerial(ctx context.Context, serial string) (*domain.Device, error) {
	return r.get(ctx, `SELECT `+deviceColumns+` FROM devices WHERE serial_no = $1`, serial)
}

func (r *deviceRepository) LockBySerial(ctx context.Context, serial string) (*domain.Device, error) {
	return r.get(ctx, `SELECT `+deviceColumns+` FROM devices WHERE serial_no = $1 FOR UPDATE`, serial)
}

func (r *deviceRepository) get(ctx context.Context, query, serial string) (*domain.Device, error) {
	logger.DatabaseCall("devices.get", query, "serial_no", serial)
	d, err := scanDevice(r.db.QueryRowContext(ctx, query, serial))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device %q: %w", serial, err)
	}
	return d, nil
}

func (r *deviceRepository) SetAvailability(ctx context.Context, serial string, availability domain.DeviceAvailability) error {
	query := `UPDATE devices SET availability = $1 WHERE serial_no = $2`
	logger.DatabaseCall("devices.set_availability", query, "serial_no", serial, "availability", availability)
	res, err := r.db.ExecContext(ctx, query, availability, serial)
	if err != nil {
		return fmt.Errorf("failed to update device %q: %w", serial, err)
	}
	n, err := rowsAffected("devices.set_availability", res)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrDeviceNotFound
	}
	return nil
}

func (r *deviceRepository) List(ctx context.Context, availability domain.DeviceAvailability) ([]domain.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices`
	var args []any
	if availability != "" {
		query += ` WHERE availability = $1`
		args = append(args, availability)
	}
	query += ` ORDER BY model, serial_no`

	logger.DatabaseCall("devices.list", query)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []domain.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, *d)
	}
	return devices, rows.Err()
}

func (r *deviceRepository) CountByAvailability(ctx context.Context) (map[domain.DeviceAvailability]int32, error) {
	query := `SELECT availability, count(*) FROM devices GROUP BY availability`
	logger.DatabaseCall("devices.count", query)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.DeviceAvailability]int32)
	for rows.Next() {
		var a domain.DeviceAvailability
		var n int32
		if err := rows.Scan(&a, &n); err != nil {
			return nil, err
		}
		counts[a] = n
	}
	return counts, rows.Err()
}
