package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fieldservice-backend/internal/logger"
	"fieldservice-backend/internal/repository"

	"github.com/lib/pq"
)

// querier is satisfied by both *sql.DB and *sql.Tx so every repository can
// run either against the pool or inside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type ledger struct {
	devices repository.DeviceRepository
	rentals repository.RentalRepository
	jobs    repository.JobRepository
}

func newLedger(q querier) *ledger {
	return &ledger{
		devices: &deviceRepository{db: q},
		rentals: &rentalRepository{db: q},
		jobs:    &jobRepository{db: q},
	}
}

func (l *ledger) Devices() repository.DeviceRepository { return l.devices }
func (l *ledger) Rentals() repository.RentalRepository { return l.rentals }
func (l *ledger) Jobs() repository.JobRepository       { return l.jobs }

type Store struct {
	db *sql.DB
	*ledger
}

var _ repository.Store = (*Store)(nil)

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, ledger: newLedger(db)}
}

func NewDeviceRepository(db *sql.DB) repository.DeviceRepository {
	return &deviceRepository{db: db}
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

func NewJobRepository(db *sql.DB) repository.JobRepository {
	return &jobRepository{db: db}
}

// WithinTx runs fn inside a read-committed transaction. Row locks taken by
// LockBySerial are held until the transaction ends.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Ledger) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(newLedger(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func rowsAffected(operation string, res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	logger.DatabaseResult(operation, n, err)
	return n, err
}
