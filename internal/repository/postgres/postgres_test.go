package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldservice-backend/internal/domain"
	"fieldservice-backend/internal/repository"
	"fieldservice-backend/internal/repository/postgres"
)

func TestStore_WithinTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Commit", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		store := postgres.NewStore(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM devices WHERE serial_no = \\$1 FOR UPDATE").
			WithArgs("SN-001").
			WillReturnRows(sqlmock.NewRows(deviceCols).AddRow(1, "Drain camera", "SN-001", "DC-1", "available", time.Now()))
		mock.ExpectExec("UPDATE devices SET availability").
			WithArgs("rented", "SN-001").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = store.WithinTx(ctx, func(tx repository.Ledger) error {
			if _, err := tx.Devices().LockBySerial(ctx, "SN-001"); err != nil {
				return err
			}
			return tx.Devices().SetAvailability(ctx, "SN-001", domain.DeviceRented)
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rollback on error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		store := postgres.NewStore(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE jobs SET status").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO job_reports").
			WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err = store.WithinTx(ctx, func(tx repository.Ledger) error {
			if err := tx.Jobs().CompareAndSetStatus(ctx, 7, domain.JobStatusInProgress, domain.JobStatusCompleted); err != nil {
				return err
			}
			return tx.Jobs().CreateReport(ctx, &domain.JobReport{JobID: 7, CompanyName: "Acme"})
		})
		assert.EqualError(t, err, "disk full")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Begin fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		store := postgres.NewStore(db)

		mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

		called := false
		err = store.WithinTx(ctx, func(tx repository.Ledger) error {
			called = true
			return nil
		})
		assert.Error(t, err)
		assert.False(t, called)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.MatchExpectationsInOrder(true)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS devices").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS rentals").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE UNIQUE INDEX IF NOT EXISTS rentals_one_active_per_device").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS jobs").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS job_reports").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, postgres.Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
