package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldservice-backend/internal/domain"
	"fieldservice-backend/internal/repository/postgres"
)

var jobCols = []string{"id", "customer_name", "phone_number", "location", "issue", "work_date",
	"priority", "status", "assigned_to", "assigned_at", "created_at"}

func TestJobRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewJobRepository(db)
	work := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)

	j := &domain.Job{CustomerName: "Bo", PhoneNumber: "555", Location: "12 Elm", Issue: "Leak", WorkDate: work}
	mock.ExpectQuery("INSERT INTO jobs").
		WithArgs("Bo", "555", "12 Elm", "Leak", work, "medium", "open").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, time.Now()))

	require.NoError(t, repo.Create(context.Background(), j))
	assert.Equal(t, int32(7), j.ID)
	assert.Equal(t, domain.JobStatusOpen, j.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewJobRepository(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("Assigned", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM jobs WHERE id = \\$1").
			WithArgs(int32(7)).
			WillReturnRows(sqlmock.NewRows(jobCols).
				AddRow(7, "Bo", "555", "12 Elm", "Leak", now, "high", "in_progress", 42, now, now))

		j, err := repo.GetByID(ctx, 7)
		require.NoError(t, err)
		require.NotNil(t, j.AssignedTo)
		assert.Equal(t, int32(42), *j.AssignedTo)
		assert.NotNil(t, j.AssignedAt)
	})

	t.Run("Unassigned", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM jobs WHERE id = \\$1").
			WithArgs(int32(8)).
			WillReturnRows(sqlmock.NewRows(jobCols).
				AddRow(8, "Cy", "555", "4 Oak", "Noise", now, "low", "open", nil, nil, now))

		j, err := repo.GetByID(ctx, 8)
		require.NoError(t, err)
		assert.Nil(t, j.AssignedTo)
		assert.Nil(t, j.AssignedAt)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM jobs WHERE id = \\$1").
			WithArgs(int32(9)).
			WillReturnRows(sqlmock.NewRows(jobCols))

		_, err := repo.GetByID(ctx, 9)
		assert.ErrorIs(t, err, domain.ErrJobNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepository_CompareAndSetAssignment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewJobRepository(db)
	ctx := context.Background()
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	const casQuery = "UPDATE jobs SET status = \\$1, assigned_to = \\$2, assigned_at = \\$3 WHERE id = \\$4 AND status = \\$5"

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(casQuery).
			WithArgs("in_progress", int32(42), at, int32(7), "open").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.CompareAndSetAssignment(ctx, 7, domain.JobStatusOpen, domain.JobStatusInProgress, 42, at)
		assert.NoError(t, err)
	})

	t.Run("Conflict", func(t *testing.T) {
		mock.ExpectExec(casQuery).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int32(7)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err := repo.CompareAndSetAssignment(ctx, 7, domain.JobStatusOpen, domain.JobStatusInProgress, 43, at)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectExec(casQuery).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int32(99)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		err := repo.CompareAndSetAssignment(ctx, 99, domain.JobStatusOpen, domain.JobStatusInProgress, 43, at)
		assert.ErrorIs(t, err, domain.ErrJobNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepository_CompareAndSetStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewJobRepository(db)

	mock.ExpectExec("UPDATE jobs SET status = \\$1 WHERE id = \\$2 AND status = \\$3").
		WithArgs("completed", int32(7), "in_progress").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.CompareAndSetStatus(context.Background(), 7, domain.JobStatusInProgress, domain.JobStatusCompleted)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepository_ListReports(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewJobRepository(db)
	ctx := context.Background()
	now := time.Now()
	cols := []string{"id", "job_id", "company_name", "time_taken", "equipment_used", "work_description", "created_at"}

	t.Run("ByJob", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM job_reports WHERE job_id = \\$1 ORDER BY created_at DESC").
			WithArgs(int32(7)).
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow(2, 7, "Acme", "2h", "wrench", "replaced valve", now))

		reports, err := repo.ListReports(ctx, 7)
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, int32(7), reports[0].JobID)
		assert.Equal(t, "Acme", reports[0].CompanyName)
		assert.Equal(t, "replaced valve", reports[0].WorkDescription)
	})

	t.Run("All", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM job_reports ORDER BY created_at DESC").
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow(2, 7, "Acme", "", "", "", now).
				AddRow(1, 3, "Beta", "", "", "", now))

		reports, err := repo.ListReports(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, reports, 2)
	})

	t.Run("Empty", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM job_reports WHERE job_id = \\$1").
			WithArgs(int32(9)).
			WillReturnRows(sqlmock.NewRows(cols))

		reports, err := repo.ListReports(ctx, 9)
		require.NoError(t, err)
		assert.Empty(t, reports)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
