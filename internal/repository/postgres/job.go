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

type jobRepository struct {
	db querier
}

const jobColumns = `id, customer_name, phone_number, location, issue, work_date, priority, status, assigned_to, assigned_at, created_at`

func scanJob(row interface{ Scan(...any) error }) (*domain.Job, error) {
	j := &domain.Job{}
	var assignedTo sql.NullInt32
	var assignedAt sql.NullTime
	err := row.Scan(&j.ID, &j.CustomerName, &j.PhoneNumber, &j.Location, &j.Issue, &j.WorkDate,
		&j.Priority, &j.Status, &assignedTo, &assignedAt, &j.CreatedAt)
	if err != nil {
		return nil, err
	}
	if assignedTo.Valid {
		j.AssignedTo = &assignedTo.Int32
	}
	if assignedAt.Valid {
		j.AssignedAt = &assignedAt.Time
	}
	return j, nil
}

// Create inserts an unassigned open job.
func (r *jobRepository) Create(ctx context.Context, j *domain.Job) error {
	j.Status = domain.JobStatusOpen
	j.AssignedTo = nil
	j.AssignedAt = nil
	if j.Priority == "" {
		j.Priority = domain.JobPriorityMedium
	}
	query := `INSERT INTO jobs (customer_name, phone_number, location, issue, work_date, priority, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`
	logger.DatabaseCall("jobs.create", query)
	return r.db.QueryRowContext(ctx, query, j.CustomerName, j.PhoneNumber, j.Location, j.Issue, j.WorkDate,
		j.Priority, j.Status).Scan(&j.ID, &j.CreatedAt)
}

func (r *jobRepository) GetByID(ctx context.Context, id int32) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	logger.DatabaseCall("jobs.get", query, "id", id)
	j, err := scanJob(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job %d: %w", id, err)
	}
	return j, nil
}

func (r *jobRepository) CompareAndSetAssignment(ctx context.Context, id int32, expected, next domain.JobStatus, assignee int32, at time.Time) error {
	query := `UPDATE jobs SET status = $1, assigned_to = $2, assigned_at = $3 WHERE id = $4 AND status = $5`
	logger.DatabaseCall("jobs.cas_assignment", query, "id", id, "expected", expected, "next", next)
	res, err := r.db.ExecContext(ctx, query, next, assignee, at, id, expected)
	if err != nil {
		return fmt.Errorf("failed to assign job %d: %w", id, err)
	}
	return r.checkSwapped(ctx, "jobs.cas_assignment", id, res)
}

func (r *jobRepository) CompareAndSetStatus(ctx context.Context, id int32, expected, next domain.JobStatus) error {
	query := `UPDATE jobs SET status = $1 WHERE id = $2 AND status = $3`
	logger.DatabaseCall("jobs.cas_status", query, "id", id, "expected", expected, "next", next)
	res, err := r.db.ExecContext(ctx, query, next, id, expected)
	if err != nil {
		return fmt.Errorf("failed to update job %d: %w", id, err)
	}
	return r.checkSwapped(ctx, "jobs.cas_status", id, res)
}

// checkSwapped turns a zero-row conditional update into ErrJobNotFound or
// ErrConflict depending on whether the row exists.
func (r *jobRepository) checkSwapped(ctx context.Context, operation string, id int32, res sql.Result) error {
	n, err := rowsAffected(operation, res)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM jobs WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrJobNotFound
	}
	return domain.ErrConflict
}

func (r *jobRepository) CreateReport(ctx context.Context, rep *domain.JobReport) error {
	query := `INSERT INTO job_reports (job_id, company_name, time_taken, equipment_used, work_description)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	logger.DatabaseCall("job_reports.create", query, "job_id", rep.JobID)
	return r.db.QueryRowContext(ctx, query, rep.JobID, rep.CompanyName, rep.TimeTaken, rep.EquipmentUsed,
		rep.WorkDescription).Scan(&rep.ID, &rep.CreatedAt)
}

func (r *jobRepository) ListReports(ctx context.Context, jobID int32) ([]domain.JobReport, error) {
	query := `SELECT id, job_id, company_name, time_taken, equipment_used, work_description, created_at
	          FROM job_reports`
	var args []any
	if jobID != 0 {
		query += ` WHERE job_id = $1`
		args = append(args, jobID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	logger.DatabaseCall("job_reports.list", query, "job_id", jobID)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list job reports: %w", err)
	}
	defer rows.Close()

	var reports []domain.JobReport
	for rows.Next() {
		var rep domain.JobReport
		if err := rows.Scan(&rep.ID, &rep.JobID, &rep.CompanyName, &rep.TimeTaken, &rep.EquipmentUsed,
			&rep.WorkDescription, &rep.CreatedAt); err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

func (r *jobRepository) List(ctx context.Context, status domain.JobStatus) ([]domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	logger.DatabaseCall("jobs.list", query)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

func (r *jobRepository) CountByStatus(ctx context.Context) (map[domain.JobStatus]int32, error) {
	query := `SELECT status, count(*) FROM jobs GROUP BY status`
	logger.DatabaseCall("jobs.count", query)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.JobStatus]int32)
	for rows.Next() {
		var s domain.JobStatus
		var n int32
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		counts[s] = n
	}
	return counts, rows.Err()
}
