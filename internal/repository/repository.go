package repository

import (
	"context"
	"time"

	"fieldservice-backend/internal/domain"
)

type DeviceRepository interface {
	Create(ctx context.Context, device *domain.Device) error
	GetBySerial(ctx context.Context, serial string) (*domain.Device, error)
	// LockBySerial reads the device and, inside a transaction, holds its row
	// lock until commit or rollback.
	LockBySerial(ctx context.Context, serial string) (*domain.Device, error)
	SetAvailability(ctx context.Context, serial string, availability domain.DeviceAvailability) error
	List(ctx context.Context, availability domain.DeviceAvailability) ([]domain.Device, error)
	CountByAvailability(ctx context.Context) (map[domain.DeviceAvailability]int32, error)
}

type RentalRepository interface {
	// Create inserts the rental with status forced to active.
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id int32) (*domain.Rental, error)
	// MarkReturned flips an active rental to returned. It fails with
	// domain.ErrAlreadyReturned if the rental is not active.
	MarkReturned(ctx context.Context, id int32, at time.Time) error
	List(ctx context.Context, status domain.RentalStatus) ([]domain.Rental, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Rental, error)
	CountByStatus(ctx context.Context) (map[domain.RentalStatus]int32, error)
}

type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	GetByID(ctx context.Context, id int32) (*domain.Job, error)
	// CompareAndSetAssignment moves the job from expected to next and records
	// the assignee, but only if the stored status still equals expected.
	// Otherwise it returns domain.ErrConflict.
	CompareAndSetAssignment(ctx context.Context, id int32, expected, next domain.JobStatus, assignee int32, at time.Time) error
	// CompareAndSetStatus is CompareAndSetAssignment without touching the assignment.
	CompareAndSetStatus(ctx context.Context, id int32, expected, next domain.JobStatus) error
	CreateReport(ctx context.Context, report *domain.JobReport) error
	// ListReports returns reports newest first. A zero jobID lists every report.
	ListReports(ctx context.Context, jobID int32) ([]domain.JobReport, error)
	List(ctx context.Context, status domain.JobStatus) ([]domain.Job, error)
	CountByStatus(ctx context.Context) (map[domain.JobStatus]int32, error)
}

// Ledger groups the repositories that share one view of the data, either
// the live store or a single transaction.
type Ledger interface {
	Devices() DeviceRepository
	Rentals() RentalRepository
	Jobs() JobRepository
}

type Store interface {
	Ledger
	// WithinTx runs fn in one transaction. A non-nil error from fn rolls
	// every write back.
	WithinTx(ctx context.Context, fn func(tx Ledger) error) error
}
