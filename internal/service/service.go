package service

import (
	"context"
	"time"

	"fieldservice-backend/internal/domain"
)

type StartRentalInput struct {
	CustomerName         string
	PhoneNumber          string
	DeviceSerial         string
	FromDate             time.Time
	ToDate               time.Time
	SecurityDepositCents int64
}

// CoordinatorService owns every transition that touches more than one
// resource or that concurrent callers may race on.
type CoordinatorService interface {
	StartRental(ctx context.Context, actor domain.Actor, in StartRentalInput) (*domain.Rental, error)
	ReturnRental(ctx context.Context, actor domain.Actor, rentalID int32) (*domain.Rental, error)
	ClaimJob(ctx context.Context, actor domain.Actor, jobID int32) (*domain.Job, error)
	// CompleteJob finishes an in-progress job. A non-nil report is stored in
	// the same transaction.
	CompleteJob(ctx context.Context, actor domain.Actor, jobID int32, report *domain.JobReport) (*domain.Job, error)
	// SetDeviceMaintenance moves an idle device into maintenance (on) or back
	// to available. A rented device is refused.
	SetDeviceMaintenance(ctx context.Context, actor domain.Actor, serial string, on bool) (*domain.Device, error)
}

type InventoryService interface {
	CreateDevice(ctx context.Context, device *domain.Device) error
	GetDevice(ctx context.Context, serial string) (*domain.Device, error)
	ListDevices(ctx context.Context, availability domain.DeviceAvailability) ([]domain.Device, error)
	CreateJob(ctx context.Context, job *domain.Job) error
	GetJob(ctx context.Context, id int32) (*domain.Job, error)
	ListJobs(ctx context.Context, status domain.JobStatus) ([]domain.Job, error)
	// ListReports lists completion reports, of one job when jobID is non-zero.
	ListReports(ctx context.Context, jobID int32) ([]domain.JobReport, error)
	GetRental(ctx context.Context, id int32) (*domain.Rental, error)
	ListRentals(ctx context.Context, status domain.RentalStatus) ([]domain.Rental, error)
}

type StatsService interface {
	Dashboard(ctx context.Context) (*domain.DashboardStats, error)
}
