package service

import (
	"context"
	"strings"

	"fieldservice-backend/internal/domain"
	"fieldservice-backend/internal/logger"
	"fieldservice-backend/internal/repository"
)

type inventoryService struct {
	store repository.Ledger
}

func NewInventoryService(store repository.Ledger) InventoryService {
	return &inventoryService{store: store}
}

func (s *inventoryService) CreateDevice(ctx context.Context, device *domain.Device) error {
	logger.EnterMethod("InventoryService.CreateDevice", "serial_no", device.SerialNo)

	device.DeviceName = strings.TrimSpace(device.DeviceName)
	device.SerialNo = strings.TrimSpace(device.SerialNo)
	device.Model = strings.TrimSpace(device.Model)
	if device.DeviceName == "" || device.SerialNo == "" || device.Model == "" {
		return domain.InvalidInput("device_name, serial_no and model are required")
	}
	// New devices start available unless they go straight to maintenance. A
	// device only becomes rented by starting a rental.
	switch device.Availability {
	case "":
		device.Availability = domain.DeviceAvailable
	case domain.DeviceAvailable, domain.DeviceMaintenance:
	default:
		return domain.InvalidInput("availability %q is not allowed for a new device", device.Availability)
	}

	if err := s.store.Devices().Create(ctx, device); err != nil {
		logger.ExitMethodWithError("InventoryService.CreateDevice", err)
		return err
	}
	logger.ExitMethod("InventoryService.CreateDevice", "device_id", device.ID)
	return nil
}

func (s *inventoryService) GetDevice(ctx context.Context, serial string) (*domain.Device, error) {
	return s.store.Devices().GetBySerial(ctx, serial)
}

func (s *inventoryService) ListDevices(ctx context.Context, availability domain.DeviceAvailability) ([]domain.Device, error) {
	if availability != "" && !availability.Valid() {
		return nil, domain.InvalidInput("unknown availability %q", availability)
	}
	return s.store.Devices().List(ctx, availability)
}

func (s *inventoryService) CreateJob(ctx context.Context, job *domain.Job) error {
	logger.EnterMethod("InventoryService.CreateJob", "customer_name", job.CustomerName)

	job.CustomerName = strings.TrimSpace(job.CustomerName)
	job.Location = strings.TrimSpace(job.Location)
	job.Issue = strings.TrimSpace(job.Issue)
	if job.CustomerName == "" || job.Location == "" || job.Issue == "" {
		return domain.InvalidInput("customer_name, location and issue are required")
	}
	if job.WorkDate.IsZero() {
		return domain.InvalidInput("work_date is required")
	}
	if job.Priority == "" {
		job.Priority = domain.JobPriorityMedium
	}
	if !job.Priority.Valid() {
		return domain.InvalidInput("unknown priority %q", job.Priority)
	}

	if err := s.store.Jobs().Create(ctx, job); err != nil {
		logger.ExitMethodWithError("InventoryService.CreateJob", err)
		return err
	}
	logger.ExitMethod("InventoryService.CreateJob", "job_id", job.ID)
	return nil
}

func (s *inventoryService) GetJob(ctx context.Context, id int32) (*domain.Job, error) {
	return s.store.Jobs().GetByID(ctx, id)
}

func (s *inventoryService) ListJobs(ctx context.Context, status domain.JobStatus) ([]domain.Job, error) {
	switch status {
	case "", domain.JobStatusOpen, domain.JobStatusInProgress, domain.JobStatusCompleted:
	default:
		return nil, domain.InvalidInput("unknown job status %q", status)
	}
	return s.store.Jobs().List(ctx, status)
}

func (s *inventoryService) ListReports(ctx context.Context, jobID int32) ([]domain.JobReport, error) {
	if jobID < 0 {
		return nil, domain.InvalidInput("invalid job_id %d", jobID)
	}
	if jobID != 0 {
		if _, err := s.store.Jobs().GetByID(ctx, jobID); err != nil {
			return nil, err
		}
	}
	return s.store.Jobs().ListReports(ctx, jobID)
}

func (s *inventoryService) GetRental(ctx context.Context, id int32) (*domain.Rental, error) {
	return s.store.Rentals().GetByID(ctx, id)
}

func (s *inventoryService) ListRentals(ctx context.Context, status domain.RentalStatus) ([]domain.Rental, error) {
	switch status {
	case "", domain.RentalStatusActive, domain.RentalStatusReturned:
	default:
		return nil, domain.InvalidInput("unknown rental status %q", status)
	}
	return s.store.Rentals().List(ctx, status)
}
