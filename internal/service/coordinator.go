package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/juju/clock"

	"fieldservice-backend/internal/broadcast"
	"fieldservice-backend/internal/domain"
	"fieldservice-backend/internal/logger"
	"fieldservice-backend/internal/metrics"
	"fieldservice-backend/internal/repository"
)

type coordinatorService struct {
	store     repository.Store
	publisher broadcast.Publisher
	clock     clock.Clock
	metrics   *metrics.Collector
}

func NewCoordinatorService(
	store repository.Store,
	publisher broadcast.Publisher,
	clk clock.Clock,
	collector *metrics.Collector,
) CoordinatorService {
	if clk == nil {
		clk = clock.WallClock
	}
	return &coordinatorService{
		store:     store,
		publisher: publisher,
		clock:     clk,
		metrics:   collector,
	}
}

func (s *coordinatorService) StartRental(ctx context.Context, actor domain.Actor, in StartRentalInput) (*domain.Rental, error) {
	const method = "CoordinatorService.StartRental"
	logger.EnterMethod(method, "actor", actor.UserID, "device_serial", in.DeviceSerial)

	rental, err := s.startRental(ctx, in)
	s.metrics.Transition("start_rental", err)
	if err != nil {
		logger.ExitMethodWithError(method, err, "device_serial", in.DeviceSerial)
		return nil, err
	}

	s.emit(broadcast.KindRentalStarted, actor,
		fmt.Sprintf("Device %s rented to %s", rental.DeviceSerial, rental.CustomerName))
	logger.ExitMethod(method, "rental_id", rental.ID)
	return rental, nil
}

func (s *coordinatorService) startRental(ctx context.Context, in StartRentalInput) (*domain.Rental, error) {
	if err := validateStartRental(&in); err != nil {
		return nil, err
	}

	rental := &domain.Rental{
		CustomerName:         in.CustomerName,
		PhoneNumber:          in.PhoneNumber,
		DeviceSerial:         in.DeviceSerial,
		FromDate:             in.FromDate,
		ToDate:               in.ToDate,
		RentalDays:           domain.RentalDays(in.FromDate, in.ToDate),
		SecurityDepositCents: in.SecurityDepositCents,
	}

	err := s.store.WithinTx(ctx, func(tx repository.Ledger) error {
		device, err := tx.Devices().LockBySerial(ctx, in.DeviceSerial)
		if err != nil {
			return err
		}
		if device.Availability != domain.DeviceAvailable {
			return domain.ErrDeviceUnavailable
		}
		if err := tx.Devices().SetAvailability(ctx, device.SerialNo, domain.DeviceRented); err != nil {
			return err
		}
		if err := tx.Rentals().Create(ctx, rental); err != nil {
			// The one-active-rental-per-device index lost a race to another rental.
			if errors.Is(err, domain.ErrConflict) {
				return domain.ErrDeviceUnavailable
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rental, nil
}

func validateStartRental(in *StartRentalInput) error {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.DeviceSerial = strings.TrimSpace(in.DeviceSerial)

	switch {
	case in.CustomerName == "":
		return domain.InvalidInput("customer_name is required")
	case in.DeviceSerial == "":
		return domain.InvalidInput("device_serial is required")
	case in.FromDate.IsZero() || in.ToDate.IsZero():
		return domain.InvalidInput("from_date and to_date are required")
	case domain.RentalDays(in.FromDate, in.ToDate) == 0:
		return domain.InvalidInput("to_date must not be before from_date")
	case in.SecurityDepositCents < 0:
		return domain.InvalidInput("security_deposit must not be negative")
	}
	return nil
}

func (s *coordinatorService) ReturnRental(ctx context.Context, actor domain.Actor, rentalID int32) (*domain.Rental, error) {
	const method = "CoordinatorService.ReturnRental"
	logger.EnterMethod(method, "actor", actor.UserID, "rental_id", rentalID)

	var rental *domain.Rental
	err := s.store.WithinTx(ctx, func(tx repository.Ledger) error {
		now := s.clock.Now().UTC()
		if err := tx.Rentals().MarkReturned(ctx, rentalID, now); err != nil {
			return err
		}
		var err error
		rental, err = tx.Rentals().GetByID(ctx, rentalID)
		if err != nil {
			return err
		}

		// The device may have been removed since the rental started. The
		// return still stands.
		err = tx.Devices().SetAvailability(ctx, rental.DeviceSerial, domain.DeviceAvailable)
		if errors.Is(err, domain.ErrDeviceNotFound) {
			logger.Warn("Returned rental references a missing device",
				"rental_id", rentalID, "device_serial", rental.DeviceSerial)
			return nil
		}
		return err
	})
	s.metrics.Transition("return_rental", err)
	if err != nil {
		logger.ExitMethodWithError(method, err, "rental_id", rentalID)
		return nil, err
	}

	s.emit(broadcast.KindRentalReturned, actor,
		fmt.Sprintf("Device %s returned by %s", rental.DeviceSerial, rental.CustomerName))
	logger.ExitMethod(method, "rental_id", rentalID)
	return rental, nil
}

func (s *coordinatorService) ClaimJob(ctx context.Context, actor domain.Actor, jobID int32) (*domain.Job, error) {
	const method = "CoordinatorService.ClaimJob"
	logger.EnterMethod(method, "actor", actor.UserID, "job_id", jobID)

	var job *domain.Job
	err := s.store.WithinTx(ctx, func(tx repository.Ledger) error {
		at := s.clock.Now().UTC()
		err := tx.Jobs().CompareAndSetAssignment(ctx, jobID, domain.JobStatusOpen, domain.JobStatusInProgress, actor.UserID, at)
		if errors.Is(err, domain.ErrConflict) {
			return domain.ErrAlreadyClaimed
		}
		if err != nil {
			return err
		}
		job, err = tx.Jobs().GetByID(ctx, jobID)
		return err
	})
	s.metrics.Transition("claim_job", err)
	if err != nil {
		logger.ExitMethodWithError(method, err, "job_id", jobID)
		return nil, err
	}

	s.emit(broadcast.KindJobClaimed, actor,
		fmt.Sprintf("Job #%d for %s claimed by %s", job.ID, job.CustomerName, actor.Sender()))
	logger.ExitMethod(method, "job_id", jobID)
	return job, nil
}

func (s *coordinatorService) CompleteJob(ctx context.Context, actor domain.Actor, jobID int32, report *domain.JobReport) (*domain.Job, error) {
	const method = "CoordinatorService.CompleteJob"
	logger.EnterMethod(method, "actor", actor.UserID, "job_id", jobID, "with_report", report != nil)

	if err := validateReport(report); err != nil {
		s.metrics.Transition("complete_job", err)
		logger.ExitMethodWithError(method, err, "job_id", jobID)
		return nil, err
	}

	var job *domain.Job
	err := s.store.WithinTx(ctx, func(tx repository.Ledger) error {
		err := tx.Jobs().CompareAndSetStatus(ctx, jobID, domain.JobStatusInProgress, domain.JobStatusCompleted)
		if errors.Is(err, domain.ErrConflict) {
			return domain.ErrJobNotInProgress
		}
		if err != nil {
			return err
		}
		if report != nil {
			report.JobID = jobID
			if err := tx.Jobs().CreateReport(ctx, report); err != nil {
				return fmt.Errorf("failed to save job report: %w", err)
			}
		}
		job, err = tx.Jobs().GetByID(ctx, jobID)
		return err
	})
	s.metrics.Transition("complete_job", err)
	if err != nil {
		logger.ExitMethodWithError(method, err, "job_id", jobID)
		return nil, err
	}

	s.emit(broadcast.KindJobCompleted, actor,
		fmt.Sprintf("Job #%d for %s completed", job.ID, job.CustomerName))
	logger.ExitMethod(method, "job_id", jobID)
	return job, nil
}

func validateReport(report *domain.JobReport) error {
	if report == nil {
		return nil
	}
	report.CompanyName = strings.TrimSpace(report.CompanyName)
	if report.CompanyName == "" {
		return domain.InvalidInput("company_name is required for a job report")
	}
	return nil
}

func (s *coordinatorService) SetDeviceMaintenance(ctx context.Context, actor domain.Actor, serial string, on bool) (*domain.Device, error) {
	const method = "CoordinatorService.SetDeviceMaintenance"
	logger.EnterMethod(method, "actor", actor.UserID, "device_serial", serial, "maintenance", on)

	serial = strings.TrimSpace(serial)
	target := domain.DeviceAvailable
	if on {
		target = domain.DeviceMaintenance
	}

	var device *domain.Device
	changed := false
	err := s.store.WithinTx(ctx, func(tx repository.Ledger) error {
		var err error
		device, err = tx.Devices().LockBySerial(ctx, serial)
		if err != nil {
			return err
		}
		switch device.Availability {
		case target:
			return nil
		case domain.DeviceRented:
			return domain.ErrDeviceUnavailable
		}
		if err := tx.Devices().SetAvailability(ctx, serial, target); err != nil {
			return err
		}
		device.Availability = target
		changed = true
		return nil
	})
	s.metrics.Transition("set_device_maintenance", err)
	if err != nil {
		logger.ExitMethodWithError(method, err, "device_serial", serial)
		return nil, err
	}

	if changed {
		msg := fmt.Sprintf("Device %s is back in service", device.SerialNo)
		if on {
			msg = fmt.Sprintf("Device %s moved to maintenance", device.SerialNo)
		}
		s.emit(broadcast.KindDeviceAvailability, actor, msg)
	}
	logger.ExitMethod(method, "device_serial", serial, "availability", device.Availability)
	return device, nil
}

// emit runs after commit. Publish only enqueues, so a slow subscriber cannot
// hold up the caller.
func (s *coordinatorService) emit(kind broadcast.Kind, actor domain.Actor, message string) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(broadcast.Event{
		Kind:      kind,
		Message:   message,
		Sender:    actor.Sender(),
		Timestamp: s.clock.Now().UTC(),
	})
}
