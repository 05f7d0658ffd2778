package service

import (
	"context"
	"fmt"

	"github.com/juju/clock"

	"fieldservice-backend/internal/domain"
	"fieldservice-backend/internal/repository"
)

type statsService struct {
	store repository.Ledger
	clock clock.Clock
}

func NewStatsService(store repository.Ledger, clk clock.Clock) StatsService {
	if clk == nil {
		clk = clock.WallClock
	}
	return &statsService{store: store, clock: clk}
}

// Dashboard aggregates counts for the front page. The three counts are read
// separately and may be momentarily inconsistent with each other.
func (s *statsService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	jobs, err := s.store.Jobs().CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}
	rentals, err := s.store.Rentals().CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count rentals: %w", err)
	}
	overdue, err := s.store.Rentals().ListOverdue(ctx, s.clock.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue rentals: %w", err)
	}
	devices, err := s.store.Devices().CountByAvailability(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count devices: %w", err)
	}

	stats := &domain.DashboardStats{
		Jobs: domain.JobStats{
			Open:       jobs[domain.JobStatusOpen],
			InProgress: jobs[domain.JobStatusInProgress],
			Completed:  jobs[domain.JobStatusCompleted],
		},
		Rentals: domain.RentalStats{
			Active:   rentals[domain.RentalStatusActive],
			Returned: rentals[domain.RentalStatusReturned],
			Overdue:  int32(len(overdue)),
		},
		Devices: domain.DeviceStats{
			Available:   devices[domain.DeviceAvailable],
			Rented:      devices[domain.DeviceRented],
			Maintenance: devices[domain.DeviceMaintenance],
		},
	}
	stats.Jobs.Total = stats.Jobs.Open + stats.Jobs.InProgress + stats.Jobs.Completed
	stats.Rentals.Total = stats.Rentals.Active + stats.Rentals.Returned
	stats.Devices.Total = stats.Devices.Available + stats.Devices.Rented + stats.Devices.Maintenance
	return stats, nil
}
