package jobs

import (
	"context"
	"fmt"

	"fieldservice-backend/internal/broadcast"
	"fieldservice-backend/internal/domain"
	"fieldservice-backend/internal/logger"
)

const notifyOverdueRentals = "NotifyOverdueRentals"

// NotifyOverdueRentals publishes one reminder per active rental whose end
// date has passed. Rentals are left untouched.
func (jr *JobRunner) NotifyOverdueRentals() {
	jr.runWithRecovery(notifyOverdueRentals, func() error {
		_, err := jr.notifyOverdue(context.Background())
		return err
	})
}

func (jr *JobRunner) notifyOverdue(ctx context.Context) (int, error) {
	now := jr.clock.Now().UTC()
	rentals, err := jr.store.Rentals().ListOverdue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue rentals: %w", err)
	}

	for _, r := range rentals {
		jr.publisher.Publish(broadcast.Event{
			Kind: broadcast.KindRentalOverdue,
			Message: fmt.Sprintf("Rental #%d of device %s by %s was due %s",
				r.ID, r.DeviceSerial, r.CustomerName, r.ToDate.Format(domain.DateLayout)),
			Timestamp: now,
		})
		logger.Debug("Published overdue reminder",
			"rental_id", r.ID,
			"device_serial", r.DeviceSerial,
			"to_date", r.ToDate.Format(domain.DateLayout))
	}

	logger.Info("Overdue rental reminders sent", "count", len(rentals))
	return len(rentals), nil
}
