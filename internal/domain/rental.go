package domain

import "time"

type RentalStatus string

const (
	RentalStatusActive   RentalStatus = "active"
	RentalStatusReturned RentalStatus = "returned"
)

// DateLayout is the wire and storage format of rental and job dates.
const DateLayout = "2006-01-02"

type Rental struct {
	ID           int32  `json:"id"`
	CustomerName string `json:"customer_name"`
	PhoneNumber  string `json:"phone_number"`
	// DeviceSerial references Device.SerialNo by value. The rental does not own the device.
	DeviceSerial         string       `json:"device_serial"`
	FromDate             time.Time    `json:"from_date"`
	ToDate               time.Time    `json:"to_date"`
	RentalDays           int32        `json:"rental_days"`
	SecurityDepositCents int64        `json:"security_deposit_cents"`
	Status               RentalStatus `json:"status"`
	ReturnedAt           *time.Time   `json:"returned_at,omitempty"`
	CreatedAt            time.Time    `json:"created_at"`
}

// RentalDays counts the days of [from, to] inclusively. A range that ends
// before it starts yields zero.
func RentalDays(from, to time.Time) int32 {
	from = truncateDay(from)
	to = truncateDay(to)
	if to.Before(from) {
		return 0
	}
	return int32(to.Sub(from).Hours()/24) + 1
}

// IsOverdue reports whether an active rental is past its end date on day now.
func (r *Rental) IsOverdue(now time.Time) bool {
	return r.Status == RentalStatusActive && truncateDay(r.ToDate).Before(truncateDay(now))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
