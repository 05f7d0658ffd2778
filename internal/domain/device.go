package domain

import "time"

type DeviceAvailability string

const (
	DeviceAvailable   DeviceAvailability = "available"
	DeviceRented      DeviceAvailability = "rented"
	DeviceMaintenance DeviceAvailability = "maintenance"
)

// Valid reports whether a is one of the known availability states.
func (a DeviceAvailability) Valid() bool {
	switch a {
	case DeviceAvailable, DeviceRented, DeviceMaintenance:
		return true
	}
	return false
}

type Device struct {
	ID           int32              `json:"id"`
	DeviceName   string             `json:"device_name"`
	SerialNo     string             `json:"serial_no"`
	Model        string             `json:"model"`
	Availability DeviceAvailability `json:"availability"`
	CreatedAt    time.Time          `json:"created_at"`
}
