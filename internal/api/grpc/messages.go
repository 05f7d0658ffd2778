package grpc

import "fieldservice-backend/internal/domain"

type StartRentalRequest struct {
	CustomerName         string `json:"customer_name"`
	PhoneNumber          string `json:"phone_number"`
	DeviceSerial         string `json:"device_serial"`
	FromDate             string `json:"from_date"`
	ToDate               string `json:"to_date"`
	SecurityDepositCents int64  `json:"security_deposit_cents"`
}

type ReturnRentalRequest struct {
	RentalID int32 `json:"rental_id"`
}

type ClaimJobRequest struct {
	JobID int32 `json:"job_id"`
}

type CompleteJobRequest struct {
	JobID  int32             `json:"job_id"`
	Report *domain.JobReport `json:"report,omitempty"`
}

type SetDeviceMaintenanceRequest struct {
	DeviceSerial string `json:"device_serial"`
	Maintenance  bool   `json:"maintenance"`
}

type DeviceResponse struct {
	Device *domain.Device `json:"device"`
}

type RentalResponse struct {
	Rental *domain.Rental `json:"rental"`
}

type JobResponse struct {
	Job *domain.Job `json:"job"`
}
