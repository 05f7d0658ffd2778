package domain

type JobStats struct {
	Total      int32 `json:"total"`
	Open       int32 `json:"open"`
	InProgress int32 `json:"in_progress"`
	Completed  int32 `json:"completed"`
}

type RentalStats struct {
	Total    int32 `json:"total"`
	Active   int32 `json:"active"`
	Returned int32 `json:"returned"`
	Overdue  int32 `json:"overdue"`
}

type DeviceStats struct {
	Total       int32 `json:"total"`
	Available   int32 `json:"available"`
	Rented      int32 `json:"rented"`
	Maintenance int32 `json:"maintenance"`
}

type DashboardStats struct {
	Jobs    JobStats    `json:"jobs"`
	Rentals RentalStats `json:"rentals"`
	Devices DeviceStats `json:"devices"`
}
