package domain

import "time"

type JobPriority string

const (
	JobPriorityLow    JobPriority = "low"
	JobPriorityMedium JobPriority = "medium"
	JobPriorityHigh   JobPriority = "high"
)

func (p JobPriority) Valid() bool {
	switch p {
	case JobPriorityLow, JobPriorityMedium, JobPriorityHigh:
		return true
	}
	return false
}

type JobStatus string

const (
	JobStatusOpen       JobStatus = "open"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
)

type Job struct {
	ID           int32       `json:"id"`
	CustomerName string      `json:"customer_name"`
	PhoneNumber  string      `json:"phone_number"`
	Location     string      `json:"location"`
	Issue        string      `json:"issue"`
	WorkDate     time.Time   `json:"work_date"`
	Priority     JobPriority `json:"priority"`
	Status       JobStatus   `json:"status"`
	// AssignedTo is a user id used for lookup only. It is set exactly when
	// Status is in_progress or completed.
	AssignedTo *int32     `json:"assigned_to,omitempty"`
	AssignedAt *time.Time `json:"assigned_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// JobReport is the completion report a worker files when finishing a job.
type JobReport struct {
	ID              int32     `json:"id"`
	JobID           int32     `json:"job_id"`
	CompanyName     string    `json:"company_name"`
	TimeTaken       string    `json:"time_taken"`
	EquipmentUsed   string    `json:"equipment_used"`
	WorkDescription string    `json:"work_description"`
	CreatedAt       time.Time `json:"created_at"`
}
