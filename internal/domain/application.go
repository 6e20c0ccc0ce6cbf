package domain

import "time"

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// AdminApplication is a request by a user to be promoted to the admin role.
// Applications are never deleted; rejected ones stay on record.
type AdminApplication struct {
	Meta
	UserID      string            `json:"userId"`
	Reason      string            `json:"reason"`
	Status      ApplicationStatus `json:"status"`
	SubmittedAt time.Time         `json:"submittedAt"`
	ReviewedAt  *time.Time        `json:"reviewedAt,omitempty"`
	ReviewedBy  string            `json:"reviewedBy,omitempty"`
	Feedback    string            `json:"feedback,omitempty"`
}
