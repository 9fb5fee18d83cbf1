package models

// TeamRequest statuses. Declined and expired requests both land in
// cancelled; accepted is terminal.
const (
	RequestStatusPending   = "pending"
	RequestStatusAccepted  = "accepted"
	RequestStatusCancelled = "cancelled"
)

// MaxPendingRequests caps simultaneously pending invites per sender,
// counted across all hackathons.
const MaxPendingRequests = 5

// TeamRequest is an invite from one user to another for a hackathon.
type TeamRequest struct {
	ID          string `json:"id" gorm:"primaryKey"`
	FromUserID  string `json:"from_user_id" gorm:"not null;index;uniqueIndex:idx_team_requests_pending_pair,where:status = 'pending'"`
	ToUserID    string `json:"to_user_id" gorm:"not null;index;uniqueIndex:idx_team_requests_pending_pair,where:status = 'pending'"`
	HackathonID string `json:"hackathon_id" gorm:"not null;index"`
	Message     string `json:"message" gorm:"type:text"`
	Status      string `json:"status" gorm:"type:varchar(16);default:'pending';index"`

	Timestamps
}

// Pending reports whether the request is still actionable.
func (r *TeamRequest) Pending() bool { return r.Status == RequestStatusPending }
