package models

import "errors"

// MaxTeamSize caps roster membership. A team at this size carries
// is_full = true and leaves the open-team pool.
const MaxTeamSize = 4

var ErrTeamFull = errors.New("team is already full")

// Team groups up to MaxTeamSize users for one hackathon. Members is the
// ordered roster of user ids; a jsonb containment query finds a user's team
// without a join table.
type Team struct {
	ID          string   `json:"id" gorm:"primaryKey"`
	HackathonID string   `json:"hackathon_id" gorm:"not null;index"`
	Name        string   `json:"name"`
	Members     []string `json:"members" gorm:"serializer:json;type:jsonb"`
	NeededRoles []string `json:"needed_roles" gorm:"serializer:json;type:jsonb"`
	IsFull      bool     `json:"is_full" gorm:"default:false;index"`

	Timestamps
}

// HasMember reports whether userID is already on the roster.
func (t *Team) HasMember(userID string) bool {
	for _, m := range t.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// AddMember appends userID and keeps IsFull consistent with the roster size.
// Appending an existing member is a no-op.
func (t *Team) AddMember(userID string) error {
	if t.HasMember(userID) {
		return nil
	}
	if len(t.Members) >= MaxTeamSize {
		return ErrTeamFull
	}
	t.Members = append(t.Members, userID)
	t.IsFull = len(t.Members) >= MaxTeamSize
	return nil
}
