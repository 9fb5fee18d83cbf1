package models

import (
	"time"

	"gorm.io/gorm"
)

// UserProfile is the canonical participant record. List-valued fields live in
// jsonb columns via the json serializer so containment queries (registered
// hackathons, roster membership) work without join tables.
type UserProfile struct {
	ID            string   `json:"id" gorm:"primaryKey"`
	Name          string   `json:"name" gorm:"index;not null"`
	Email         string   `json:"email" gorm:"uniqueIndex;not null"`
	Role          string   `json:"role"` // e.g. "Backend Developer", "UI/UX Designer"
	Skills        []string `json:"skills" gorm:"serializer:json;type:jsonb"`
	TechStack     []string `json:"tech_stack" gorm:"serializer:json;type:jsonb"`
	Experience    []string `json:"experience" gorm:"serializer:json;type:jsonb"`
	School        string   `json:"school"`
	Location      string   `json:"location"`
	Description   string   `json:"description" gorm:"type:text"` // free-text bio
	GitHub        string   `json:"github"`
	Devpost       string   `json:"devpost"`
	Hackathons    []string `json:"hackathons" gorm:"serializer:json;type:jsonb"` // registered hackathon ids
	NumHackathons int      `json:"num_hackathons" gorm:"default:0"`
	ResumeURL     string   `json:"resume_url,omitempty"`

	Timestamps
}

// RegisteredFor reports whether the user has registered for the hackathon.
func (u *UserProfile) RegisteredFor(hackathonID string) bool {
	for _, id := range u.Hackathons {
		if id == hackathonID {
			return true
		}
	}
	return false
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
