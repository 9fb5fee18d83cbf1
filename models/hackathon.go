package models

import (
	"time"
)

// Hackathon is read-mostly; the lifecycle scheduler flips IsActive once
// EndDate passes.
type Hackathon struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;not null"`
	Type        string    `json:"type"` // e.g. "in-person", "online", "hybrid"
	Location    string    `json:"location"`
	URL         string    `json:"url"`
	Description string    `json:"description" gorm:"type:text"`
	ImageURL    string    `json:"image_url"`
	StartDate   time.Time `json:"start_date" gorm:"index"`
	EndDate     time.Time `json:"end_date"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`

	Timestamps
}
