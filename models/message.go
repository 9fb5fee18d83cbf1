package models

import "time"

// MaxMessageLength bounds a single chat message.
const MaxMessageLength = 2000

// Message is one line of team chat. Clients poll with ?since=; there is no
// push transport.
type Message struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	TeamID    string    `json:"team_id" gorm:"not null;index"`
	SenderID  string    `json:"sender_id" gorm:"not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}
