package model

import "time"

// Activity is a usage telemetry record (page views and similar events).
type Activity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Page      string    `gorm:"size:128;not null;index" json:"page"`
	Type      string    `gorm:"size:64;not null" json:"type"`
	Metadata  string    `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"timestamp"`
}
