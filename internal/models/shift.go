package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Shift struct {
	ID              string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          string    `gorm:"type:uuid;not null;index" json:"user_id"`
	StartUtc        time.Time `gorm:"not null" json:"start_utc"`
	EndUtc          time.Time `gorm:"not null" json:"end_utc"`
	Timezone        string    `gorm:"not null" json:"timezone"`
	BreakMinutes    int       `gorm:"not null;default:0" json:"break_minutes"`
	Notes           string    `json:"notes,omitempty"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (s *Shift) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	return nil
}

// ComputeDurationMinutes derives the worked minutes of a shift. The
// result is never negative, even when end precedes start or the break
// exceeds the interval.
func ComputeDurationMinutes(start, end time.Time, breakMinutes int) int {
	total := int(end.Sub(start).Minutes())

	if worked := total - breakMinutes; worked > 0 {
		return worked
	}

	return 0
}
