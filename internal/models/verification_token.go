package models

import "time"

// VerificationToken is a single-use credential bound to an email
// address. At most one live token exists per identifier: issuing a new
// one deletes every prior row for that identifier.
type VerificationToken struct {
	Identifier string    `gorm:"primaryKey" json:"identifier"`
	Token      string    `gorm:"primaryKey" json:"token"`
	Expires    time.Time `gorm:"not null" json:"expires"`
}
