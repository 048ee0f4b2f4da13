package secret

import (
	"time"
)

// Event types recorded against a secret's lifecycle.
const (
	EventIssued   = "issued"
	EventConsumed = "consumed"
	EventMismatch = "mismatch"
	EventExpired  = "expired"
)

// SecretEvent is an audit snapshot of a secret row at the moment an event
// happened to it.
type SecretEvent struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	SecretID   uint    `gorm:"not null;index" json:"secret_id"`
	Identifier string  `gorm:"type:varchar(255);not null;index" json:"identifier"`
	Kind       Kind    `gorm:"type:varchar(10);not null" json:"kind"`
	Purpose    Purpose `gorm:"type:varchar(50);not null" json:"purpose"`
	IsUsed     bool    `gorm:"default:false" json:"is_used"`
	RetryCount int     `gorm:"default:0" json:"retry_count"`

	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	EventType string `gorm:"type:varchar(50);not null" json:"event_type"`
}
