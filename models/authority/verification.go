package authority

import (
	"time"
)

// Verification is the staging record for an authority signup awaiting
// email confirmation. The profile snapshot is promoted into the authorities
// table once the token is presented, and the staging row is deleted.
type Verification struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"type:varchar(255);not null;unique" json:"email"`
	FullName     string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Designation  string    `gorm:"type:varchar(255);not null" json:"designation"`
	Department   string    `gorm:"type:varchar(255);not null" json:"department"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Token        string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"`
	ExpiresAt    time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsExpired checks if the verification link is past its validity window.
func (v *Verification) IsExpired() bool {
	return time.Now().After(v.ExpiresAt)
}
