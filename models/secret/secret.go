package secret

import (
	"time"
)

// Kind distinguishes short numeric OTPs from opaque verification tokens.
type Kind string

const (
	KindOTP   Kind = "otp"
	KindToken Kind = "token"
)

// Purpose ties a secret to the flow that issued it.
type Purpose string

const (
	PurposeCitizenRegistration Purpose = "citizen_registration"
	PurposeAuthorityLogin      Purpose = "authority_login"
)

// Secret represents an issued, not-yet-consumed one-time secret for an
// identifier (phone number or email address).
type Secret struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Identifier    string     `gorm:"type:varchar(255);not null;index:idx_secret_identifier_purpose" json:"identifier"`
	Code          string     `gorm:"type:varchar(64);not null" json:"-"`
	Kind          Kind       `gorm:"type:varchar(10);not null" json:"kind"`
	Purpose       Purpose    `gorm:"type:varchar(50);not null;index:idx_secret_identifier_purpose" json:"purpose"`
	CaptchaText   string     `gorm:"type:varchar(16)" json:"-"`
	IsUsed        bool       `gorm:"default:false" json:"is_used"`
	RetryCount    int        `gorm:"default:0" json:"retry_count"`
	MaxRetries    int        `gorm:"default:3" json:"max_retries"`
	LastAttemptAt *time.Time `gorm:"index" json:"last_attempt_at,omitempty"`
	ExpiresAt     time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsExpired checks if the secret has passed its expiry time.
func (s *Secret) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// CanRetry reports whether another verification attempt is allowed.
func (s *Secret) CanRetry() bool {
	return !s.IsUsed && !s.IsExpired() && s.RetryCount < s.MaxRetries
}

// IncrementRetry records a failed verification attempt. Exhausting the
// retry budget invalidates the secret; the caller has to request a new one.
func (s *Secret) IncrementRetry() {
	now := time.Now()
	s.RetryCount++
	s.LastAttemptAt = &now

	if s.RetryCount >= s.MaxRetries {
		s.IsUsed = true
	}
}
