package secret

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"pothole-backend/logger"
	"pothole-backend/models/secret"
	"pothole-backend/services/secret_event"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// Verification failure taxonomy. Controllers map these onto HTTP statuses.
var (
	ErrNotFound        = errors.New("no pending secret for this identifier")
	ErrExpired         = errors.New("secret has expired")
	ErrAlreadyConsumed = errors.New("secret has already been used")
	ErrMismatch        = errors.New("secret does not match")
	ErrCaptchaMismatch = errors.New("captcha does not match")
)

// Secret lifetimes by kind.
const (
	OTPTTL   = 5 * time.Minute
	TokenTTL = 24 * time.Hour
)

// Service handles issuance and verification of one-time secrets.
type Service struct {
	DB *gorm.DB
}

// NewService creates a new secret service
func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// GenerateOTP generates a random 6-digit OTP
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// GenerateToken generates an opaque verification token
func GenerateToken() string {
	return uuid.NewString()
}

// Issue creates and stores a fresh secret for the identifier, superseding
// any prior active one for the same purpose. The secret value is never
// returned to the HTTP caller; delivery happens out-of-band.
func (s *Service) Issue(identifier string, kind secret.Kind, purpose secret.Purpose, captchaText string) (*secret.Secret, error) {
	var code string
	var ttl time.Duration

	switch kind {
	case secret.KindOTP:
		otp, err := GenerateOTP()
		if err != nil {
			return nil, fmt.Errorf("failed to generate OTP: %w", err)
		}
		code = otp
		ttl = OTPTTL
	case secret.KindToken:
		code = GenerateToken()
		ttl = TokenTTL
	default:
		return nil, fmt.Errorf("unknown secret kind: %s", kind)
	}

	newSecret := &secret.Secret{
		Identifier:  identifier,
		Code:        code,
		Kind:        kind,
		Purpose:     purpose,
		CaptchaText: captchaText,
		IsUsed:      false,
		MaxRetries:  3,
		ExpiresAt:   time.Now().Add(ttl),
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// Supersede: at most one active secret per identifier and purpose.
		if err := tx.Model(&secret.Secret{}).
			Where("identifier = ? AND purpose = ? AND is_used = ?", identifier, purpose, false).
			Update("is_used", true).Error; err != nil {
			return fmt.Errorf("failed to invalidate existing secrets: %w", err)
		}

		if err := tx.Create(newSecret).Error; err != nil {
			return fmt.Errorf("failed to create secret record: %w", err)
		}

		return secret_event.SnapshotSecretToEvent(tx, newSecret, secret.EventIssued)
	})
	if err != nil {
		return nil, err
	}

	return newSecret, nil
}

// Verify consumes the active secret for the identifier and purpose. It runs
// on the caller's transaction handle so that consumption composes atomically
// with account promotion: if the caller's transaction rolls back, the secret
// stays unconsumed. Verify itself writes nothing on failure; callers hand
// the error to RecordFailure once their transaction has unwound.
func (s *Service) Verify(tx *gorm.DB, identifier, code string, purpose secret.Purpose, captchaInput string) (*secret.Secret, error) {
	var record secret.Secret

	err := tx.Where("identifier = ? AND purpose = ?", identifier, purpose).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find secret record: %w", err)
	}

	if record.IsUsed {
		return nil, ErrAlreadyConsumed
	}

	if record.IsExpired() {
		return nil, ErrExpired
	}

	if record.CaptchaText != "" &&
		subtle.ConstantTimeCompare([]byte(record.CaptchaText), []byte(captchaInput)) != 1 {
		return nil, ErrCaptchaMismatch
	}

	if subtle.ConstantTimeCompare([]byte(record.Code), []byte(code)) != 1 {
		return nil, ErrMismatch
	}

	// Compare-and-swap on the consumed flag so that concurrent submissions
	// of the same valid secret resolve to exactly one winner.
	res := tx.Model(&secret.Secret{}).
		Where("id = ? AND is_used = ?", record.ID, false).
		Update("is_used", true)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to mark secret as used: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadyConsumed
	}

	record.IsUsed = true
	if err := secret_event.SnapshotSecretToEvent(tx, &record, secret.EventConsumed); err != nil {
		return nil, fmt.Errorf("failed to record consume event: %w", err)
	}

	return &record, nil
}

// RecordFailure persists the bookkeeping of a failed verification: the
// expiry audit event, the retry counter and the secret-killing flip once the
// budget is spent. It writes on the service's own connection because the
// transaction the verification ran in rolls back on error, which would
// discard anything written inside it. Errors unrelated to verification come
// back unchanged, so callers can route any error through here.
func (s *Service) RecordFailure(identifier string, purpose secret.Purpose, cause error) error {
	switch {
	case errors.Is(cause, ErrExpired),
		errors.Is(cause, ErrMismatch),
		errors.Is(cause, ErrCaptchaMismatch):
	default:
		return cause
	}

	var record secret.Secret
	err := s.DB.Where("identifier = ? AND purpose = ?", identifier, purpose).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		logger.Error("Failed to load secret for failure bookkeeping", err)
		return cause
	}

	if errors.Is(cause, ErrExpired) {
		if err := secret_event.SnapshotSecretToEvent(s.DB, &record, secret.EventExpired); err != nil {
			logger.Error("Failed to record expiry event", err)
		}
		return cause
	}

	if record.IsUsed {
		// A concurrent attempt already spent or superseded it.
		return cause
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		record.IncrementRetry()
		if err := tx.Save(&record).Error; err != nil {
			return err
		}
		return secret_event.SnapshotSecretToEvent(tx, &record, secret.EventMismatch)
	})
	if err != nil {
		logger.Error("Failed to record failed verification attempt", err)
		return cause
	}

	if !record.CanRetry() {
		return fmt.Errorf("%w: maximum attempts exceeded, request a new code", cause)
	}
	return fmt.Errorf("%w: %d attempts remaining", cause, record.MaxRetries-record.RetryCount)
}

// ActiveSecret returns the currently valid secret for the identifier and
// purpose, or nil when none exists.
func (s *Service) ActiveSecret(identifier string, purpose secret.Purpose) (*secret.Secret, error) {
	var record secret.Secret

	err := s.DB.Where("identifier = ? AND purpose = ? AND is_used = ? AND expires_at > ?",
		identifier, purpose, false, time.Now()).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find secret record: %w", err)
	}

	return &record, nil
}

// CleanupExpired removes secrets that expired before the start of the
// previous day. Invoked lazily from issuance; there is no background sweep.
func (s *Service) CleanupExpired() error {
	cutoff := now.BeginningOfDay().AddDate(0, 0, -1)
	return s.DB.Where("expires_at < ?", cutoff).Delete(&secret.Secret{}).Error
}
