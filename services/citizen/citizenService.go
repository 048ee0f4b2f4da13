package citizen

import (
	"errors"
	"fmt"

	"pothole-backend/httpServices/sms"
	"pothole-backend/logger"
	citizenModel "pothole-backend/models/citizen"
	secretModel "pothole-backend/models/secret"
	secretService "pothole-backend/services/secret"

	"gorm.io/gorm"
)

// ErrDuplicateAccount is returned when the phone number already belongs to
// a registered citizen.
var ErrDuplicateAccount = errors.New("citizen already registered")

// Service handles citizen onboarding
type Service struct {
	DB      *gorm.DB
	Secrets *secretService.Service
	SMS     *sms.Client
}

// NewService creates a new citizen service
func NewService(db *gorm.DB) *Service {
	return &Service{
		DB:      db,
		Secrets: secretService.NewService(db),
		SMS:     sms.NewClient(),
	}
}

// SendRegistrationOTP issues a fresh registration OTP for the phone number
// and dispatches it over SMS. A prior unconsumed OTP is superseded.
func (s *Service) SendRegistrationOTP(phoneNumber string) (*secretModel.Secret, error) {
	record, err := s.Secrets.Issue(phoneNumber, secretModel.KindOTP, secretModel.PurposeCitizenRegistration, "")
	if err != nil {
		return nil, err
	}

	// Delivery failure must not lose the stored secret; the client can
	// retry via resend once the gateway recovers.
	if err := s.SMS.SendOTP(phoneNumber, record.Code); err != nil {
		logger.Warning(fmt.Sprintf("Failed to deliver OTP SMS to %s: %v", phoneNumber, err))
	}

	if err := s.Secrets.CleanupExpired(); err != nil {
		logger.Error("Failed to clean up expired secrets", err)
	}

	return record, nil
}

// Register verifies the OTP and promotes the caller into the citizens table
// as one atomic unit. Either the secret is consumed and the account row
// exists, or neither happened.
func (s *Service) Register(phoneNumber, otp, fullName string) (*citizenModel.Citizen, error) {
	created := citizenModel.Citizen{
		FullName:    fullName,
		PhoneNumber: phoneNumber,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.Secrets.Verify(tx, phoneNumber, otp, secretModel.PurposeCitizenRegistration, ""); err != nil {
			return err
		}

		if err := tx.Create(&created).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateAccount
			}
			return fmt.Errorf("failed to create citizen: %w", err)
		}

		return nil
	})
	if err != nil {
		// Failed-attempt bookkeeping happens after the rollback so the
		// retry budget and audit trail actually persist.
		return nil, s.Secrets.RecordFailure(phoneNumber, secretModel.PurposeCitizenRegistration, err)
	}

	return &created, nil
}
