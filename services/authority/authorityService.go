package authority

import (
	"errors"
	"fmt"
	"time"

	"pothole-backend/httpServices/mailer"
	"pothole-backend/logger"
	authorityModel "pothole-backend/models/authority"
	secretModel "pothole-backend/models/secret"
	secretService "pothole-backend/services/secret"
	authorityTypes "pothole-backend/types/authority"
	"pothole-backend/utils"

	"gorm.io/gorm"
)

var (
	// ErrDuplicateAccount is returned when the email already belongs to an
	// active authority account.
	ErrDuplicateAccount = errors.New("email already in use")
	// ErrSignupPending is returned when an unexpired signup for the email
	// is still awaiting verification.
	ErrSignupPending = errors.New("registration already pending for this email")
	// ErrAccountNotFound is returned when no active account exists for the
	// email on the OTP login path.
	ErrAccountNotFound = errors.New("no account for this email")
	// ErrInvalidCredentials is returned for both unknown email and wrong
	// password; callers must not be able to tell which.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Service handles authority onboarding and login
type Service struct {
	DB      *gorm.DB
	Secrets *secretService.Service
	Mailer  *mailer.Mailer
}

// NewService creates a new authority service
func NewService(db *gorm.DB) *Service {
	return &Service{
		DB:      db,
		Secrets: secretService.NewService(db),
		Mailer:  mailer.NewMailer(),
	}
}

// Signup stages a registration, generates a verification token and mails the
// activation link. An expired pending signup for the same email is replaced;
// an unexpired one blocks re-signup.
func (s *Service) Signup(req authorityTypes.SignupRequest) (*authorityModel.Verification, error) {
	var existing authorityModel.Authority
	err := s.DB.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateAccount
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	staging := authorityModel.Verification{
		Email:        req.Email,
		FullName:     req.FullName,
		Designation:  req.Designation,
		Department:   req.Department,
		PasswordHash: passwordHash,
		Token:        secretService.GenerateToken(),
		ExpiresAt:    time.Now().Add(secretService.TokenTTL),
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var pending authorityModel.Verification
		err := tx.Where("email = ?", req.Email).First(&pending).Error
		switch {
		case err == nil:
			if !pending.IsExpired() {
				return ErrSignupPending
			}
			if err := tx.Delete(&pending).Error; err != nil {
				return fmt.Errorf("failed to drop expired signup: %w", err)
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("failed to check pending signup: %w", err)
		}

		if err := tx.Create(&staging).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrSignupPending
			}
			return fmt.Errorf("failed to stage signup: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.Mailer.SendVerificationLink(staging.Email, staging.FullName, staging.Token); err != nil {
		logger.Warning(fmt.Sprintf("Failed to mail verification link to %s: %v", staging.Email, err))
	}

	return &staging, nil
}

// VerifyToken promotes a staged signup into an active authority account.
// Promotion and staging-row deletion happen in one transaction, so a second
// presentation of the same token finds nothing.
func (s *Service) VerifyToken(token string) (*authorityModel.Authority, error) {
	var pending authorityModel.Verification
	err := s.DB.Where("token = ?", token).First(&pending).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, secretService.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up verification: %w", err)
	}

	if pending.IsExpired() {
		return nil, secretService.ErrExpired
	}

	account := authorityModel.Authority{
		Email:        pending.Email,
		FullName:     pending.FullName,
		Designation:  pending.Designation,
		Department:   pending.Department,
		PasswordHash: pending.PasswordHash,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&account).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateAccount
			}
			return fmt.Errorf("failed to create authority: %w", err)
		}

		res := tx.Where("id = ?", pending.ID).Delete(&authorityModel.Verification{})
		if res.Error != nil {
			return fmt.Errorf("failed to remove staging row: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Lost a race with a concurrent verification of the same token.
			return secretService.ErrAlreadyConsumed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &account, nil
}

// Login verifies a password against the stored hash. Unknown email and wrong
// password are indistinguishable to the caller, in error shape and timing.
func (s *Service) Login(email, password string) (*authorityModel.Authority, error) {
	var account authorityModel.Authority
	err := s.DB.Where("email = ?", email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.BurnPasswordCheck(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if !utils.CheckPassword(account.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return &account, nil
}

// GetByEmail returns the active account for the email.
func (s *Service) GetByEmail(email string) (*authorityModel.Authority, error) {
	var account authorityModel.Authority
	err := s.DB.Where("email = ?", email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	return &account, nil
}

// SendLoginOTP issues a login OTP for an active authority and mails it. The
// expected CAPTCHA answer is stored alongside the secret and checked when
// the OTP is submitted.
func (s *Service) SendLoginOTP(email, captchaText string) (*secretModel.Secret, error) {
	var account authorityModel.Authority
	err := s.DB.Where("email = ?", email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	record, err := s.Secrets.Issue(email, secretModel.KindOTP, secretModel.PurposeAuthorityLogin, captchaText)
	if err != nil {
		return nil, err
	}

	if err := s.Mailer.SendLoginOTP(email, record.Code); err != nil {
		logger.Warning(fmt.Sprintf("Failed to mail login OTP to %s: %v", email, err))
	}

	return record, nil
}

// VerifyLoginOTP consumes the login OTP and returns the account it belongs
// to. The submitted CAPTCHA input must match the answer stored at issue time.
func (s *Service) VerifyLoginOTP(email, otp, captchaInput string) (*authorityModel.Authority, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		_, err := s.Secrets.Verify(tx, email, otp, secretModel.PurposeAuthorityLogin, captchaInput)
		return err
	})
	if err != nil {
		// Recorded after the rollback so the retry budget and audit
		// trail actually persist.
		return nil, s.Secrets.RecordFailure(email, secretModel.PurposeAuthorityLogin, err)
	}

	var account authorityModel.Authority
	if err := s.DB.Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	return &account, nil
}
