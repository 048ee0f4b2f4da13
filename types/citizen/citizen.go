package citizen

import (
	"fmt"
)

// SendOTPRequest represents the request payload for requesting a citizen
// registration OTP
type SendOTPRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,min=10,max=20"`
}

// VerifyOTPRequest represents the request payload for verifying a citizen
// registration OTP and completing the registration
type VerifyOTPRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,min=10,max=20"`
	OTP         string `json:"otp" validate:"required,len=6"`
	FullName    string `json:"full_name" validate:"required,min=1,max=255"`
}

// OTPResponse represents the response for OTP operations
type OTPResponse struct {
	Message   string `json:"message"`
	ExpiresAt string `json:"expires_at,omitempty"`
	Success   bool   `json:"success"`
}

func (r *SendOTPRequest) Validate() error {
	if r.PhoneNumber == "" {
		return fmt.Errorf("phone_number is required")
	}
	return nil
}

func (r *VerifyOTPRequest) Validate() error {
	if r.PhoneNumber == "" {
		return fmt.Errorf("phone_number is required")
	}
	if r.OTP == "" {
		return fmt.Errorf("otp is required")
	}
	if len(r.OTP) != 6 {
		return fmt.Errorf("otp must be 6 digits")
	}
	if r.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	return nil
}
