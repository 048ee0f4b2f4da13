package authority

import (
	"fmt"
	"strings"
)

// SignupRequest represents the request payload for authority signup
type SignupRequest struct {
	Email       string `json:"email" validate:"required,email"`
	FullName    string `json:"full_name" validate:"required,min=1,max=255"`
	Designation string `json:"designation" validate:"required,min=1,max=255"`
	Department  string `json:"department" validate:"required,min=1,max=255"`
	Password    string `json:"password" validate:"required,min=8"`
}

// LoginRequest represents the request payload for password login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SendOTPRequest represents the request payload for the OTP login path.
// CaptchaText is the expected answer of the CAPTCHA the client rendered.
type SendOTPRequest struct {
	Email       string `json:"email" validate:"required,email"`
	CaptchaText string `json:"captcha_text" validate:"required"`
}

// VerifyOTPRequest represents the request payload for completing OTP login
type VerifyOTPRequest struct {
	Email        string `json:"email" validate:"required,email"`
	OTP          string `json:"otp" validate:"required,len=6"`
	CaptchaInput string `json:"captcha_input" validate:"required"`
}

func (r *SignupRequest) Validate() error {
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("email is invalid")
	}
	if r.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	if r.Designation == "" {
		return fmt.Errorf("designation is required")
	}
	if r.Department == "" {
		return fmt.Errorf("department is required")
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

func (r *LoginRequest) Validate() error {
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

func (r *SendOTPRequest) Validate() error {
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if r.CaptchaText == "" {
		return fmt.Errorf("captcha_text is required")
	}
	return nil
}

func (r *VerifyOTPRequest) Validate() error {
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if r.OTP == "" {
		return fmt.Errorf("otp is required")
	}
	if len(r.OTP) != 6 {
		return fmt.Errorf("otp must be 6 digits")
	}
	if r.CaptchaInput == "" {
		return fmt.Errorf("captcha_input is required")
	}
	return nil
}
