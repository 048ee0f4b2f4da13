package authority

import (
	"errors"

	"pothole-backend/logger"
	"pothole-backend/models/department"
	authorityService "pothole-backend/services/authority"
	secretService "pothole-backend/services/secret"
	"pothole-backend/types"
	authorityTypes "pothole-backend/types/authority"
	"pothole-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// Controller handles authority onboarding and login HTTP requests
type Controller struct {
	DB      *gorm.DB
	Logger  *logger.AsyncLogger
	Service *authorityService.Service
}

// NewAuthorityController creates a new authority controller
func NewAuthorityController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *Controller {
	return &Controller{
		DB:      db,
		Logger:  asyncLogger,
		Service: authorityService.NewService(db),
	}
}

// Signup stages an authority registration and mails the verification link
func (ac *Controller) Signup(c *fiber.Ctx) error {
	var req authorityTypes.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	if !utils.ValidateEmail(req.Email) {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid email address",
		})
	}

	if _, err := ac.Service.Signup(req); err != nil {
		logger.Error("Failed to stage authority signup", err)

		if errors.Is(err, authorityService.ErrDuplicateAccount) ||
			errors.Is(err, authorityService.ErrSignupPending) {
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: "Registration already pending or email in use",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	ac.Logger.Log(utils.CreateSanitizedLogEntry(c))

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Signup successful. Please check your email to verify your account.",
	})
}

// VerifyEmail promotes a staged signup using the mailed token
func (ac *Controller) VerifyEmail(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "token query parameter is required",
		})
	}

	account, err := ac.Service.VerifyToken(token)
	if err != nil {
		logger.Error("Failed to verify authority token", err)

		switch {
		case errors.Is(err, secretService.ErrNotFound),
			errors.Is(err, secretService.ErrExpired),
			errors.Is(err, secretService.ErrAlreadyConsumed):
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: "Invalid or expired verification link",
			})
		case errors.Is(err, authorityService.ErrDuplicateAccount):
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: "Account already active",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
				Status:  fiber.StatusInternalServerError,
				Message: "Internal server error",
			})
		}
	}

	logger.Success("Authority verified: " + account.Email)

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Email verified successfully! You can now login.",
		Data:    account.ToSummary(),
	})
}

// Login authenticates an authority with email and password
func (ac *Controller) Login(c *fiber.Ctx) error {
	var req authorityTypes.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	account, err := ac.Service.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, authorityService.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Status:  fiber.StatusUnauthorized,
				Message: "Invalid email or password",
			})
		}
		logger.Error("Failed to log in authority", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	token, err := utils.GenerateAuthorityToken(account.Email)
	if err != nil {
		logger.Error("Failed to issue session token", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	ac.Logger.Log(utils.CreateSanitizedLogEntry(c))

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Login successful",
		Token:   token,
		Data:    account.ToSummary(),
	})
}

// SendOTP issues a passwordless login OTP for an active authority
func (ac *Controller) SendOTP(c *fiber.Ctx) error {
	var req authorityTypes.SendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	record, err := ac.Service.SendLoginOTP(req.Email, req.CaptchaText)
	if err != nil {
		logger.Error("Failed to send login OTP", err)

		if errors.Is(err, authorityService.ErrAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "No account found for this email",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to send OTP",
		})
	}

	ac.Logger.Log(utils.CreateSanitizedLogEntry(c))

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "OTP sent to your email",
		Data: fiber.Map{
			"expires_at": record.ExpiresAt.Format("2006-01-02 15:04:05"),
		},
	})
}

// VerifyOTP completes the passwordless login path
func (ac *Controller) VerifyOTP(c *fiber.Ctx) error {
	var req authorityTypes.VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	account, err := ac.Service.VerifyLoginOTP(req.Email, req.OTP, req.CaptchaInput)
	if err != nil {
		logger.Error("Failed to verify login OTP", err)

		switch {
		case errors.Is(err, secretService.ErrNotFound),
			errors.Is(err, secretService.ErrExpired),
			errors.Is(err, secretService.ErrAlreadyConsumed),
			errors.Is(err, secretService.ErrMismatch),
			errors.Is(err, secretService.ErrCaptchaMismatch):
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: err.Error(),
			})
		case errors.Is(err, authorityService.ErrAccountNotFound):
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "No account found for this email",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
				Status:  fiber.StatusInternalServerError,
				Message: "Internal server error",
			})
		}
	}

	token, err := utils.GenerateAuthorityToken(account.Email)
	if err != nil {
		logger.Error("Failed to issue session token", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	ac.Logger.Log(utils.CreateSanitizedLogEntry(c))

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Login successful",
		Token:   token,
		Data:    account.ToSummary(),
	})
}

// Profile returns the logged-in authority's summary
func (ac *Controller) Profile(c *fiber.Ctx) error {
	claims, ok := c.Locals("user").(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid session",
		})
	}

	email, _ := claims["email"].(string)
	account, err := ac.Service.GetByEmail(email)
	if err != nil {
		if errors.Is(err, authorityService.ErrAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Account no longer exists",
			})
		}
		logger.Error("Failed to load authority profile", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Profile retrieved successfully",
		Data:    account.ToSummary(),
	})
}

// Departments lists the seeded municipal department catalog for the signup
// form.
func (ac *Controller) Departments(c *fiber.Ctx) error {
	var departments []department.Department
	if err := ac.DB.Order("name").Find(&departments).Error; err != nil {
		logger.Error("Failed to list departments", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Departments retrieved successfully",
		Data:    departments,
	})
}
