package citizen

import (
	"errors"

	"pothole-backend/logger"
	citizenService "pothole-backend/services/citizen"
	secretService "pothole-backend/services/secret"
	"pothole-backend/types"
	citizenTypes "pothole-backend/types/citizen"
	"pothole-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Controller handles citizen onboarding HTTP requests
type Controller struct {
	DB      *gorm.DB
	Logger  *logger.AsyncLogger
	Service *citizenService.Service
}

// NewCitizenController creates a new citizen controller
func NewCitizenController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *Controller {
	return &Controller{
		DB:      db,
		Logger:  asyncLogger,
		Service: citizenService.NewService(db),
	}
}

// SendOTP issues a registration OTP for the provided phone number
func (cc *Controller) SendOTP(c *fiber.Ctx) error {
	var req citizenTypes.SendOTPRequest
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

	if !utils.ValidatePhoneNumber(req.PhoneNumber) {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid phone number",
		})
	}

	record, err := cc.Service.SendRegistrationOTP(req.PhoneNumber)
	if err != nil {
		logger.Error("Failed to send registration OTP", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to send OTP",
		})
	}

	cc.Logger.Log(utils.CreateSanitizedLogEntry(c))

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "OTP sent successfully",
		Data: citizenTypes.OTPResponse{
			Message:   "OTP sent to your phone number",
			ExpiresAt: record.ExpiresAt.Format("2006-01-02 15:04:05"),
			Success:   true,
		},
	})
}

// VerifyOTP verifies the OTP and completes the citizen registration
func (cc *Controller) VerifyOTP(c *fiber.Ctx) error {
	var req citizenTypes.VerifyOTPRequest
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

	account, err := cc.Service.Register(req.PhoneNumber, req.OTP, req.FullName)
	if err != nil {
		logger.Error("Failed to verify citizen OTP", err)

		switch {
		case errors.Is(err, secretService.ErrNotFound),
			errors.Is(err, secretService.ErrExpired),
			errors.Is(err, secretService.ErrAlreadyConsumed),
			errors.Is(err, secretService.ErrMismatch):
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: err.Error(),
			})
		case errors.Is(err, citizenService.ErrDuplicateAccount):
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: "Citizen already registered",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
				Status:  fiber.StatusInternalServerError,
				Message: "Internal server error",
			})
		}
	}

	cc.Logger.Log(utils.CreateSanitizedLogEntry(c))
	logger.Success("Citizen registered: " + account.PhoneNumber)

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Citizen verified and registered successfully",
		Data:    account,
	})
}
