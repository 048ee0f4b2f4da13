package routes

import (
	authorityController "pothole-backend/controllers/authority"
	citizenController "pothole-backend/controllers/citizen"
	"pothole-backend/controllers/server"
	"pothole-backend/logger"
	"pothole-backend/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	asyncLogger := logger.NewAsyncLogger(db)
	citizenCtrl := citizenController.NewCitizenController(db, asyncLogger)
	authorityCtrl := authorityController.NewAuthorityController(db, asyncLogger)

	// Start the async logger processing goroutine
	go asyncLogger.ProcessLog()

	/*=============================================================================
	| Health
	===============================================================================*/
	app.Get("/", server.Root)
	app.Get("/health", server.Health)

	/*=============================================================================
	| Citizen Routes
	===============================================================================*/
	citizenGroup := app.Group("/citizen")
	citizenGroup.Post("/send-otp", citizenCtrl.SendOTP)
	citizenGroup.Post("/verify-otp", citizenCtrl.VerifyOTP)

	/*=============================================================================
	| Authority Routes
	===============================================================================*/
	authorityGroup := app.Group("/authority")
	authorityGroup.Post("/signup", authorityCtrl.Signup)
	authorityGroup.Get("/verify", authorityCtrl.VerifyEmail)
	authorityGroup.Post("/login", authorityCtrl.Login)
	authorityGroup.Post("/send-otp", authorityCtrl.SendOTP)
	authorityGroup.Post("/verify-otp", authorityCtrl.VerifyOTP)
	authorityGroup.Get("/departments", authorityCtrl.Departments)

	authorityGroup.Get("/profile", middleware.RequireAuthority(), authorityCtrl.Profile)
}
