package server

import (
	"github.com/gofiber/fiber/v2"
)

// Root returns the service banner with the available namespaces.
func Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Pothole Detection Backend Running",
		"status":  "healthy",
		"endpoints": fiber.Map{
			"citizen":   "/citizen",
			"authority": "/authority",
		},
	})
}

// Health is the liveness probe.
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": "pothole-backend",
	})
}
