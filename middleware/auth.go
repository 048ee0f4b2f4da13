package middleware

import (
	"strings"

	"pothole-backend/constants"
	"pothole-backend/types"
	"pothole-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// RequireAuthority guards routes that need a logged-in authority session.
// The parsed claims are stashed in c.Locals("user") for the handlers.
func RequireAuthority() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ErrorResponse{
				Message: "Authorization token required",
				Status:  fiber.StatusUnauthorized,
			})
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ErrorResponse{
				Message: "Invalid authorization header format",
				Status:  fiber.StatusUnauthorized,
			})
		}

		claims, err := utils.ParseAuthorityToken(tokenParts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ErrorResponse{
				Message: "Invalid or expired token",
				Status:  fiber.StatusUnauthorized,
			})
		}

		if role, _ := claims["role"].(string); role != constants.RoleAuthority {
			return c.Status(fiber.StatusForbidden).JSON(types.ErrorResponse{
				Message: "Insufficient permissions",
				Status:  fiber.StatusForbidden,
			})
		}

		c.Locals("user", claims)
		return c.Next()
	}
}
