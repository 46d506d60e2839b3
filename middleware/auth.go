package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"Caribou/Config"
	"Caribou/Models"
)

// Verify authenticates the JWT cookie, loads the user with their profile and
// assignment sets, and stores the user in Locals. With no roles given any
// authenticated user with a profile passes; otherwise the profile role must
// be one of the listed roles.
func Verify(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cookie := c.Cookies("jwt")
		if cookie == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Not logged in.",
			})
		}

		token, err := jwt.ParseWithClaims(cookie, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
			return []byte(Config.Cfg.JWTSecret), nil
		})
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		claims, ok := token.Claims.(*jwt.RegisteredClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid token claims",
			})
		}

		var user Models.User
		result := Models.DB.
			Preload("Profile").
			Preload("Profile.Stores").
			Preload("Profile.Areas").
			Where("id = ? AND is_active = ?", claims.Issuer, true).
			First(&user)
		if result.Error != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "User not found",
			})
		}

		c.Locals("user", user)

		// Profile missing means denied everywhere, not an error.
		if user.Profile == nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "You do not have permission to access this resource",
			})
		}

		if len(roles) == 0 {
			return c.Next()
		}
		for _, role := range roles {
			if user.Profile.Role == role {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Insufficient permissions to access this resource",
		})
	}
}

// CurrentUser pulls the authenticated user set by Verify out of Locals.
func CurrentUser(c *fiber.Ctx) *Models.User {
	user, ok := c.Locals("user").(Models.User)
	if !ok {
		return nil
	}
	return &user
}
