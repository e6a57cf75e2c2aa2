package middleware

import (
	"errors"
	"log"

	"marcha/internal/services"
	"marcha/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by SessionToken.
const (
	LocalUserID   = "user_id"
	LocalUsername = "username"
)

// SessionToken decodes the :token path parameter and stores the session
// user in the Fiber context. Bad tokens stop the chain with a 400.
func SessionToken(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := authService.ValidateToken(c.Params("token"))
		if err != nil {
			if errors.Is(err, services.ErrTokenExpired) {
				return response.Fail(c, fiber.StatusBadRequest, services.ErrTokenExpired.Error(), nil)
			}
			if !errors.Is(err, services.ErrTokenInvalid) {
				log.Printf("Session token decoding failed: %v", err)
			}
			return response.Fail(c, fiber.StatusBadRequest, services.ErrTokenInvalid.Error(), nil)
		}

		c.Locals(LocalUserID, session.UserID)
		c.Locals(LocalUsername, session.Username)
		return c.Next()
	}
}

// SessionUserID returns the user ID stored by SessionToken.
func SessionUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}
