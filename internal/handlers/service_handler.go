package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Service identity reported by GET /.
const (
	ServiceName        = "API MARCHA"
	ServiceVersion     = "0.0.1"
	ServiceDescription = "Api de gerenciamento de produto do marketplace"
)

// RegisterServiceRoutes registers the identity and health routes.
// brokerConnected is reported by /health.
func RegisterServiceRoutes(router fiber.Router, brokerConnected bool) {
	router.Get("/", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"nome":        ServiceName,
			"version":     ServiceVersion,
			"description": ServiceDescription,
		})
	})

	router.Get("/health", func(c *fiber.Ctx) error {
		rabbitMQ := "disconnected"
		if brokerConnected {
			rabbitMQ = "connected"
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"rabbitMQ": rabbitMQ,
		})
	})
}
