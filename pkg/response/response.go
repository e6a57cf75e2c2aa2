// Package response writes the JSON envelope every endpoint answers with:
// {status, message, data} on success and {status, message, desc} on failure.
package response

import "github.com/gofiber/fiber/v2"

// Envelope is the body of every API response.
type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Desc    any    `json:"desc,omitempty"`
}

// Success writes a success envelope. data may be nil.
func Success(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// Fail writes a failure envelope. desc may be nil.
func Fail(c *fiber.Ctx, status int, message string, desc any) error {
	return c.Status(status).JSON(Envelope{
		Status:  status,
		Message: message,
		Desc:    desc,
	})
}

// ServerError writes a 500 envelope describing err.
func ServerError(c *fiber.Ctx, message string, err error) error {
	return Fail(c, fiber.StatusInternalServerError, message, err.Error())
}
