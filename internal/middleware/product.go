package middleware

import (
	"bytes"
	"encoding/json"

	"marcha/internal/models"
	"marcha/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// LocalProductPatch is the Locals key ValidProductBody stores the patch under.
const LocalProductPatch = "product_patch"

// ValidProductID rejects requests whose :id is not a product identifier.
func ValidProductID(validate *validator.Validate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := validate.Var(c.Params("id"), "required,uuid"); err != nil {
			return response.Fail(c, fiber.StatusBadRequest, "id de produto inválido", nil)
		}
		return c.Next()
	}
}

// ValidProductBody decodes and validates a product patch body. Unknown
// fields and empty patches are rejected.
func ValidProductBody(validate *validator.Validate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var patch models.ProductPatch
		decoder := json.NewDecoder(bytes.NewReader(c.Body()))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&patch); err != nil {
			return response.Fail(c, fiber.StatusBadRequest, "Corpo da requisição inválido", err.Error())
		}
		if patch.Empty() {
			return response.Fail(c, fiber.StatusBadRequest, "Nenhum campo para alterar", nil)
		}
		if err := validate.Struct(patch); err != nil {
			return response.Fail(c, fiber.StatusBadRequest, "Campos inválidos", models.ValidationMessages(err))
		}

		c.Locals(LocalProductPatch, patch)
		return c.Next()
	}
}

// ProductPatch returns the patch stored by ValidProductBody.
func ProductPatch(c *fiber.Ctx) (models.ProductPatch, bool) {
	patch, ok := c.Locals(LocalProductPatch).(models.ProductPatch)
	return patch, ok
}
