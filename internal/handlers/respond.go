package handlers

import (
	"log"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/apperrors"
)

// respondData writes the success envelope.
func respondData(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// respondError maps a tagged application error to its HTTP status and
// writes the error envelope. Untagged errors are logged and reduced to
// a generic message so stack detail never reaches the client.
func respondError(c *fiber.Ctx, err error) error {
	status := apperrors.StatusOf(err)
	if status == http.StatusInternalServerError {
		log.Printf("internal error on %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   apperrors.MessageOf(err),
	})
}

// respondValidationErrors writes the multi-field validation envelope.
func respondValidationErrors(c *fiber.Ctx, errs []string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"errors":  errs,
	})
}
