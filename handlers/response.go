package handlers

import (
	"strings"

	"github.com/fenilmodi00/counsel-backend/shared"
	"github.com/gofiber/fiber/v2"
)

// UserIDHeader carries the caller's identity
const UserIDHeader = "X-User-ID"

func respondError(c *fiber.Ctx, err error) error {
	serviceErr, ok := shared.AsServiceError(err)
	if !ok {
		serviceErr = shared.WrapError(err, shared.ErrorCategoryConfiguration, "INTERNAL_ERROR", "Gateway", c.Route().Path, false)
	}
	serviceErr.LogError()

	return c.Status(shared.HTTPStatusFor(serviceErr)).JSON(fiber.Map{
		"success": false,
		"error": fiber.Map{
			"category":  serviceErr.Category,
			"code":      serviceErr.Code,
			"message":   serviceErr.Message,
			"details":   serviceErr.Details,
			"retryable": serviceErr.Retryable,
		},
	})
}

func respondData(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func badBody(c *fiber.Ctx) error {
	return respondError(c, shared.NewValidationError("Gateway", c.Route().Path, "body", "Invalid request body"))
}

// userID returns the caller identity or writes a 401
func userID(c *fiber.Ctx) (string, bool) {
	id := strings.TrimSpace(c.Get(UserIDHeader))
	if id == "" {
		_ = c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error": fiber.Map{
				"category": "validation",
				"code":     "MISSING_USER",
				"message":  "X-User-ID header is required",
			},
		})
		return "", false
	}
	return id, true
}

// bearerToken returns the token forwarded upstream, if any
func bearerToken(c *fiber.Ctx) string {
	auth := c.Get(fiber.HeaderAuthorization)
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
