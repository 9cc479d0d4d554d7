package handlers

import (
	"errors"
	"strings"

	"github.com/MuhamadAgungGumelar/support-console-be/internal/core/export"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/core/llm"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/models"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/repositories"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/services"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

var badRequestErrors = []error{
	models.ErrInvalidLabel,
	models.ErrInvalidStatus,
	services.ErrEmptyMessage,
	services.ErrInvalidPhone,
	services.ErrInvalidUser,
	export.ErrUnsupportedFormat,
}

// respondError maps service errors onto HTTP status codes
func respondError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, repositories.ErrNotImplemented):
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, llm.ErrNotConfigured):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("❌ Request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// Agents identify themselves with X-User-Id / X-User-Name; authentication happens upstream
const (
	headerUserID   = "X-User-Id"
	headerUserName = "X-User-Name"
)

func actorFrom(c *fiber.Ctx) models.User {
	return models.User{
		ID:   strings.TrimSpace(c.Get(headerUserID)),
		Name: strings.TrimSpace(c.Get(headerUserName)),
	}
}
