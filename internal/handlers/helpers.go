package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/splitpot/backend/internal/models"
)

func parseUUID(value string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(value))
}

func getRequestID(c *fiber.Ctx) string {
	if v, ok := c.Locals("requestID").(string); ok {
		return v
	}
	return ""
}

func memberResponse(m *models.Member) fiber.Map {
	return fiber.Map{
		"id":      m.ID,
		"name":    m.Name,
		"isAdmin": m.IsAdmin,
	}
}

func groupResponse(g *models.Group) fiber.Map {
	return fiber.Map{
		"id":       g.ID,
		"name":     g.Name,
		"code":     g.Code,
		"currency": g.Currency,
	}
}

func sessionResponse(member *models.Member, group *models.Group, token string) fiber.Map {
	return fiber.Map{
		"token":  token,
		"member": memberResponse(member),
		"group":  groupResponse(group),
	}
}
