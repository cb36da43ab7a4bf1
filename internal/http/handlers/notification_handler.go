package handlers

import (
	"github.com/gofiber/fiber/v2"

	"fixbay/internal/repos"
	"fixbay/internal/validate"
)

type NotificationHandler struct {
	Repo *repos.NotificationRepo
}

func (h *NotificationHandler) Inbox(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	limit := validate.Limit(c.Query("limit"))
	out, err := h.Repo.ListByUser(actor.ID, limit)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"notifications": out})
}
