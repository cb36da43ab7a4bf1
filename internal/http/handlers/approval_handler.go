package handlers

import (
	"github.com/gofiber/fiber/v2"

	"fixbay/internal/domain"
	"fixbay/internal/services"
	"fixbay/internal/validate"
)

type ApprovalHandler struct {
	Approval *services.ApprovalService
}

func (h *ApprovalHandler) Accept(c *fiber.Ctx) error {
	return h.respond(c, h.Approval.AcceptPrice)
}

func (h *ApprovalHandler) Reject(c *fiber.Ctx) error {
	return h.respond(c, h.Approval.RejectPrice)
}

func (h *ApprovalHandler) CancelBooking(c *fiber.Ctx) error {
	return h.respond(c, h.Approval.CancelAfterRejection)
}

func (h *ApprovalHandler) respond(c *fiber.Ctx, op func(domain.Actor, string) (domain.ServiceBooking, error)) error {
	actor, ok := currentActor(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	noticeID, okID := validate.ID(c.Params("id"))
	if !okID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid notice id"})
	}
	b, err := op(actor, noticeID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{
		"bookingId":           b.ID,
		"status":              b.Status,
		"priceApproved":       b.PriceApproved,
		"priceApprovalStatus": b.ApprovalStatus,
		"totalCost":           b.TotalCost,
	})
}

func (h *ApprovalHandler) Pending(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	notices, err := h.Approval.PendingNotices(actor.ID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"notices": notices})
}
