package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "fixbay/internal/log"
	"fixbay/internal/services"
	"fixbay/internal/validate"
)

// CheckoutHandler fronts the storefront's direct-purchase path. It lives here
// because it competes for the same stock pool as booking reservations.
type CheckoutHandler struct {
	Checkout *services.CheckoutService
}

type purchaseRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *CheckoutHandler) Purchase(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	var req purchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	productID, okID := validate.ID(req.ProductID)
	if !okID || req.Quantity < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product or quantity"})
	}

	if err := h.Checkout.Purchase(productID, req.Quantity); err != nil {
		return respondErr(c, err)
	}
	applog.Audit(c, "checkout.purchase", map[string]any{
		"product_id": productID, "qty": req.Quantity, "actor": actor.ID, "role": actor.Role,
	})
	return c.JSON(fiber.Map{"ok": true})
}
