package handlers

import (
	"github.com/gofiber/fiber/v2"

	"fixbay/internal/domain"
	"fixbay/internal/services"
	"fixbay/internal/validate"
)

type PartsHandler struct {
	Parts *services.PartsService
}

// Search is public catalog browsing; no side effects.
func (h *PartsHandler) Search(c *fiber.Ctx) error {
	q, ok := validate.Q(c.Query("q"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid search query"})
	}
	limit := validate.Limit(c.Query("limit"))
	out, err := h.Parts.Search(q, c.Query("category"), c.Query("subcategory"), c.Query("compat"), limit)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"results": out, "count": len(out)})
}

type linkRequest struct {
	ProductID    string `json:"productId"`
	Quantity     int    `json:"quantity"`
	Installation bool   `json:"installationRequired"`
}

func (h *PartsHandler) Link(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	bookingID, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid booking id"})
	}

	var req linkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	productID, ok := validate.ID(req.ProductID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	if req.Quantity < 1 || req.Quantity > 500 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "quantity must be between 1 and 500"})
	}

	b, err := h.Parts.LinkProduct(actor, bookingID, productID, req.Quantity, req.Installation)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{
		"bookingId":           b.ID,
		"productCost":         b.ProductCost,
		"totalCost":           b.TotalCost,
		"priceApprovalStatus": b.ApprovalStatus,
		"linkedProducts":      b.LinkedProducts,
	})
}

func (h *PartsHandler) Unlink(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	bookingID, ok1 := validate.ID(c.Params("id"))
	productID, ok2 := validate.ID(c.Params("productId"))
	if !ok1 || !ok2 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	b, err := h.Parts.UnlinkProduct(actor, bookingID, productID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{
		"bookingId":           b.ID,
		"productCost":         b.ProductCost,
		"totalCost":           b.TotalCost,
		"priceApprovalStatus": b.ApprovalStatus,
		"linkedProducts":      b.LinkedProducts,
	})
}

type allocationRequest struct {
	Status string `json:"status"`
}

func (h *PartsHandler) UpdateAllocation(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	bookingID, ok1 := validate.ID(c.Params("id"))
	productID, ok2 := validate.ID(c.Params("productId"))
	if !ok1 || !ok2 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}
	var req allocationRequest
	if err := c.BodyParser(&req); err != nil || !domain.ValidAllocation(req.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid allocation status"})
	}

	lp, err := h.Parts.UpdateAllocation(actor, bookingID, productID, req.Status)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(lp)
}

func (h *PartsHandler) List(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	bookingID, okID := validate.ID(c.Params("id"))
	if !okID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid booking id"})
	}
	lps, err := h.Parts.LinkedProducts(bookingID, actor.ID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"linkedProducts": lps})
}
