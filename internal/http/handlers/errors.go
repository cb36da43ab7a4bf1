package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"fixbay/internal/domain"
	applog "fixbay/internal/log"
)

// respondErr maps the subsystem's typed errors to JSON responses carrying the
// fields a UI needs to render the failure without a second round-trip.
func respondErr(c *fiber.Ctx, err error) error {
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": nf.Error()})
	}
	var stock *domain.InsufficientStockError
	if errors.As(err, &stock) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":     stock.Error(),
			"productId": stock.ProductID,
			"available": stock.Available,
			"requested": stock.Requested,
		})
	}
	var trans *domain.InvalidTransitionError
	if errors.As(err, &trans) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": trans.Error(),
			"from":  trans.From,
			"to":    trans.To,
		})
	}
	var resolved *domain.AlreadyResolvedError
	if errors.As(err, &resolved) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":  resolved.Error(),
			"status": resolved.Status,
		})
	}
	var state *domain.InvalidBookingStateError
	if errors.As(err, &state) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":  state.Error(),
			"status": state.Status,
		})
	}

	// Anything else is infrastructure, not a business rule.
	applog.Error(c, "server.error", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Something went wrong. Please try again.",
	})
}
