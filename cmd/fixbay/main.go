package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"fixbay/internal/config"
	"fixbay/internal/http/handlers"
	applog "fixbay/internal/log"
	"fixbay/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Log and answer with a friendly message; never leak internals
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Something went wrong. Please try again.",
			})
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
	}))

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db)
	auth := handlers.RequireUser(deps.Users)

	api := app.Group("/api/v1")

	// Catalog search (public; tighter rate limit)
	api.Get("/parts/search", limiter.New(limiter.Config{Max: 20, Expiration: time.Minute}),
		deps.PartsHandler.Search)

	// Booking parts (provider-driven)
	api.Post("/bookings/:id/parts", auth, deps.PartsHandler.Link)
	api.Delete("/bookings/:id/parts/:productId", auth, deps.PartsHandler.Unlink)
	api.Patch("/bookings/:id/parts/:productId/allocation", auth, deps.PartsHandler.UpdateAllocation)
	api.Get("/bookings/:id/parts", auth, deps.PartsHandler.List)

	// Price approval (customer-driven)
	api.Get("/notices", auth, deps.ApprovalHandler.Pending)
	api.Post("/notices/:id/accept", auth, deps.ApprovalHandler.Accept)
	api.Post("/notices/:id/reject", auth, deps.ApprovalHandler.Reject)
	api.Post("/notices/:id/cancel-booking", auth, deps.ApprovalHandler.CancelBooking)

	// Notification inbox & provider realtime stream
	api.Get("/notifications", auth, deps.NotificationHandler.Inbox)
	api.Get("/events/stream", auth, deps.EventsHandler.Stream)

	// Storefront checkout (shares the stock pool with reservations)
	api.Post("/checkout/purchase", auth, deps.CheckoutHandler.Purchase)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).JSON(fiber.Map{"error": "not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
