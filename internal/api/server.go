package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

var timeNow = time.Now

// Mounter is anything that can register routes, such as backup.Scheduler.
type Mounter interface {
	MountController(router fiber.Router)
}

// NewApp builds the fiber app with every controller mounted under /api.
func NewApp(allowedOrigin string, controllers ...Mounter) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Influencer Post Tracker",
		ServerHeader: "tracker",
		// Parsed values are kept in the store after the request buffer is reused.
		Immutable: true,
	})
	app.Use(recover.New())

	origins := allowedOrigin
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")
	for _, ctrl := range controllers {
		ctrl.MountController(api)
	}
	return app
}
