package webapi

import (
	"github.com/gofiber/fiber/v2"
)

func SetupServer(listen string) error {
	webApp := fiber.New()

	setupTripCache()

	group := webApp.Group("/core")

	group.Get("version", apiVersion)

	TripsRouter(group.Group("/trips"))

	return webApp.Listen(listen)
}

func apiVersion(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"version": "1.0",
	})
}
