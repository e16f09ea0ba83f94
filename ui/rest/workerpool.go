package rest

import (
	"github.com/AzielCF/az-plant/pkg/botmonitor"
	"github.com/AzielCF/az-plant/pkg/msgworker"
	"github.com/gofiber/fiber/v2"
)

// GetWorkerPoolStats returns real-time command worker pool statistics
func GetWorkerPoolStats(c *fiber.Ctx) error {
	stats := msgworker.GetGlobalStats()
	return c.JSON(stats)
}

// GetEvents returns the recent inbound, command, outbound and cycle events.
func GetEvents(c *fiber.Ctx) error {
	return c.JSON(botmonitor.GetStats())
}

func InitRestMonitoring(app fiber.Router) {
	app.Get("/worker-pool/stats", GetWorkerPoolStats)
	app.Get("/events", GetEvents)
}
