package rest

import (
	"github.com/AzielCF/az-plant/pkg/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

func InitRestMetrics(app fiber.Router, m *metrics.Metrics, handlers ...fiber.Handler) {
	handlers = append(handlers, adaptor.HTTPHandler(m.Handler()))
	app.Get("/metrics", handlers...)
}
