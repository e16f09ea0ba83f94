package rest

import (
	"time"

	"github.com/AzielCF/az-plant/core/settings/application"
	domainBot "github.com/AzielCF/az-plant/domains/bot"
	domainMonitor "github.com/AzielCF/az-plant/domains/monitor"
	pkgError "github.com/AzielCF/az-plant/pkg/error"
	"github.com/AzielCF/az-plant/validations"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Settings reads and writes the runtime overrides and applies them live.
type Settings struct {
	Service  *application.SettingsService
	Bot      domainBot.IBotUsecase
	Monitor  domainMonitor.IMonitorUsecase
	Defaults EffectiveSettings
}

type EffectiveSettings struct {
	MonitorInterval time.Duration `json:"monitor_interval"`
	WaterDuration   time.Duration `json:"water_duration"`
	DetectDelay     time.Duration `json:"detect_delay"`
}

type SettingsResponse struct {
	Overrides application.RuntimeSettings `json:"overrides"`
	Effective map[string]string           `json:"effective"`
}

func InitRestSettings(app fiber.Router, handler Settings) Settings {
	app.Get("/settings", handler.GetSettings)
	app.Put("/settings", handler.UpdateSettings)
	return handler
}

func (h *Settings) GetSettings(c *fiber.Ctx) error {
	rs, err := h.Service.GetRuntimeSettings(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return success(c, "Runtime settings", h.response(*rs))
}

func (h *Settings) UpdateSettings(c *fiber.Ctx) error {
	var req application.RuntimeSettings
	if err := c.BodyParser(&req); err != nil {
		return fail(c, pkgError.ValidationError("invalid body: "+err.Error()))
	}
	if err := validations.ValidateRuntimeSettings(c.UserContext(), req); err != nil {
		return fail(c, err)
	}
	if err := h.Service.Update(c.UserContext(), req); err != nil {
		return fail(c, err)
	}
	rs, err := h.Service.GetRuntimeSettings(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	h.Apply(*rs)
	logrus.Info("[REST] runtime settings updated")
	return success(c, "Runtime settings updated", h.response(*rs))
}

// Apply pushes the resolved durations into the running services.
func (h *Settings) Apply(rs application.RuntimeSettings) EffectiveSettings {
	interval, water, detect := rs.Durations(h.Defaults.MonitorInterval, h.Defaults.WaterDuration, h.Defaults.DetectDelay)
	if h.Monitor != nil {
		h.Monitor.SetInterval(interval)
	}
	if h.Bot != nil {
		h.Bot.SetTimings(water, detect)
	}
	return EffectiveSettings{MonitorInterval: interval, WaterDuration: water, DetectDelay: detect}
}

func (h *Settings) response(rs application.RuntimeSettings) SettingsResponse {
	interval, water, detect := rs.Durations(h.Defaults.MonitorInterval, h.Defaults.WaterDuration, h.Defaults.DetectDelay)
	return SettingsResponse{
		Overrides: rs,
		Effective: map[string]string{
			"monitor_interval": interval.String(),
			"water_duration":   water.String(),
			"detect_delay":     detect.String(),
		},
	}
}
