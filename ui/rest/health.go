package rest

import (
	"context"
	"runtime"
	"time"

	"github.com/AzielCF/az-plant/core/config"
	"github.com/AzielCF/az-plant/infrastructure/valkey"
	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"
)

type HostStats struct {
	Hostname      string  `json:"hostname"`
	Platform      string  `json:"platform"`
	UptimeSeconds uint64  `json:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemUsed       string  `json:"mem_used"`
	MemTotal      string  `json:"mem_total"`
	MemPercent    float64 `json:"mem_percent"`
	DiskFree      string  `json:"disk_free"`
	DiskPercent   float64 `json:"disk_percent"`
	Goroutines    int     `json:"goroutines"`
}

type HealthResponse struct {
	Status    string         `json:"status"`
	Version   string         `json:"version"`
	Host      HostStats      `json:"host"`
	Valkey    string         `json:"valkey"`
	Settings  map[string]any `json:"settings"`
	CheckedAt time.Time      `json:"checked_at"`
}

type Health struct {
	Version string
	DataDir string
	Valkey  *valkey.Client
	collect func(ctx context.Context, dir string) HostStats
}

func InitRestHealth(app fiber.Router, handler Health) Health {
	if handler.collect == nil {
		handler.collect = collectHostStats
	}
	app.Get("/health", handler.GetHealth)
	return handler
}

func (h *Health) GetHealth(c *fiber.Ctx) error {
	res := HealthResponse{
		Status:    "ok",
		Version:   h.Version,
		Host:      h.collect(c.UserContext(), h.DataDir),
		Valkey:    "disabled",
		Settings:  config.GetAllSettings(),
		CheckedAt: time.Now().UTC(),
	}
	if h.Valkey != nil {
		if h.Valkey.IsConnected() {
			res.Valkey = "connected"
		} else {
			res.Valkey = "unreachable"
			res.Status = "degraded"
		}
	}
	return success(c, "Health status retrieved", res)
}

// collectHostStats reads what gopsutil can see; unreadable values stay zero.
func collectHostStats(ctx context.Context, dir string) HostStats {
	stats := HostStats{Goroutines: runtime.NumGoroutine()}

	if info, err := host.InfoWithContext(ctx); err == nil {
		stats.Hostname = info.Hostname
		stats.Platform = info.Platform + " " + info.PlatformVersion
		stats.UptimeSeconds = info.Uptime
	} else {
		logrus.WithError(err).Debug("[REST] host info unavailable")
	}
	if pct, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pct) > 0 {
		stats.CPUPercent = pct[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		stats.MemUsed = humanize.Bytes(vm.Used)
		stats.MemTotal = humanize.Bytes(vm.Total)
		stats.MemPercent = vm.UsedPercent
	}
	if dir == "" {
		dir = "."
	}
	if du, err := disk.UsageWithContext(ctx, dir); err == nil {
		stats.DiskFree = humanize.Bytes(du.Free)
		stats.DiskPercent = du.UsedPercent
	}
	return stats
}
