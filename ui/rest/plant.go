package rest

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"

	domainBot "github.com/AzielCF/az-plant/domains/bot"
	"github.com/AzielCF/az-plant/domains/history"
	"github.com/AzielCF/az-plant/domains/messenger"
	domainMonitor "github.com/AzielCF/az-plant/domains/monitor"
	"github.com/AzielCF/az-plant/domains/plant"
	"github.com/AzielCF/az-plant/pkg/msgworker"
	"github.com/AzielCF/az-plant/usecase"
	"github.com/AzielCF/az-plant/validations"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type jobDispatcher interface {
	TryDispatch(job msgworker.CommandJob) bool
}

// Plant exposes the plant state and the bot actions over HTTP.
// Monitor and History are nil when the process runs without them.
type Plant struct {
	State     plant.IStateStore
	Bot       domainBot.IBotUsecase
	Monitor   domainMonitor.IMonitorUsecase
	History   history.IHistoryRepository
	Messenger messenger.IMessenger
	ChatID    int64
	Pool      jobDispatcher
}

type StatusResponse struct {
	State   plant.State `json:"state"`
	Summary string      `json:"summary"`
}

func InitRestPlant(app fiber.Router, handler Plant) Plant {
	app.Get("/status", handler.GetStatus)
	app.Get("/readings", handler.GetReadings)
	app.Post("/cycle", handler.RunCycle)
	app.Post("/water", handler.Water)
	app.Post("/uv/toggle", handler.ToggleUV)
	return handler
}

func (h *Plant) GetStatus(c *fiber.Ctx) error {
	st, err := h.State.Get(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return success(c, "Plant status", StatusResponse{State: st, Summary: usecase.BuildStatusMessage(st)})
}

func (h *Plant) GetReadings(c *fiber.Ctx) error {
	if h.History == nil {
		return unavailable(c, "reading history")
	}
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			n = -1
		}
		limit = n
	}
	if err := validations.ValidateReadingsLimit(limit); err != nil {
		return fail(c, err)
	}
	readings, err := h.History.Recent(c.UserContext(), limit)
	if err != nil {
		return fail(c, err)
	}
	return success(c, "Recent readings", readings)
}

func (h *Plant) RunCycle(c *fiber.Ctx) error {
	if h.Monitor == nil {
		return unavailable(c, "monitor")
	}
	res, err := h.Monitor.RunCycle(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return success(c, "Cycle completed", res)
}

// Water queues a watering on the command pool and returns at once; the
// configured chat receives the usual bot replies.
func (h *Plant) Water(c *fiber.Ctx) error {
	cc := h.commandContext()
	ok := h.Pool.TryDispatch(msgworker.CommandJob{
		Source:  "rest",
		ChatKey: strconv.FormatInt(h.ChatID, 10),
		Command: string(domainBot.CommandWater),
		Handler: func(ctx context.Context) error {
			return h.Bot.Handle(ctx, cc, domainBot.CommandWater)
		},
	})
	if !ok {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "command queue full"})
	}
	water, _ := h.Bot.Timings()
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":   "accepted",
		"duration": water.String(),
	})
}

func (h *Plant) ToggleUV(c *fiber.Ctx) error {
	if err := h.Bot.Handle(c.UserContext(), h.commandContext(), domainBot.CommandToggleUV); err != nil {
		return fail(c, err)
	}
	st, err := h.State.Get(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return success(c, "UV lights "+string(st.UVLight), fiber.Map{"uv_light": st.UVLight})
}

func (h *Plant) commandContext() domainBot.CommandContext {
	m := h.Messenger
	if m == nil || h.ChatID == 0 {
		m = usecase.DiscardMessenger{}
	}
	return domainBot.CommandContext{ChatID: h.ChatID, State: h.State, Messenger: m}
}

func tempUploadPath(dir, ext string) string {
	return filepath.Join(dir, "upload_"+time.Now().Format("20060102_150405.000000000")+ext)
}

func removeQuietly(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("[REST] failed to remove upload")
	}
}
