package mcp

import (
	"context"
	"fmt"

	domainBot "github.com/AzielCF/az-plant/domains/bot"
	"github.com/AzielCF/az-plant/domains/history"
	"github.com/AzielCF/az-plant/domains/messenger"
	"github.com/AzielCF/az-plant/domains/plant"
	"github.com/AzielCF/az-plant/usecase"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const defaultReadingsLimit = 10

type PlantHandler struct {
	state     plant.IStateStore
	bot       domainBot.IBotUsecase
	history   history.IHistoryRepository
	messenger messenger.IMessenger
	chatID    int64
}

type StatusResult struct {
	State   plant.State `json:"state"`
	Summary string      `json:"summary"`
}

type SwitchResult struct {
	Pump    plant.Switch `json:"pump"`
	UVLight plant.Switch `json:"uv_light"`
}

// InitMcpPlant builds the tool handler. Replies produced by the water and
// toggle tools go to chatID through m, or are dropped when m is nil.
func InitMcpPlant(state plant.IStateStore, bot domainBot.IBotUsecase, hist history.IHistoryRepository, m messenger.IMessenger, chatID int64) *PlantHandler {
	if m == nil || chatID == 0 {
		m = usecase.DiscardMessenger{}
	}
	return &PlantHandler{state: state, bot: bot, history: hist, messenger: m, chatID: chatID}
}

func (h *PlantHandler) AddPlantTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(h.toolStatus(), h.handleStatus)
	mcpServer.AddTool(h.toolWater(), h.handleWater)
	mcpServer.AddTool(h.toolToggleUV(), h.handleToggleUV)
	if h.history != nil {
		mcpServer.AddTool(h.toolRecentReadings(), h.handleRecentReadings)
	}
}

func (h *PlantHandler) toolStatus() mcp.Tool {
	return mcp.NewTool(
		"plant_status",
		mcp.WithDescription("Return the latest sensor snapshot together with the pump and UV light state."),
		mcp.WithTitleAnnotation("Plant Status"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
	)
}

func (h *PlantHandler) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_ = request
	st, err := h.state.Get(ctx)
	if err != nil {
		return nil, err
	}
	summary := usecase.BuildStatusMessage(st)
	return mcp.NewToolResultStructured(StatusResult{State: st, Summary: summary}, summary), nil
}

func (h *PlantHandler) toolWater() mcp.Tool {
	return mcp.NewTool(
		"plant_water",
		mcp.WithDescription("Run the water pump for the configured duration. Blocks until watering finishes."),
		mcp.WithTitleAnnotation("Water Plant"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
	)
}

func (h *PlantHandler) handleWater(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_ = request
	if err := h.bot.Handle(ctx, h.commandContext(), domainBot.CommandWater); err != nil {
		return nil, err
	}
	res, err := h.switches(ctx)
	if err != nil {
		return nil, err
	}
	water, _ := h.bot.Timings()
	return mcp.NewToolResultStructured(res, fmt.Sprintf("Watered for %s, pump is %s", water, res.Pump)), nil
}

func (h *PlantHandler) toolToggleUV() mcp.Tool {
	return mcp.NewTool(
		"plant_toggle_uv",
		mcp.WithDescription("Flip the UV grow light between ON and OFF and return the new state."),
		mcp.WithTitleAnnotation("Toggle UV Light"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
	)
}

func (h *PlantHandler) handleToggleUV(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_ = request
	if err := h.bot.Handle(ctx, h.commandContext(), domainBot.CommandToggleUV); err != nil {
		return nil, err
	}
	res, err := h.switches(ctx)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultStructured(res, fmt.Sprintf("UV lights %s", res.UVLight)), nil
}

func (h *PlantHandler) toolRecentReadings() mcp.Tool {
	return mcp.NewTool(
		"plant_recent_readings",
		mcp.WithDescription("List the most recent monitoring cycles, newest first."),
		mcp.WithTitleAnnotation("Recent Readings"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of readings to return (1-500)."),
			mcp.DefaultNumber(defaultReadingsLimit),
		),
	)
}

func (h *PlantHandler) handleRecentReadings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", defaultReadingsLimit)
	if limit < 1 || limit > 500 {
		return mcp.NewToolResultError("limit must be between 1 and 500"), nil
	}
	readings, err := h.history.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultStructured(readings, fmt.Sprintf("Found %d readings", len(readings))), nil
}

func (h *PlantHandler) commandContext() domainBot.CommandContext {
	return domainBot.CommandContext{ChatID: h.chatID, State: h.state, Messenger: h.messenger}
}

func (h *PlantHandler) switches(ctx context.Context) (SwitchResult, error) {
	st, err := h.state.Get(ctx)
	if err != nil {
		return SwitchResult{}, err
	}
	return SwitchResult{Pump: st.Pump, UVLight: st.UVLight}, nil
}
