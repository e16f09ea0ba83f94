package cmd

import (
	"context"
	"fmt"

	coreconfig "github.com/AzielCF/az-plant/core/config"
	"github.com/AzielCF/az-plant/ui/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the plant MCP server using SSE",
	Long:  `Start an MCP (Model Context Protocol) server using Server-Sent Events (SSE) transport so AI agents can read the plant status and history, water the plant and toggle the UV light.`,
	Run:   mcpServer,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("mcp-port", "", "Port for the SSE MCP server")
	mcpCmd.Flags().String("mcp-host", "", "Host for the SSE MCP server")
}

func mcpServer(cmd *cobra.Command, _ []string) {
	ctx, stop := signalContext()
	defer stop()
	defer StopApp()

	cfg := coreconfig.Global
	if v, _ := cmd.Flags().GetString("mcp-port"); v != "" {
		cfg.MCP.Port = v
	}
	if v, _ := cmd.Flags().GetString("mcp-host"); v != "" {
		cfg.MCP.Host = v
	}

	bot := botService()
	runtimeSettings(ctx, bot, nil)

	mcpServer := server.NewMCPServer(
		"Az-Plant MCP Server",
		cfg.App.Version,
		server.WithToolCapabilities(true),
	)

	plantHandler := mcp.InitMcpPlant(openStateStore(), bot, openHistory(ctx), outbound(newTelegram(false)), cfg.Telegram.ChatID)
	plantHandler.AddPlantTools(mcpServer)

	sseServer := server.NewSSEServer(
		mcpServer,
		server.WithBaseURL(fmt.Sprintf("http://%s:%s", cfg.MCP.Host, cfg.MCP.Port)),
		server.WithKeepAlive(true),
	)

	addr := fmt.Sprintf("%s:%s", cfg.MCP.Host, cfg.MCP.Port)
	logrus.Printf("Starting plant MCP SSE server on %s", addr)
	logrus.Printf("SSE endpoint: http://%s/sse", addr)
	logrus.Printf("Message endpoint: http://%s/message", addr)

	go func() {
		<-ctx.Done()
		logrus.Info("[MCP] Reception of termination signal, shutting down gracefully...")
		if err := sseServer.Shutdown(context.Background()); err != nil {
			logrus.Errorf("[MCP] shutdown: %v", err)
		}
	}()

	if err := sseServer.Start(addr); err != nil && ctx.Err() == nil {
		logrus.Errorf("Failed to start SSE server: %v", err)
	}
}
