package cmd

import (
	"context"

	coreconfig "github.com/AzielCF/az-plant/core/config"
	domainBot "github.com/AzielCF/az-plant/domains/bot"
	"github.com/AzielCF/az-plant/domains/messenger"
	"github.com/AzielCF/az-plant/integrations/telegram"
	"github.com/AzielCF/az-plant/pkg/msgworker"
	"github.com/AzielCF/az-plant/usecase"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram command bot",
	Long:  `Long-poll Telegram for /status, /water, /toggle_uv, /report, /chart, /frames and /detect and push the detection reports as soon as they are written.`,
	Run:   botListener,
}

func init() {
	rootCmd.AddCommand(botCmd)
}

func botListener(_ *cobra.Command, _ []string) {
	ctx, stop := signalContext()
	defer stop()
	defer StopApp()

	adapter := newTelegram(true)
	bot := botService()
	runtimeSettings(ctx, bot, nil)

	if coreconfig.Global.Bot.ReportWatch {
		go watchReports(ctx, adapter)
	}
	if err := listenCommands(ctx, adapter, bot); err != nil {
		logrus.Errorf("[BOT] %v", err)
	}
}

// listenCommands feeds Telegram updates to the command pool until ctx is done.
func listenCommands(ctx context.Context, adapter *telegram.Adapter, bot domainBot.IBotUsecase) error {
	dispatcher := usecase.NewCommandDispatcher("telegram", bot, openStateStore(), adapter, msgworker.GetGlobalPool())
	return adapter.Listen(ctx, func(in messenger.IncomingCommand) {
		dispatcher.Handle(in)
	})
}

func watchReports(ctx context.Context, adapter *telegram.Adapter) {
	cfg := coreconfig.Global
	notifier := usecase.NewNotifierService(adapter, cfg.Telegram.ChatID, cfg.Paths.Reports)
	if err := newReportWatcher(notifier).Run(ctx); err != nil {
		logrus.Errorf("[BOT] report watcher stopped: %v", err)
	}
}
