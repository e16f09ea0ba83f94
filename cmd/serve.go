package cmd

import (
	coreconfig "github.com/AzielCF/az-plant/core/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run monitor, bot and REST API in one process",
	Long:  `Run the monitoring loop, the Telegram command bot and the REST API together, sharing one plant state.`,
	Run:   serveAll,
}

func init() {
	serveCmd.Flags().Bool("no-rest", false, "do not start the http API")
	rootCmd.AddCommand(serveCmd)
}

func serveAll(cmd *cobra.Command, _ []string) {
	ctx, stop := signalContext()
	defer stop()
	defer StopApp()

	cfg := coreconfig.Global
	adapter := newTelegram(false)
	m := outbound(adapter)

	bot := botService()
	mon := buildMonitor(ctx, m)
	settings := runtimeSettings(ctx, bot, mon)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logrus.Infof("[MONITOR] starting, interval %s", mon.Interval())
		return mon.Run(ctx)
	})

	if adapter != nil {
		g.Go(func() error {
			return listenCommands(ctx, adapter, bot)
		})
		if cfg.Bot.ReportWatch {
			g.Go(func() error {
				watchReports(ctx, adapter)
				return nil
			})
		}
	}

	if noRest, _ := cmd.Flags().GetBool("no-rest"); !noRest {
		deps := restDeps{
			Bot:        bot,
			Monitor:    mon,
			History:    openHistory(ctx),
			Messenger:  m,
			Classifier: newClassifier(ctx),
			Settings:   settings,
		}
		g.Go(func() error {
			return serveRest(ctx, deps)
		})
	}

	if err := g.Wait(); err != nil {
		logrus.Errorf("[APP] %v", err)
	}
}
