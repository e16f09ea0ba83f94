package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the sensor, camera and notification loop",
	Long:  `Every interval: read the serial sensors, capture a photo, run the disease classifier if configured and post the update to the Telegram chat.`,
	Run:   monitorLoop,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func monitorLoop(_ *cobra.Command, _ []string) {
	ctx, stop := signalContext()
	defer stop()
	defer StopApp()

	mon := buildMonitor(ctx, outbound(newTelegram(false)))
	runtimeSettings(ctx, nil, mon)

	logrus.Infof("[MONITOR] starting, interval %s", mon.Interval())
	if err := mon.Run(ctx); err != nil {
		logrus.Errorf("[MONITOR] %v", err)
	}
}
