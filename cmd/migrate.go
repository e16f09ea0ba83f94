package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	Run:   migrateDatabase,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func migrateDatabase(_ *cobra.Command, _ []string) {
	ctx, stop := signalContext()
	defer stop()
	defer StopApp()

	logrus.Info("[MIGRATION] Migrating reading history and runtime settings...")
	openHistory(ctx)
	openSettings(ctx)
	logrus.Info("[MIGRATION] Done.")
}
