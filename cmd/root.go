package cmd

import (
	"os"
	"strings"
	"sync"

	coreconfig "github.com/AzielCF/az-plant/core/config"
	"github.com/AzielCF/az-plant/pkg/msgworker"
	"github.com/AzielCF/az-plant/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	closersMu sync.Mutex
	closers   []func()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "az-plant",
	Short: "Smart plant monitor and Telegram command bot",
	Long: `Reads plant sensors over serial, captures a photo, optionally runs a disease classifier
and posts every cycle to a Telegram chat. The same chat accepts commands to check status,
water the plant, toggle the UV light and fetch detection reports.`,
}

func init() {
	// Load environment variables first
	utils.LoadConfig(".")

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Initialize flags first, before any subcommands are added
	initFlags()

	cobra.OnInitialize(initEnvConfig, initApp)
}

func initFlags() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("port", "p", "", "change port number with --port <number> | example: --port=8080")
	flags.BoolP("debug", "d", false, "hide or displaying log with --debug <true/false> | example: --debug=true")
	flags.StringSliceP("basic-auth", "b", nil, "basic auth credential | -b=yourUsername:yourPassword")
	flags.String("base-path", "", `base path for subpath deployment --base-path <string> | example: --base-path="/plant"`)
	flags.String("serial-port", "", `serial device of the sensor board --serial-port <string> | example: --serial-port="/dev/ttyACM0"`)
	flags.Duration("interval", 0, "time between monitoring cycles --interval <duration> | example: --interval=5m")
	flags.Bool("valkey", false, "share plant state through Valkey --valkey <true/false>")

	_ = viper.BindPFlag("app_port", flags.Lookup("port"))
	_ = viper.BindPFlag("app_debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("app_basic_auth", flags.Lookup("basic-auth"))
	_ = viper.BindPFlag("app_base_path", flags.Lookup("base-path"))
	_ = viper.BindPFlag("serial_port", flags.Lookup("serial-port"))
	_ = viper.BindPFlag("valkey_enabled", flags.Lookup("valkey"))
}

// initEnvConfig loads configuration from the environment, then lets
// explicitly set flags override it.
func initEnvConfig() {
	cfg, err := coreconfig.LoadConfig()
	if err != nil {
		logrus.Fatalf("[CONFIG] %v", err)
	}

	if v := viper.GetString("app_port"); v != "" {
		cfg.App.Port = v
	}
	if viper.GetBool("app_debug") {
		cfg.App.Debug = true
	}
	if v := viper.GetStringSlice("app_basic_auth"); len(v) > 0 {
		// the env form arrives as one comma separated string
		if len(v) == 1 {
			v = strings.Split(v[0], ",")
		}
		cfg.App.BasicAuth = v
	}
	if v := viper.GetString("app_base_path"); v != "" {
		cfg.App.BasePath = v
	}
	if v := viper.GetString("serial_port"); v != "" {
		cfg.Serial.Port = v
	}
	// MONITOR_INTERVAL may be bare seconds, so only the flag is read here
	if flags := rootCmd.PersistentFlags(); flags.Changed("interval") {
		if d, err := flags.GetDuration("interval"); err == nil && d > 0 {
			cfg.Monitor.Interval = d
		}
	}
	if viper.GetBool("valkey_enabled") {
		cfg.Database.ValkeyEnabled = true
	}
	cfg.App.ServerID = utils.GetPersistentServerID(cfg.App.ServerID, cfg.Paths.Storages)
}

func initApp() {
	cfg := coreconfig.Global
	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	//preparing folder if not exist
	if err := utils.CreateFolder(cfg.Paths.Images, cfg.Paths.Reports, cfg.Paths.Storages); err != nil {
		logrus.Errorln(err)
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// onStop registers a cleanup run by StopApp, newest first.
func onStop(fn func()) {
	closersMu.Lock()
	closers = append(closers, fn)
	closersMu.Unlock()
}

// StopApp performs a clean shutdown of all connections and services.
func StopApp() {
	logrus.Info("[APP] Stopping application...")

	msgworker.StopGlobalPool()

	closersMu.Lock()
	pending := closers
	closers = nil
	closersMu.Unlock()
	for i := len(pending) - 1; i >= 0; i-- {
		pending[i]()
	}

	logrus.Info("[APP] Application stopped cleanly.")
}
