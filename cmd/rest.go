package cmd

import (
	"context"
	"strings"
	"time"

	coreconfig "github.com/AzielCF/az-plant/core/config"
	domainBot "github.com/AzielCF/az-plant/domains/bot"
	domainClassifier "github.com/AzielCF/az-plant/domains/classifier"
	"github.com/AzielCF/az-plant/domains/history"
	"github.com/AzielCF/az-plant/domains/messenger"
	domainMonitor "github.com/AzielCF/az-plant/domains/monitor"
	"github.com/AzielCF/az-plant/pkg/metrics"
	"github.com/AzielCF/az-plant/pkg/msgworker"
	"github.com/AzielCF/az-plant/ui/rest"
	"github.com/AzielCF/az-plant/ui/rest/middleware"
	"github.com/AzielCF/az-plant/ui/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Serve the plant API over http",
	Long:  `Serve plant status, reading history, watering, UV toggling and image classification over http. Cycles from a separate monitor process reach /ws when Valkey is enabled.`,
	Run:   restServer,
}

func init() {
	rootCmd.AddCommand(restCmd)
}

// restDeps is everything the API exposes. Monitor is nil when the process
// does not run the monitoring loop.
type restDeps struct {
	Bot        domainBot.IBotUsecase
	Monitor    domainMonitor.IMonitorUsecase
	History    history.IHistoryRepository
	Messenger  messenger.IMessenger
	Classifier domainClassifier.IClassifier
	Settings   rest.Settings
}

func restServer(_ *cobra.Command, _ []string) {
	ctx, stop := signalContext()
	defer stop()

	bot := botService()
	deps := restDeps{
		Bot:        bot,
		History:    openHistory(ctx),
		Messenger:  outbound(newTelegram(false)),
		Classifier: newClassifier(ctx),
		Settings:   runtimeSettings(ctx, bot, nil),
	}

	if err := serveRest(ctx, deps); err != nil {
		logrus.Fatalln("Failed to start: ", err.Error())
	}
	StopApp()
}

// serveRest listens until ctx is done, then shuts the app down.
func serveRest(ctx context.Context, deps restDeps) error {
	app := newRestApp(deps)

	hubCtx, cancelHub := context.WithCancel(ctx)
	defer cancelHub()
	go websocket.RunHub(hubCtx)

	go func() {
		<-ctx.Done()
		logrus.Info("[REST] Reception of termination signal, shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
		}
	}()

	return app.Listen(":" + coreconfig.Global.App.Port)
}

func newRestApp(deps restDeps) *fiber.App {
	cfg := coreconfig.Global

	fiberConfig := fiber.Config{
		EnableTrustedProxyCheck: true,
		BodyLimit:               12 * 1024 * 1024,
		Network:                 "tcp",
		AppName:                 "Az-Plant Monitor",
		ServerHeader:            "Hidden",
	}

	// Configure proxy settings if trusted proxies are specified
	if len(cfg.App.TrustedProxies) > 0 {
		fiberConfig.TrustedProxies = cfg.App.TrustedProxies
		fiberConfig.ProxyHeader = fiber.HeaderXForwardedHost
	}

	app := fiber.New(fiberConfig)

	app.Use(requestid.New())

	origins := strings.Join(cfg.App.CorsAllowedOrigins, ", ")
	if !strings.Contains(origins, cfg.App.BaseUrl) {
		origins += ", " + cfg.App.BaseUrl
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.Recovery())

	app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		HSTSMaxAge:            31536000, // 1 Year
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; connect-src 'self' ws://localhost:*;",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	if cfg.App.Debug {
		app.Use(logger.New())
	}

	if len(cfg.App.BasicAuth) == 0 {
		logrus.Fatalln("APP_BASIC_AUTH is required. Nothing should be public; please set APP_BASIC_AUTH=<user>:<secret>[,<user2>:<secret2>] and restart.")
	}

	account := make(map[string]string)
	for _, basicAuth := range cfg.App.BasicAuth {
		ba := strings.Split(basicAuth, ":")
		if len(ba) != 2 {
			logrus.Fatalln("Basic auth is not valid, please this following format <user>:<secret>")
		}
		account[ba[0]] = ba[1]
	}
	auth := basicauth.New(basicauth.Config{
		Users: account,
		Next: func(c *fiber.Ctx) bool {
			// Allow CORS preflight without credentials.
			return c.Method() == fiber.MethodOptions
		},
	})

	rest.InitRestMetrics(app.Group(cfg.App.BasePath), metrics.Default(), auth)

	apiGroup := app.Group(cfg.App.BasePath + "/api")
	apiGroup.Use(auth)

	state := openStateStore()
	rest.InitRestPlant(apiGroup, rest.Plant{
		State:     state,
		Bot:       deps.Bot,
		Monitor:   deps.Monitor,
		History:   deps.History,
		Messenger: deps.Messenger,
		ChatID:    cfg.Telegram.ChatID,
		Pool:      msgworker.GetGlobalPool(),
	})
	rest.InitRestClassify(apiGroup, rest.Classify{Classifier: deps.Classifier, UploadDir: cfg.Paths.Images})
	rest.InitRestHealth(apiGroup, rest.Health{Version: cfg.App.Version, DataDir: cfg.Paths.Storages, Valkey: openValkey()})
	rest.InitRestSettings(apiGroup, deps.Settings)
	rest.InitRestMonitoring(apiGroup)

	websocket.RegisterRoutes(apiGroup, state)

	apiGroup.All("/*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "API Endpoint not found",
			"path":  c.Path(),
		})
	})

	return app
}
