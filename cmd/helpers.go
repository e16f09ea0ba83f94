package cmd

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	coreconfig "github.com/AzielCF/az-plant/core/config"
	coreDB "github.com/AzielCF/az-plant/core/database"
	"github.com/AzielCF/az-plant/core/settings/application"
	domainBot "github.com/AzielCF/az-plant/domains/bot"
	domainClassifier "github.com/AzielCF/az-plant/domains/classifier"
	"github.com/AzielCF/az-plant/domains/history"
	"github.com/AzielCF/az-plant/domains/messenger"
	domainMonitor "github.com/AzielCF/az-plant/domains/monitor"
	domainNotifier "github.com/AzielCF/az-plant/domains/notifier"
	"github.com/AzielCF/az-plant/domains/plant"
	"github.com/AzielCF/az-plant/infrastructure/camera"
	"github.com/AzielCF/az-plant/infrastructure/mqtt"
	"github.com/AzielCF/az-plant/infrastructure/reportwatch"
	"github.com/AzielCF/az-plant/infrastructure/serial"
	"github.com/AzielCF/az-plant/infrastructure/valkey"
	"github.com/AzielCF/az-plant/integrations/classifier"
	"github.com/AzielCF/az-plant/integrations/telegram"
	"github.com/AzielCF/az-plant/repository"
	"github.com/AzielCF/az-plant/ui/rest"
	"github.com/AzielCF/az-plant/ui/websocket"
	"github.com/AzielCF/az-plant/usecase"
	"github.com/AzielCF/az-plant/validations"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Shared per process, so serve wires one state store into every surface.
var (
	vkOnce     sync.Once
	vkClient   *valkey.Client
	stateOnce  sync.Once
	stateStore plant.IStateStore
	botOnce    sync.Once
	botUsecase domainBot.IBotUsecase
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func openDatabase() *gorm.DB {
	if coreDB.GlobalDB != nil {
		return coreDB.GlobalDB
	}
	db, err := coreDB.NewDatabase(coreconfig.Global)
	if err != nil {
		logrus.Fatalf("[DB] %v", err)
	}
	onStop(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func openHistory(ctx context.Context) history.IHistoryRepository {
	repo := repository.NewReadingGormRepository(openDatabase())
	if err := repo.Init(ctx); err != nil {
		logrus.Fatalf("[DB] failed to init reading history: %v", err)
	}
	return repo
}

func openSettings(ctx context.Context) *application.SettingsService {
	svc := application.NewSettingsService(openDatabase())
	if err := svc.Init(ctx); err != nil {
		logrus.Fatalf("[DB] failed to init runtime settings: %v", err)
	}
	return svc
}

// openValkey returns nil when Valkey is disabled or unreachable.
func openValkey() *valkey.Client {
	vkOnce.Do(func() {
		cfg := coreconfig.Global.Database
		if !cfg.ValkeyEnabled {
			return
		}
		client, err := valkey.NewClient(valkey.FromDatabaseConfig(cfg))
		if err != nil {
			logrus.Warnf("[VALKEY] %v; falling back to in-memory state", err)
			return
		}
		logrus.Infof("[VALKEY] connected to %s", cfg.ValkeyAddress)
		vkClient = client
		onStop(client.Close)
		websocket.SetValkeyClient(client, coreconfig.Global.App.ServerID)
	})
	return vkClient
}

func openStateStore() plant.IStateStore {
	stateOnce.Do(func() {
		if client := openValkey(); client != nil {
			stateStore = repository.NewValkeyStateStore(client)
			return
		}
		stateStore = repository.NewMemoryStateStore()
	})
	return stateStore
}

func botService() domainBot.IBotUsecase {
	botOnce.Do(func() {
		cfg := coreconfig.Global
		botUsecase = usecase.NewBotService(cfg.Paths.Reports, cfg.Bot.WaterDuration, cfg.Bot.DetectDelay)
	})
	return botUsecase
}

// telegramEnabled reports whether a Telegram adapter should be built. A missing
// token is only an error when the caller cannot run without one.
func telegramEnabled(ctx context.Context, cfg coreconfig.TelegramConfig, required bool) (bool, error) {
	if cfg.Token == "" && !required {
		return false, nil
	}
	if err := validations.ValidateTelegramConfig(ctx, cfg); err != nil {
		return false, err
	}
	return true, nil
}

// newTelegram returns nil when no token is configured, unless required.
func newTelegram(required bool) *telegram.Adapter {
	cfg := coreconfig.Global.Telegram
	enabled, err := telegramEnabled(context.Background(), cfg, required)
	if err != nil {
		logrus.Fatalf("[TELEGRAM] %v", err)
	}
	if !enabled {
		logrus.Warn("[TELEGRAM] TELEGRAM_BOT_TOKEN not set; chat delivery disabled")
		return nil
	}
	adapter, err := telegram.NewAdapter(cfg.Token, cfg.Debug)
	if err != nil {
		logrus.Fatalf("[TELEGRAM] %v", err)
	}
	return adapter
}

// outbound avoids storing a nil *telegram.Adapter in the interface.
func outbound(adapter *telegram.Adapter) messenger.IMessenger {
	if adapter == nil {
		return usecase.DiscardMessenger{}
	}
	return adapter
}

// newClassifier returns nil when no provider is configured.
func newClassifier(ctx context.Context) domainClassifier.IClassifier {
	cfg := coreconfig.Global
	if err := validations.ValidateClassifierConfig(ctx, cfg.Classifier, cfg.APIKeys); err != nil {
		logrus.Fatalf("[CLASSIFIER] %v", err)
	}
	cls, err := classifier.New(cfg.Classifier, cfg.APIKeys)
	if err != nil {
		logrus.Fatalf("[CLASSIFIER] %v", err)
	}
	return cls
}

func buildMonitor(ctx context.Context, m messenger.IMessenger) domainMonitor.IMonitorUsecase {
	cfg := coreconfig.Global
	if err := validations.ValidateMonitorConfig(ctx, cfg); err != nil {
		logrus.Fatalf("[MONITOR] %v", err)
	}

	reader := serial.NewReader(cfg.Serial.Port, cfg.Serial.BaudRate)
	onStop(func() { _ = reader.Close() })

	capturer, err := camera.NewCapturer(cfg.Paths.Images, cfg.Camera.Command)
	if err != nil {
		logrus.Fatalf("[CAMERA] %v", err)
	}

	cls := newClassifier(ctx)
	if cls == nil {
		logrus.Info("[CLASSIFIER] no provider configured; disease check disabled")
	}

	deps := usecase.MonitorDeps{
		Reader:     reader,
		Capturer:   capturer,
		Classifier: cls,
		Notifier:   usecase.NewNotifierService(m, cfg.Telegram.ChatID, cfg.Paths.Reports),
		State:      openStateStore(),
		History:    openHistory(ctx),
		Window:     cfg.Serial.Window,
		Interval:   cfg.Monitor.Interval,
	}
	if cfg.MQTT.Broker != "" {
		pub, err := mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			logrus.Warnf("[MQTT] %v; telemetry publishing disabled", err)
		} else {
			deps.Publisher = pub
			onStop(pub.Close)
		}
	}

	svc := usecase.NewMonitorService(deps)
	svc.OnCycle(websocket.PublishCycle)
	return svc
}

// runtimeSettings applies the stored overrides to whichever services this
// process runs and returns the handler REST uses to change them later.
func runtimeSettings(ctx context.Context, bot domainBot.IBotUsecase, mon domainMonitor.IMonitorUsecase) rest.Settings {
	cfg := coreconfig.Global
	handler := rest.Settings{
		Service: openSettings(ctx),
		Bot:     bot,
		Monitor: mon,
		Defaults: rest.EffectiveSettings{
			MonitorInterval: cfg.Monitor.Interval,
			WaterDuration:   cfg.Bot.WaterDuration,
			DetectDelay:     cfg.Bot.DetectDelay,
		},
	}
	rs, err := handler.Service.GetRuntimeSettings(ctx)
	if err != nil {
		logrus.Warnf("[SETTINGS] failed to load runtime settings: %v", err)
		return handler
	}
	eff := handler.Apply(*rs)
	logrus.Infof("[SETTINGS] interval %s, water %s, detect delay %s", eff.MonitorInterval, eff.WaterDuration, eff.DetectDelay)
	return handler
}

// newReportWatcher pushes the report bundle whenever the detection job
// finishes writing into the reports folder.
func newReportWatcher(n domainNotifier.INotifier) *reportwatch.Watcher {
	cfg := coreconfig.Global
	return reportwatch.New(cfg.Paths.Reports, cfg.Bot.WatchDebounce, func(ctx context.Context) {
		sent := n.SendReportBundle(ctx)
		logrus.Infof("[BOT] report bundle delivered (%d files)", sent)
	},
		domainBot.FileDiseaseReport,
		domainBot.FilePredictionsCSV,
		domainBot.FileConfidenceChart,
		domainBot.FileDetectionChart,
	)
}
