package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App        AppConfig
	MCP        MCPConfig
	Paths      PathsConfig
	Database   DatabaseConfig
	Serial     SerialConfig
	Camera     CameraConfig
	Classifier ClassifierConfig
	Telegram   TelegramConfig
	Monitor    MonitorConfig
	Bot        BotConfig
	MQTT       MQTTConfig
	WorkerPool WorkerPoolConfig
	APIKeys    APIKeysConfig
}

type AppConfig struct {
	Version            string
	Port               string
	Debug              bool
	Environment        string
	BasicAuth          []string
	BasePath           string
	TrustedProxies     []string
	BaseUrl            string
	CorsAllowedOrigins []string
	ServerID           string
}

type MCPConfig struct {
	Port string
	Host string
}

type PathsConfig struct {
	BaseDir  string
	Storages string
	Images   string
	Reports  string
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string // File path for SQLite, DB Name for Postgres
	ValkeyEnabled   bool
	ValkeyAddress   string
	ValkeyPassword  string
	ValkeyDB        int
	ValkeyKeyPrefix string
}

type SerialConfig struct {
	Port     string
	BaudRate int
	Window   time.Duration
}

type CameraConfig struct {
	// Command is split on spaces; "{output}" is replaced by the target file.
	Command string
}

type ClassifierConfig struct {
	Provider     string // http, gemini, openai; empty disables
	URL          string
	Timeout      time.Duration
	Resize       bool
	InputSize    int
	ModelName    string
	ModelVersion string
	VisionModel  string
}

type TelegramConfig struct {
	Token  string
	ChatID int64
	Debug  bool
}

type MonitorConfig struct {
	Interval time.Duration
}

type BotConfig struct {
	WaterDuration time.Duration
	DetectDelay   time.Duration
	ReportWatch   bool
	WatchDebounce time.Duration
}

type MQTTConfig struct {
	Broker   string
	Topic    string
	ClientID string
	Username string
	Password string
}

type WorkerPoolConfig struct {
	Size      int
	QueueSize int
}

type APIKeysConfig struct {
	Gemini string
	OpenAI string
}

// Global provides access to the loaded configuration globally
var Global *Config

// LoadConfig loads configuration from Environment Variables or defaults.
func LoadConfig() (*Config, error) {
	baseDir := getEnv("APP_BASE_DIR", "storages")

	debug := false
	if v := os.Getenv("APP_DEBUG"); v == "true" || v == "1" || v == "on" {
		debug = true
	} else if v := os.Getenv("DEBUG"); v == "true" || v == "1" {
		debug = true
	}

	var basicAuth []string
	if v := os.Getenv("APP_BASIC_AUTH"); v != "" {
		basicAuth = strings.Split(v, ",")
	}

	corsOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if v := os.Getenv("APP_CORS_ALLOWED_ORIGINS"); v != "" {
		corsOrigins = strings.Split(v, ",")
	}

	appCfg := AppConfig{
		Version:            "v1.0.0",
		Port:               getEnv("APP_PORT", "3000"),
		Debug:              debug,
		Environment:        getEnv("APP_ENV", "development"),
		BasicAuth:          basicAuth,
		BasePath:           getEnv("APP_BASE_PATH", ""),
		BaseUrl:            getEnv("APP_BASE_URL", "http://localhost:3000"),
		CorsAllowedOrigins: corsOrigins,
		ServerID:           getEnv("SERVER_ID", ""),
	}
	if v := os.Getenv("APP_TRUSTED_PROXIES"); v != "" {
		appCfg.TrustedProxies = strings.Split(v, ",")
	}

	pathsCfg := PathsConfig{
		BaseDir:  baseDir,
		Storages: baseDir,
		Images:   getEnv("PATH_IMAGES", "images"),
		Reports:  getEnv("PATH_REPORTS", "reports"),
	}

	dbCfg := DatabaseConfig{
		Driver:          getEnv("DB_DRIVER", "sqlite"),
		Name:            getEnv("DB_NAME", filepath.Join(pathsCfg.Storages, "plant.db")),
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		ValkeyEnabled:   getEnvBool("VALKEY_ENABLED", false),
		ValkeyAddress:   getEnv("VALKEY_ADDRESS", "localhost:6379"),
		ValkeyPassword:  getEnv("VALKEY_PASSWORD", ""),
		ValkeyDB:        getEnvInt("VALKEY_DB", 0),
		ValkeyKeyPrefix: getEnv("VALKEY_KEY_PREFIX", "azplant:"),
	}

	serialCfg := SerialConfig{
		Port:     getEnv("SERIAL_PORT", "/dev/ttyUSB0"),
		BaudRate: getEnvInt("SERIAL_BAUD_RATE", 9600),
		Window:   getEnvDuration("SERIAL_READ_WINDOW", 3*time.Second),
	}

	classifierURL := getEnv("CLASSIFIER_URL", "")
	provider := strings.ToLower(getEnv("CLASSIFIER_PROVIDER", ""))
	if provider == "" && classifierURL != "" {
		provider = "http"
	}
	classifierCfg := ClassifierConfig{
		Provider:     provider,
		URL:          classifierURL,
		Timeout:      getEnvDuration("CLASSIFIER_TIMEOUT", 10*time.Second),
		Resize:       getEnvBool("CLASSIFIER_RESIZE", false),
		InputSize:    getEnvInt("CLASSIFIER_INPUT_SIZE", 224),
		ModelName:    getEnv("CLASSIFIER_MODEL", "model.h5"),
		ModelVersion: getEnv("CLASSIFIER_MODEL_VERSION", ""),
		VisionModel:  getEnv("CLASSIFIER_VISION_MODEL", ""),
	}

	poolSize := getEnvInt("COMMAND_WORKER_POOL_SIZE", 4)

	cfg := &Config{
		App:      appCfg,
		MCP:      MCPConfig{Port: getEnv("MCP_PORT", "8080"), Host: getEnv("MCP_HOST", "localhost")},
		Paths:    pathsCfg,
		Database: dbCfg,
		Serial:   serialCfg,
		Camera: CameraConfig{
			Command: getEnv("CAMERA_COMMAND", "rpicam-still -n -t 1 -o {output}"),
		},
		Classifier: classifierCfg,
		Telegram: TelegramConfig{
			Token:  getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID: getEnvInt64("TELEGRAM_CHAT_ID", 0),
			Debug:  getEnvBool("TELEGRAM_DEBUG", false),
		},
		Monitor: MonitorConfig{Interval: getEnvDuration("MONITOR_INTERVAL", 300*time.Second)},
		Bot: BotConfig{
			WaterDuration: getEnvDuration("BOT_WATER_DURATION", 5*time.Second),
			DetectDelay:   getEnvDuration("BOT_DETECT_DELAY", 3*time.Second),
			ReportWatch:   getEnvBool("BOT_REPORT_WATCH", true),
			WatchDebounce: getEnvDuration("BOT_REPORT_WATCH_DEBOUNCE", 2*time.Second),
		},
		MQTT: MQTTConfig{
			Broker:   getEnv("MQTT_BROKER", ""),
			Topic:    getEnv("MQTT_TOPIC", "plant/telemetry"),
			ClientID: getEnv("MQTT_CLIENT_ID", "az-plant"),
			Username: getEnv("MQTT_USERNAME", ""),
			Password: getEnv("MQTT_PASSWORD", ""),
		},
		WorkerPool: WorkerPoolConfig{Size: poolSize, QueueSize: getEnvInt("COMMAND_WORKER_QUEUE_SIZE", 100)},
		APIKeys: APIKeysConfig{
			Gemini: getEnv("GEMINI_API_KEY", ""),
			OpenAI: getEnv("OPENAI_API_KEY", ""),
		},
	}

	Global = cfg
	return cfg, nil
}
