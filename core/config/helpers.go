package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// GetAllSettings returns a map of the non-secret settings currently loaded in memory.
func GetAllSettings() map[string]any {
	if Global == nil {
		return map[string]any{}
	}
	return map[string]any{
		"serial_port":         Global.Serial.Port,
		"serial_baud_rate":    Global.Serial.BaudRate,
		"serial_read_window":  Global.Serial.Window.String(),
		"camera_command":      Global.Camera.Command,
		"classifier_provider": Global.Classifier.Provider,
		"classifier_model":    Global.Classifier.ModelName,
		"monitor_interval":    Global.Monitor.Interval.String(),
		"bot_water_duration":  Global.Bot.WaterDuration.String(),
		"mqtt_enabled":        Global.MQTT.Broker != "",
		"valkey_enabled":      Global.Database.ValkeyEnabled,
		"app_debug":           Global.App.Debug,
		"app_version":         Global.App.Version,
	}
}

// Helpers
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		vLower := strings.ToLower(v)
		return vLower == "1" || vLower == "true" || vLower == "yes" || vLower == "on"
	}
	return fallback
}

// getEnvDuration accepts Go durations ("5s") or bare seconds ("300").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
