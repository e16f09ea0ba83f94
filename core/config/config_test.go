package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"SERIAL_PORT", "SERIAL_BAUD_RATE", "SERIAL_READ_WINDOW", "CLASSIFIER_URL", "CLASSIFIER_PROVIDER", "MONITOR_INTERVAL", "BOT_WATER_DURATION"} {
		t.Setenv(k, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.Equal(t, 3*time.Second, cfg.Serial.Window)
	assert.Equal(t, 300*time.Second, cfg.Monitor.Interval)
	assert.Equal(t, 5*time.Second, cfg.Bot.WaterDuration)
	assert.Equal(t, 10*time.Second, cfg.Classifier.Timeout)
	assert.Equal(t, "model.h5", cfg.Classifier.ModelName)
	assert.Empty(t, cfg.Classifier.Provider, "classifier is disabled without a URL")
	assert.Same(t, cfg, Global)
}

func TestLoadConfigClassifierURLImpliesHTTP(t *testing.T) {
	t.Setenv("CLASSIFIER_PROVIDER", "")
	t.Setenv("CLASSIFIER_URL", "http://10.0.0.5:5000/predict")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http", cfg.Classifier.Provider)
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("X_DURATION", "1500ms")
	assert.Equal(t, 1500*time.Millisecond, getEnvDuration("X_DURATION", time.Second))

	t.Setenv("X_DURATION", "120")
	assert.Equal(t, 2*time.Minute, getEnvDuration("X_DURATION", time.Second))

	t.Setenv("X_DURATION", "soon")
	assert.Equal(t, time.Second, getEnvDuration("X_DURATION", time.Second))
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("X_FLAG", "Yes")
	assert.True(t, getEnvBool("X_FLAG", false))
	t.Setenv("X_FLAG", "off")
	assert.False(t, getEnvBool("X_FLAG", true))
}

func TestGetAllSettingsHidesSecrets(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:secret")
	t.Setenv("MQTT_BROKER", "")
	t.Setenv("MONITOR_INTERVAL", "")
	_, err := LoadConfig()
	require.NoError(t, err)

	settings := GetAllSettings()
	assert.Equal(t, "5m0s", settings["monitor_interval"])
	assert.Equal(t, false, settings["mqtt_enabled"])
	for _, v := range settings {
		assert.NotEqual(t, "123:secret", v)
	}
}
