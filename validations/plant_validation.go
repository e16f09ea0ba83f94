package validations

import (
	"context"
	"time"

	"github.com/AzielCF/az-plant/core/config"
	"github.com/AzielCF/az-plant/core/settings/application"
	pkgError "github.com/AzielCF/az-plant/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	MaxReadingsLimit = 500
	MaxUploadBytes   = 10 << 20
)

var allowedImageTypes = []any{"image/jpeg", "image/png", "image/webp"}

// ValidateMonitorConfig checks what the monitor loop needs before it starts.
func ValidateMonitorConfig(ctx context.Context, cfg *config.Config) error {
	err := validation.ValidateStructWithContext(ctx, &cfg.Serial,
		validation.Field(&cfg.Serial.Port, validation.Required),
		validation.Field(&cfg.Serial.BaudRate, validation.Required, validation.Min(300)),
		validation.Field(&cfg.Serial.Window, validation.Required, validation.Min(100*time.Millisecond)),
	)
	if err != nil {
		return pkgError.ValidationError("serial: " + err.Error())
	}

	err = validation.ValidateStructWithContext(ctx, &cfg.Monitor,
		validation.Field(&cfg.Monitor.Interval, validation.Required, validation.Min(time.Second)),
	)
	if err != nil {
		return pkgError.ValidationError("monitor: " + err.Error())
	}

	if err := validation.Validate(cfg.Camera.Command, validation.Required); err != nil {
		return pkgError.ValidationError("camera command: " + err.Error())
	}
	return ValidateClassifierConfig(ctx, cfg.Classifier, cfg.APIKeys)
}

// ValidateClassifierConfig accepts a disabled classifier.
func ValidateClassifierConfig(ctx context.Context, c config.ClassifierConfig, keys config.APIKeysConfig) error {
	err := validation.ValidateStructWithContext(ctx, &c,
		validation.Field(&c.Provider, validation.In("http", "gemini", "openai")),
		validation.Field(&c.URL,
			validation.When(c.Provider == "http", validation.Required),
			is.URL,
		),
		validation.Field(&c.InputSize, validation.Min(0), validation.Max(4096)),
	)
	if err != nil {
		return pkgError.ValidationError("classifier: " + err.Error())
	}
	if c.Provider == "gemini" && keys.Gemini == "" {
		return pkgError.ValidationError("classifier: GEMINI_API_KEY is required for the gemini provider")
	}
	if c.Provider == "openai" && keys.OpenAI == "" {
		return pkgError.ValidationError("classifier: OPENAI_API_KEY is required for the openai provider")
	}
	return nil
}

func ValidateTelegramConfig(ctx context.Context, t config.TelegramConfig) error {
	err := validation.ValidateStructWithContext(ctx, &t,
		validation.Field(&t.Token, validation.Required),
	)
	if err != nil {
		return pkgError.ValidationError("telegram: " + err.Error())
	}
	return nil
}

func ValidateReadingsLimit(limit int) error {
	if err := validation.Validate(limit, validation.Required, validation.Min(1), validation.Max(MaxReadingsLimit)); err != nil {
		return pkgError.ValidationError("limit: " + err.Error())
	}
	return nil
}

func ValidateImageUpload(contentType string, size int64) error {
	if err := validation.Validate(contentType, validation.Required, validation.In(allowedImageTypes...)); err != nil {
		return pkgError.ValidationError("file: content type " + err.Error())
	}
	if err := validation.Validate(size, validation.Required, validation.Max(int64(MaxUploadBytes))); err != nil {
		return pkgError.ValidationError("file: size " + err.Error())
	}
	return nil
}

func ValidateRuntimeSettings(ctx context.Context, rs application.RuntimeSettings) error {
	err := validation.ValidateStructWithContext(ctx, &rs,
		validation.Field(&rs.MonitorIntervalSeconds, validation.NilOrNotEmpty, validation.Min(10), validation.Max(86400)),
		validation.Field(&rs.WaterDurationSeconds, validation.Min(0), validation.Max(120)),
		validation.Field(&rs.DetectDelaySeconds, validation.Min(0), validation.Max(600)),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}
