package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	domainBot "github.com/AzielCF/az-plant/domains/bot"
	"github.com/AzielCF/az-plant/domains/camera"
	"github.com/AzielCF/az-plant/domains/classifier"
	"github.com/AzielCF/az-plant/domains/messenger"
	domainNotifier "github.com/AzielCF/az-plant/domains/notifier"
	"github.com/AzielCF/az-plant/domains/telemetry"
	"github.com/AzielCF/az-plant/pkg/utils"
	"github.com/sirupsen/logrus"
)

// reportItem is one artifact of the automatic report push.
type reportItem struct {
	file    string
	caption string
	photo   bool
}

var reportBundle = []reportItem{
	{file: domainBot.FileDiseaseReport, caption: captionDiseaseReport},
	{file: domainBot.FilePredictionsCSV, caption: captionPredictionsCSV},
	{file: domainBot.FileConfidenceChart, caption: "📊 Average Disease Confidence Chart", photo: true},
	{file: domainBot.FileDetectionChart, caption: "📊 Total Disease Detections Chart", photo: true},
}

type notifierService struct {
	messenger  messenger.IMessenger
	chatID     int64
	reportsDir string
}

func NewNotifierService(m messenger.IMessenger, chatID int64, reportsDir string) domainNotifier.INotifier {
	return &notifierService{messenger: m, chatID: chatID, reportsDir: reportsDir}
}

// BuildUpdateMessage renders the periodic monitor update.
func BuildUpdateMessage(record telemetry.Record, result *classifier.Result) string {
	var b strings.Builder
	b.WriteString("🌿 Smart Plant Monitor Update 🌿\n\n")
	fmt.Fprintf(&b, "🌡 Temperature: %s °C\n", telemetry.Display(record.Temperature))
	fmt.Fprintf(&b, "💧 Humidity: %s %%\n", telemetry.Display(record.Humidity))
	fmt.Fprintf(&b, "🌱 Soil Moisture: %s\n", telemetry.Display(record.SoilMoisture))
	fmt.Fprintf(&b, "🔆 Light Level (LDR): %s\n", telemetry.Display(record.LightLevel))
	fmt.Fprintf(&b, "💦 Pump Status: %s\n\n", telemetry.Display(record.Pump))
	b.WriteString(telemetry.WateringAdvice(record.SoilMoisture))
	b.WriteString("\n\n")
	if result != nil && result.Label != "" {
		fmt.Fprintf(&b, "🔬 Disease Check: %s (%.1f%%)\n\n", result.Label, result.Confidence*100)
	}
	b.WriteString("📸 Plant Image attached.")
	return b.String()
}

func (s *notifierService) SendUpdate(ctx context.Context, record telemetry.Record, image camera.CapturedImage, result *classifier.Result) {
	if s.chatID == 0 {
		logrus.Warn("[NOTIFIER] TELEGRAM_CHAT_ID not set, update not sent")
		return
	}
	msg := messenger.OutgoingText{Text: BuildUpdateMessage(record, result)}
	if err := s.messenger.SendText(ctx, s.chatID, msg); err != nil {
		logrus.WithError(err).Error("[NOTIFIER] failed to send update text")
	}
	if image.Path == "" {
		return
	}
	if err := s.messenger.SendPhoto(ctx, s.chatID, messenger.Attachment{Path: image.Path}); err != nil {
		logrus.WithError(err).WithField("image", image.Path).Error("[NOTIFIER] failed to send plant image")
	}
}

func (s *notifierService) SendReportBundle(ctx context.Context) int {
	if s.chatID == 0 {
		logrus.Warn("[NOTIFIER] TELEGRAM_CHAT_ID not set, reports not sent")
		return 0
	}
	s.text(ctx, messenger.OutgoingText{Text: "🔬 *Disease Detection Complete!*\n\nSending reports...", Markdown: true})

	sent := 0
	for _, item := range reportBundle {
		path := filepath.Join(s.reportsDir, item.file)
		if !utils.FileExists(path) {
			continue
		}
		att := messenger.Attachment{Path: path, FileName: item.file, Caption: item.caption}
		var err error
		if item.photo {
			err = s.messenger.SendPhoto(ctx, s.chatID, att)
		} else {
			err = s.messenger.SendDocument(ctx, s.chatID, att)
		}
		if err != nil {
			logrus.WithError(err).WithField("file", item.file).Error("[NOTIFIER] failed to send report artifact")
			continue
		}
		sent++
	}

	s.text(ctx, messenger.OutgoingText{Text: "✅ All reports sent successfully!"})
	logrus.Infof("[NOTIFIER] report bundle pushed (%d artifacts)", sent)
	return sent
}

func (s *notifierService) text(ctx context.Context, msg messenger.OutgoingText) {
	if err := s.messenger.SendText(ctx, s.chatID, msg); err != nil {
		logrus.WithError(err).Error("[NOTIFIER] failed to send message")
	}
}

// DiscardMessenger drops replies when no chat is configured.
type DiscardMessenger struct{}

func (DiscardMessenger) SendText(ctx context.Context, chatID int64, msg messenger.OutgoingText) error {
	logrus.Debugf("[BOT] reply dropped: %q", msg.Text)
	return nil
}

func (DiscardMessenger) SendPhoto(ctx context.Context, chatID int64, photo messenger.Attachment) error {
	return nil
}

func (DiscardMessenger) SendDocument(ctx context.Context, chatID int64, doc messenger.Attachment) error {
	return nil
}
