package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	domainBot "github.com/AzielCF/az-plant/domains/bot"
	"github.com/AzielCF/az-plant/domains/messenger"
	"github.com/AzielCF/az-plant/domains/plant"
	"github.com/AzielCF/az-plant/domains/telemetry"
	"github.com/AzielCF/az-plant/pkg/botmonitor"
	"github.com/AzielCF/az-plant/pkg/metrics"
	"github.com/AzielCF/az-plant/pkg/utils"
	"github.com/sirupsen/logrus"
)

const (
	captionDiseaseReport  = "🔬 Plant Disease Detection Report"
	captionPredictionsCSV = "📊 Disease Prediction Data (CSV)"

	startMessage = "🌿 *Welcome to Smart Plant Bot!* 🌿\n\n" +
		"I can help you monitor your plants and detect diseases.\n\n" +
		"*Available Commands:*\n" +
		"🌿 /status - Get current sensor readings\n" +
		"💧 /water - Water the plant manually\n" +
		"☀️ /toggle_uv - Toggle UV/grow lights\n" +
		"📄 /report - Get disease detection report\n" +
		"📊 /chart - Get detection charts\n" +
		"📸 /frames - Get full frames report\n" +
		"🖥️ /detect - Trigger disease detection\n\n" +
		"Use the buttons below for quick access!"

	detectMessage = "🖥️ *Triggering Disease Detection*\n\n" +
		"Starting analysis...\n" +
		"• Capturing plant images 📸\n" +
		"• Running AI detection model 🤖\n" +
		"• Generating reports 📊\n\n" +
		"This may take 1-2 minutes. Please wait..."

	unknownMessage = "❓ Unknown command. Use /start to see available commands."

	statusTimeLayout = "03:04 PM"
)

var knownCommands = map[domainBot.Command]bool{
	domainBot.CommandStart:    true,
	domainBot.CommandStatus:   true,
	domainBot.CommandWater:    true,
	domainBot.CommandToggleUV: true,
	domainBot.CommandReport:   true,
	domainBot.CommandChart:    true,
	domainBot.CommandFrames:   true,
	domainBot.CommandDetect:   true,
}

// sleepCtx waits d or until ctx is done. Swapped in tests.
var sleepCtx = func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type botService struct {
	reportsDir    string
	waterDuration atomic.Int64
	detectDelay   atomic.Int64
	metrics       *metrics.Metrics
}

func NewBotService(reportsDir string, waterDuration, detectDelay time.Duration) domainBot.IBotUsecase {
	s := &botService{reportsDir: reportsDir, metrics: metrics.Default()}
	s.SetTimings(waterDuration, detectDelay)
	return s
}

func (s *botService) SetTimings(water, detect time.Duration) {
	s.waterDuration.Store(int64(water))
	s.detectDelay.Store(int64(detect))
}

func (s *botService) Timings() (water, detect time.Duration) {
	return time.Duration(s.waterDuration.Load()), time.Duration(s.detectDelay.Load())
}

func (s *botService) Resolve(text string) (domainBot.Command, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	if strings.HasPrefix(text, "/") {
		name := strings.Fields(text[1:])
		if len(name) == 0 {
			return "", false
		}
		cmd := name[0]
		if i := strings.Index(cmd, "@"); i >= 0 {
			cmd = cmd[:i]
		}
		c := domainBot.Command(strings.ToLower(cmd))
		return c, knownCommands[c]
	}
	if c := domainBot.Command(strings.ToLower(text)); knownCommands[c] {
		return c, true
	}
	for _, row := range domainBot.MainKeyboard {
		for _, b := range row {
			if b.Label == text {
				return b.Command, true
			}
		}
	}
	return "", false
}

func (s *botService) Handle(ctx context.Context, cc domainBot.CommandContext, cmd domainBot.Command) error {
	start := time.Now()
	var err error

	switch cmd {
	case domainBot.CommandStart:
		s.reply(ctx, cc, messenger.OutgoingText{Text: startMessage, Markdown: true, Keyboard: true})
	case domainBot.CommandStatus:
		err = s.status(ctx, cc)
	case domainBot.CommandWater:
		err = s.water(ctx, cc)
	case domainBot.CommandToggleUV:
		err = s.toggleUV(ctx, cc)
	case domainBot.CommandReport:
		s.report(ctx, cc)
	case domainBot.CommandChart:
		s.chart(ctx, cc)
	case domainBot.CommandFrames:
		s.frames(ctx, cc)
	case domainBot.CommandDetect:
		err = s.detect(ctx, cc)
	default:
		s.reply(ctx, cc, messenger.OutgoingText{Text: unknownMessage, Keyboard: true})
	}

	elapsed := time.Since(start)
	s.metrics.ObserveCommand(string(cmd), elapsed, err)
	ev := botmonitor.Event{
		ChatID:     strconv.FormatInt(cc.ChatID, 10),
		Command:    string(cmd),
		Stage:      botmonitor.StageCommand,
		Status:     botmonitor.StatusOK,
		DurationMs: elapsed.Milliseconds(),
	}
	if err != nil {
		ev.Status = botmonitor.StatusError
		ev.Error = err.Error()
		logrus.WithError(err).WithField("command", cmd).Error("[BOT] command failed")
	}
	botmonitor.Record(ev)
	return err
}

// BuildStatusMessage renders /status from the stored state only, so an
// unchanged state always produces the same text. "Last updated" is the time of
// the sensor snapshot; switch changes do not move it.
func BuildStatusMessage(state plant.State) string {
	snap := state.Snapshot
	updated := telemetry.Placeholder
	if !snap.ReadAt.IsZero() {
		updated = snap.ReadAt.Format(statusTimeLayout)
	}

	var b strings.Builder
	b.WriteString("🌱 *Smart Plant Status*\n\n")
	fmt.Fprintf(&b, "🌡 *Temp:* %s°C — %s Temperature\n", telemetry.Display(snap.Temperature), temperatureStatus(snap.Temperature))
	fmt.Fprintf(&b, "💧 *Humidity:* %s%% — %s Humidity\n", telemetry.Display(snap.Humidity), humidityStatus(snap.Humidity))
	fmt.Fprintf(&b, "🌱 *Soil:* %s — %s\n", telemetry.Display(snap.SoilMoisture), soilStatus(snap.SoilMoisture))
	fmt.Fprintf(&b, "💡 *Light:* %s\n", telemetry.Display(snap.LightLevel))
	fmt.Fprintf(&b, "💦 *Pump:* %s\n", state.Pump)
	fmt.Fprintf(&b, "☀️ *UV:* %s\n\n", state.UVLight)
	fmt.Fprintf(&b, "_Last updated: %s_", updated)
	return b.String()
}

func soilStatus(v string) string {
	switch telemetry.ClassifySoil(v) {
	case telemetry.SoilDry:
		return "🌵 Dry"
	case telemetry.SoilWet:
		return "💧 Wet"
	default:
		return "❓ Unknown"
	}
}

func temperatureStatus(v string) string {
	switch telemetry.ClassifyTemperature(v) {
	case telemetry.TemperatureCold:
		return "❄️ Cold"
	case telemetry.TemperatureHot:
		return "🔥 Hot"
	case telemetry.TemperatureNormal:
		return "✅ Normal"
	default:
		return "❓ Unknown"
	}
}

func humidityStatus(v string) string {
	switch telemetry.ClassifyHumidity(v) {
	case telemetry.HumidityLow:
		return "🌵 Low"
	case telemetry.HumidityHigh:
		return "💦 High"
	case telemetry.HumidityNormal:
		return "✅ Normal"
	default:
		return "❓ Unknown"
	}
}

func (s *botService) status(ctx context.Context, cc domainBot.CommandContext) error {
	state, err := cc.State.Get(ctx)
	if err != nil {
		return fmt.Errorf("read state: %w", err)
	}
	s.reply(ctx, cc, messenger.OutgoingText{Text: BuildStatusMessage(state), Markdown: true, Keyboard: true})
	return nil
}

func (s *botService) water(ctx context.Context, cc domainBot.CommandContext) error {
	if err := cc.State.SetPump(ctx, plant.SwitchOn); err != nil {
		return fmt.Errorf("pump on: %w", err)
	}
	water, _ := s.Timings()
	s.reply(ctx, cc, messenger.OutgoingText{
		Text:     fmt.Sprintf("💧 *Watering Plant*\n\nWater pump activated for %d seconds...\nPlease wait...", int(water.Seconds())),
		Markdown: true,
	})

	waitErr := sleepCtx(ctx, water)

	// the pump must never be left ON, even when the wait was interrupted
	if err := cc.State.SetPump(context.WithoutCancel(ctx), plant.SwitchOff); err != nil {
		return fmt.Errorf("pump off: %w", err)
	}
	if waitErr != nil {
		return waitErr
	}
	s.reply(ctx, cc, messenger.OutgoingText{Text: "✅ Watering complete!", Keyboard: true})
	return nil
}

func (s *botService) toggleUV(ctx context.Context, cc domainBot.CommandContext) error {
	v, err := cc.State.ToggleUV(ctx)
	if err != nil {
		return fmt.Errorf("toggle uv: %w", err)
	}
	text := "🌙 *UV Lights:* OFF\n\nGrow lights deactivated!"
	if v == plant.SwitchOn {
		text = "☀️ *UV Lights:* ON\n\nGrow lights activated!"
	}
	s.reply(ctx, cc, messenger.OutgoingText{Text: text, Markdown: true, Keyboard: true})
	return nil
}

func (s *botService) report(ctx context.Context, cc domainBot.CommandContext) {
	s.reply(ctx, cc, messenger.OutgoingText{Text: "📄 Generating disease report... Please wait."})

	if path, ok := s.artifact(domainBot.FileDiseaseReport); ok {
		s.document(ctx, cc, messenger.Attachment{Path: path, FileName: domainBot.FileDiseaseReport, Caption: captionDiseaseReport})
	} else {
		s.reply(ctx, cc, messenger.OutgoingText{Text: "❌ Disease report not found. Run detection first."})
	}

	if path, ok := s.artifact(domainBot.FilePredictionsCSV); ok {
		s.document(ctx, cc, messenger.Attachment{Path: path, FileName: domainBot.FilePredictionsCSV, Caption: captionPredictionsCSV})
	} else {
		s.reply(ctx, cc, messenger.OutgoingText{Text: "❌ Predictions CSV not found."})
	}

	s.reply(ctx, cc, messenger.OutgoingText{Text: "✅ Report sent!", Keyboard: true})
}

func (s *botService) chart(ctx context.Context, cc domainBot.CommandContext) {
	s.reply(ctx, cc, messenger.OutgoingText{Text: "📊 Generating charts... Please wait."})

	charts := []messenger.Attachment{
		{FileName: domainBot.FileConfidenceChart, Caption: "📊 Average Disease Confidence\n\nShows confidence levels for:\n• Healthy Leaf Rose\n• Rose Rust\n• Rose Sawfly Slug"},
		{FileName: domainBot.FileDetectionChart, Caption: "📊 Total Disease Detections\n\nShows total number of detections for each disease type"},
	}
	sent := 0
	for _, c := range charts {
		path, ok := s.artifact(c.FileName)
		if !ok {
			continue
		}
		c.Path = path
		if err := cc.Messenger.SendPhoto(ctx, cc.ChatID, c); err != nil {
			logrus.WithError(err).WithField("file", c.FileName).Error("[BOT] failed to send chart")
			continue
		}
		sent++
	}

	if sent == 0 {
		s.reply(ctx, cc, messenger.OutgoingText{Text: "❌ No charts found. Run detection first.", Keyboard: true})
		return
	}
	s.reply(ctx, cc, messenger.OutgoingText{Text: fmt.Sprintf("✅ %d chart(s) sent!", sent), Keyboard: true})
}

func (s *botService) frames(ctx context.Context, cc domainBot.CommandContext) {
	s.reply(ctx, cc, messenger.OutgoingText{Text: "📸 Generating full frames report... Please wait."})

	path, ok := s.artifact(domainBot.FileFullFrames)
	if !ok {
		s.reply(ctx, cc, messenger.OutgoingText{Text: "❌ Full frames report not found.", Keyboard: true})
		return
	}
	s.document(ctx, cc, messenger.Attachment{
		Path:     path,
		FileName: domainBot.FileFullFrames,
		Caption:  "📸 Full Frames Report\n\nComplete collection of captured plant images",
	})
	s.reply(ctx, cc, messenger.OutgoingText{Text: "✅ Full frames report sent!", Keyboard: true})
}

func (s *botService) detect(ctx context.Context, cc domainBot.CommandContext) error {
	s.reply(ctx, cc, messenger.OutgoingText{Text: detectMessage, Markdown: true})

	_, delay := s.Timings()
	if err := sleepCtx(ctx, delay); err != nil {
		return err
	}
	s.reply(ctx, cc, messenger.OutgoingText{
		Text:     "✅ Detection complete!\n\nUse /report to view the disease report\nUse /chart to view detection charts",
		Keyboard: true,
	})
	return nil
}

func (s *botService) artifact(name string) (string, bool) {
	path := filepath.Join(s.reportsDir, name)
	return path, utils.FileExists(path)
}

func (s *botService) reply(ctx context.Context, cc domainBot.CommandContext, msg messenger.OutgoingText) {
	if err := cc.Messenger.SendText(ctx, cc.ChatID, msg); err != nil {
		logrus.WithError(err).WithField("chat_id", cc.ChatID).Error("[BOT] failed to send reply")
	}
}

func (s *botService) document(ctx context.Context, cc domainBot.CommandContext, att messenger.Attachment) {
	if err := cc.Messenger.SendDocument(ctx, cc.ChatID, att); err != nil {
		logrus.WithError(err).WithField("file", att.FileName).Error("[BOT] failed to send document")
	}
}
