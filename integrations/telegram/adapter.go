package telegram

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	domainBot "github.com/AzielCF/az-plant/domains/bot"
	"github.com/AzielCF/az-plant/domains/messenger"
	"github.com/AzielCF/az-plant/pkg/botmonitor"
	"github.com/AzielCF/az-plant/pkg/metrics"
	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// botAPI is the part of *tgbotapi.BotAPI the adapter uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Adapter implements messenger.IMessenger and messenger.IListener over the
// Telegram Bot API with long polling.
type Adapter struct {
	api            botAPI
	pollTimeoutSec int
	metrics        *metrics.Metrics
}

func NewAdapter(token string, debug bool) (*Adapter, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram: TELEGRAM_BOT_TOKEN is required")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: connect: %w", err)
	}
	api.Debug = debug
	logrus.Infof("[TELEGRAM] authorized as @%s", api.Self.UserName)
	return newAdapter(api), nil
}

func newAdapter(api botAPI) *Adapter {
	return &Adapter{api: api, pollTimeoutSec: 60, metrics: metrics.Default()}
}

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(domainBot.MainKeyboard))
	for _, row := range domainBot.MainKeyboard {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(b.Label))
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(buttons...))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

func (a *Adapter) SendText(ctx context.Context, chatID int64, msg messenger.OutgoingText) error {
	cfg := tgbotapi.NewMessage(chatID, msg.Text)
	if msg.Markdown {
		cfg.ParseMode = tgbotapi.ModeMarkdown
	}
	if msg.Keyboard {
		cfg.ReplyMarkup = mainKeyboard()
	}
	return a.send(ctx, chatID, "text", cfg, nil)
}

func (a *Adapter) SendPhoto(ctx context.Context, chatID int64, photo messenger.Attachment) error {
	file, err := readFile(photo)
	if err != nil {
		a.record(chatID, "photo", 0, err)
		return err
	}
	cfg := tgbotapi.NewPhoto(chatID, file)
	cfg.Caption = photo.Caption
	if photo.Keyboard {
		cfg.ReplyMarkup = mainKeyboard()
	}
	return a.send(ctx, chatID, "photo", cfg, map[string]string{"file": file.Name, "size": humanize.Bytes(uint64(len(file.Bytes)))})
}

func (a *Adapter) SendDocument(ctx context.Context, chatID int64, doc messenger.Attachment) error {
	file, err := readFile(doc)
	if err != nil {
		a.record(chatID, "document", 0, err)
		return err
	}
	cfg := tgbotapi.NewDocument(chatID, file)
	cfg.Caption = doc.Caption
	if doc.Keyboard {
		cfg.ReplyMarkup = mainKeyboard()
	}
	return a.send(ctx, chatID, "document", cfg, map[string]string{"file": file.Name, "size": humanize.Bytes(uint64(len(file.Bytes)))})
}

func readFile(att messenger.Attachment) (tgbotapi.FileBytes, error) {
	data, err := os.ReadFile(att.Path)
	if err != nil {
		return tgbotapi.FileBytes{}, fmt.Errorf("telegram: read %s: %w", att.Path, err)
	}
	name := att.FileName
	if name == "" {
		name = filepath.Base(att.Path)
	}
	return tgbotapi.FileBytes{Name: name, Bytes: data}, nil
}

func (a *Adapter) send(ctx context.Context, chatID int64, kind string, c tgbotapi.Chattable, meta map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	_, err := a.api.Send(c)
	a.record(chatID, kind, time.Since(start), err)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"chat_id": chatID, "kind": kind}).Error("[TELEGRAM] send failed")
		return fmt.Errorf("telegram: send %s: %w", kind, err)
	}
	if meta != nil {
		logrus.WithFields(logrus.Fields{"chat_id": chatID, "file": meta["file"], "size": meta["size"]}).Debugf("[TELEGRAM] %s sent", kind)
	}
	return nil
}

func (a *Adapter) record(chatID int64, kind string, elapsed time.Duration, err error) {
	ev := botmonitor.Event{
		ChatID:     strconv.FormatInt(chatID, 10),
		Stage:      botmonitor.StageOutbound,
		Kind:       kind,
		Status:     botmonitor.StatusOK,
		DurationMs: elapsed.Milliseconds(),
	}
	if err != nil {
		ev.Status = botmonitor.StatusError
		ev.Error = err.Error()
	}
	botmonitor.Record(ev)
	a.metrics.ObserveMessage(kind, err)
}

// Listen long-polls for updates and hands every text message to handle.
// Slash commands arrive with Command set; other text keeps Command empty.
func (a *Adapter) Listen(ctx context.Context, handle func(messenger.IncomingCommand)) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = a.pollTimeoutSec
	updates := a.api.GetUpdatesChan(u)
	defer a.api.StopReceivingUpdates()

	logrus.Info("[TELEGRAM] listening for commands")
	for {
		select {
		case <-ctx.Done():
			logrus.Info("[TELEGRAM] listener stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if in, ok := toIncoming(update); ok {
				handle(in)
			}
		}
	}
}

func toIncoming(update tgbotapi.Update) (messenger.IncomingCommand, bool) {
	m := update.Message
	if m == nil || m.Chat == nil || m.Text == "" {
		return messenger.IncomingCommand{}, false
	}
	in := messenger.IncomingCommand{ChatID: m.Chat.ID, Text: m.Text}
	if m.From != nil {
		in.From = m.From.UserName
	}
	if m.IsCommand() {
		in.Command = m.Command()
	}
	return in, true
}
