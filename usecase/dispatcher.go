package usecase

import (
	"context"
	"strconv"
	"strings"

	domainBot "github.com/AzielCF/az-plant/domains/bot"
	"github.com/AzielCF/az-plant/domains/messenger"
	"github.com/AzielCF/az-plant/domains/plant"
	"github.com/AzielCF/az-plant/pkg/botmonitor"
	"github.com/AzielCF/az-plant/pkg/msgworker"
	"github.com/sirupsen/logrus"
)

type jobDispatcher interface {
	TryDispatch(job msgworker.CommandJob) bool
}

// CommandDispatcher turns inbound chat messages into pool jobs, one shard per chat.
type CommandDispatcher struct {
	source    string
	bot       domainBot.IBotUsecase
	state     plant.IStateStore
	messenger messenger.IMessenger
	pool      jobDispatcher
}

func NewCommandDispatcher(source string, bot domainBot.IBotUsecase, state plant.IStateStore, m messenger.IMessenger, pool jobDispatcher) *CommandDispatcher {
	return &CommandDispatcher{source: source, bot: bot, state: state, messenger: m, pool: pool}
}

// Handle resolves the message and queues it. Plain text that matches no
// keyboard button is ignored; an unknown slash command still gets the hint.
func (d *CommandDispatcher) Handle(in messenger.IncomingCommand) bool {
	chatKey := strconv.FormatInt(in.ChatID, 10)

	text := in.Text
	if in.Command != "" {
		text = "/" + in.Command
	}
	cmd, ok := d.bot.Resolve(text)
	isSlash := strings.HasPrefix(strings.TrimSpace(text), "/")

	ev := botmonitor.Event{
		ChatID:  chatKey,
		Command: string(cmd),
		Stage:   botmonitor.StageInbound,
		Status:  botmonitor.StatusOK,
	}
	if !ok && !isSlash {
		ev.Status = botmonitor.StatusSkipped
		botmonitor.Record(ev)
		logrus.WithField("chat_id", in.ChatID).Debug("[BOT] ignoring plain text message")
		return false
	}
	botmonitor.Record(ev)

	cc := domainBot.CommandContext{ChatID: in.ChatID, State: d.state, Messenger: d.messenger}
	accepted := d.pool.TryDispatch(msgworker.CommandJob{
		Source:  d.source,
		ChatKey: chatKey,
		Command: string(cmd),
		Handler: func(ctx context.Context) error {
			return d.bot.Handle(ctx, cc, cmd)
		},
	})
	if !accepted {
		logrus.WithFields(logrus.Fields{"chat_id": in.ChatID, "command": cmd}).Warn("[BOT] command dropped, worker queue full")
	}
	return accepted
}
