package usecase

import (
	"context"
	"testing"
	"time"

	domainBot "github.com/AzielCF/az-plant/domains/bot"
	"github.com/AzielCF/az-plant/domains/messenger"
	"github.com/AzielCF/az-plant/pkg/msgworker"
	"github.com/AzielCF/az-plant/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePool struct {
	jobs []msgworker.CommandJob
}

func (p *capturePool) TryDispatch(job msgworker.CommandJob) bool {
	p.jobs = append(p.jobs, job)
	return true
}

func TestCommandDispatcher_Routes(t *testing.T) {
	m := &fakeMessenger{}
	pool := &capturePool{}
	bot := NewBotService(t.TempDir(), time.Second, time.Second)
	d := NewCommandDispatcher("telegram", bot, repository.NewMemoryStateStore(), m, pool)

	assert.True(t, d.Handle(messenger.IncomingCommand{ChatID: 42, Command: "status"}))
	assert.True(t, d.Handle(messenger.IncomingCommand{ChatID: 42, Text: "☀️ Toggle UV"}))
	assert.True(t, d.Handle(messenger.IncomingCommand{ChatID: 42, Command: "dance", Text: "/dance"}))
	assert.False(t, d.Handle(messenger.IncomingCommand{ChatID: 42, Text: "good morning"}))

	require.Len(t, pool.jobs, 3)
	assert.Equal(t, "telegram", pool.jobs[0].Source)
	assert.Equal(t, "42", pool.jobs[0].ChatKey)
	assert.Equal(t, string(domainBot.CommandStatus), pool.jobs[0].Command)
	assert.Equal(t, string(domainBot.CommandToggleUV), pool.jobs[1].Command)

	for _, j := range pool.jobs {
		require.NoError(t, j.Handler(context.Background()))
	}
	texts := m.texts()
	require.Len(t, texts, 3)
	assert.Contains(t, texts[0], "Smart Plant Status")
	assert.Contains(t, texts[1], "UV Lights:* ON")
	assert.Contains(t, texts[2], "Unknown command")
}

func TestCommandDispatcher_RealPoolKeepsChatOrder(t *testing.T) {
	pool := msgworker.NewCommandWorkerPool(2, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	defer pool.Stop()

	m := &fakeMessenger{}
	state := repository.NewMemoryStateStore()
	d := NewCommandDispatcher("telegram", NewBotService(t.TempDir(), 0, 0), state, m, pool)

	for i := 0; i < 3; i++ {
		d.Handle(messenger.IncomingCommand{ChatID: 9, Command: "toggle_uv"})
	}

	require.Eventually(t, func() bool { return len(m.texts()) == 3 }, 2*time.Second, 10*time.Millisecond)
	texts := m.texts()
	assert.Contains(t, texts[0], "ON")
	assert.Contains(t, texts[1], "OFF")
	assert.Contains(t, texts[2], "ON")
}
