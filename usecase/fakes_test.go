package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/AzielCF/az-plant/domains/messenger"
)

type sentItem struct {
	kind string // text, photo, document
	text string
	att  messenger.Attachment
	msg  messenger.OutgoingText
}

type fakeMessenger struct {
	mu   sync.Mutex
	sent []sentItem
	fail bool
}

var errDelivery = errors.New("delivery failed")

func (f *fakeMessenger) SendText(ctx context.Context, chatID int64, msg messenger.OutgoingText) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentItem{kind: "text", text: msg.Text, msg: msg})
	if f.fail {
		return errDelivery
	}
	return nil
}

func (f *fakeMessenger) SendPhoto(ctx context.Context, chatID int64, photo messenger.Attachment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentItem{kind: "photo", att: photo})
	if f.fail {
		return errDelivery
	}
	return nil
}

func (f *fakeMessenger) SendDocument(ctx context.Context, chatID int64, doc messenger.Attachment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentItem{kind: "document", att: doc})
	if f.fail {
		return errDelivery
	}
	return nil
}

func (f *fakeMessenger) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, s := range f.sent {
		if s.kind == "text" {
			out = append(out, s.text)
		}
	}
	return out
}

func (f *fakeMessenger) attachments() []sentItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentItem
	for _, s := range f.sent {
		if s.kind != "text" {
			out = append(out, s)
		}
	}
	return out
}
