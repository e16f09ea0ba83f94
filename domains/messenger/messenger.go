package messenger

import "context"

// OutgoingText is a chat message. Markdown selects Telegram legacy Markdown parsing.
type OutgoingText struct {
	Text     string
	Markdown bool
	Keyboard bool // attach the main reply keyboard
}

// Attachment is a local file sent as a photo or a document.
type Attachment struct {
	Path     string
	FileName string
	Caption  string
	Keyboard bool
}

// IncomingCommand is a normalized inbound message, already resolved to a command name.
type IncomingCommand struct {
	ChatID  int64
	Command string // without leading slash, e.g. "status"
	Text    string // raw text as typed
	From    string
}

// IMessenger delivers messages to one chat channel.
type IMessenger interface {
	SendText(ctx context.Context, chatID int64, msg OutgoingText) error
	SendPhoto(ctx context.Context, chatID int64, photo Attachment) error
	SendDocument(ctx context.Context, chatID int64, doc Attachment) error
}

// IListener receives inbound commands until ctx is cancelled.
type IListener interface {
	Listen(ctx context.Context, handle func(IncomingCommand)) error
}
