package email

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/yuin/goldmark"
)

// Message is one outgoing notification.
type Message struct {
	To      []string
	From    string // empty uses the sender's default
	Subject string
	HTML    string
	ReplyTo string
}

// Receipt is the provider's acknowledgement of a queued message.
type Receipt struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers notifications through an email provider.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
	SendBatch(ctx context.Context, msgs []Message) ([]Receipt, error)
}

// Compose builds a message whose HTML body is rendered from markdown.
// PRE: to has at least one address
func Compose(to []string, subject, markdown string) (Message, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return Message{}, fmt.Errorf("render email body: %w", err)
	}
	return Message{To: to, Subject: subject, HTML: buf.String()}, nil
}
