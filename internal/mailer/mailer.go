// Package mailer composes RFC 5322 messages and submits them through a
// single configured Transport.
package mailer

import (
	"context"
	"time"

	"github.com/emersion/go-message/mail"
)

// Transport submits composed messages to a mail server.
type Transport interface {
	// Send submits msg and returns the message id the recipient will see.
	Send(ctx context.Context, msg *Composed) (*Result, error)
	// Name identifies the transport in delivery records ("smtp", "stdout", "file").
	Name() string
	// HealthCheck verifies the transport can accept mail.
	HealthCheck(ctx context.Context) error
}

// Message is a notification ready for composition.
type Message struct {
	From    mail.Address
	To      []mail.Address
	ReplyTo *mail.Address
	Subject string
	Text    string
	HTML    string
}

// Composed is a fully encoded message plus its SMTP envelope.
type Composed struct {
	// MessageID is the Message-Id header value including angle brackets.
	MessageID string
	From      string
	To        []string
	Raw       []byte
}

// Result is the outcome of a successful submission.
type Result struct {
	MessageID string
	Timestamp time.Time
	Metadata  map[string]string
}
