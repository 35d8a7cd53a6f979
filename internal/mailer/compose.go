package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
)

// Compose encodes msg as multipart/alternative with a plain-text and an HTML
// part. The Message-Id is generated under hostname, or under the sender's
// domain when hostname is empty.
func Compose(msg *Message, hostname string, now time.Time) (*Composed, error) {
	if msg.From.Address == "" {
		return nil, errors.New("compose: sender address is required")
	}
	if len(msg.To) == 0 {
		return nil, errors.New("compose: at least one recipient is required")
	}

	if hostname == "" {
		hostname = domainOf(msg.From.Address)
	}

	var h mail.Header
	h.SetDate(now)
	h.SetAddressList("From", []*mail.Address{&msg.From})
	to := make([]*mail.Address, 0, len(msg.To))
	rcpts := make([]string, 0, len(msg.To))
	for i := range msg.To {
		to = append(to, &msg.To[i])
		rcpts = append(rcpts, msg.To[i].Address)
	}
	h.SetAddressList("To", to)
	if msg.ReplyTo != nil {
		h.SetAddressList("Reply-To", []*mail.Address{msg.ReplyTo})
	}
	h.SetSubject(msg.Subject)
	if err := h.GenerateMessageIDWithHostname(hostname); err != nil {
		return nil, fmt.Errorf("compose: generate message id: %w", err)
	}
	id, err := h.MessageID()
	if err != nil {
		return nil, fmt.Errorf("compose: read message id: %w", err)
	}

	var buf bytes.Buffer
	w, err := mail.CreateInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("compose: create writer: %w", err)
	}
	if err := writePart(w, "text/plain", msg.Text); err != nil {
		return nil, err
	}
	if err := writePart(w, "text/html", msg.HTML); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compose: close writer: %w", err)
	}

	return &Composed{
		MessageID: "<" + id + ">",
		From:      msg.From.Address,
		To:        rcpts,
		Raw:       buf.Bytes(),
	}, nil
}

func writePart(w *mail.InlineWriter, contentType, body string) error {
	var ph mail.InlineHeader
	ph.SetContentType(contentType, map[string]string{"charset": "utf-8"})
	pw, err := w.CreatePart(ph)
	if err != nil {
		return fmt.Errorf("compose: create %s part: %w", contentType, err)
	}
	if _, err := io.WriteString(pw, body); err != nil {
		pw.Close()
		return fmt.Errorf("compose: write %s part: %w", contentType, err)
	}
	return pw.Close()
}

func domainOf(addr string) string {
	if i := strings.LastIndexByte(addr, '@'); i >= 0 && i < len(addr)-1 {
		return addr[i+1:]
	}
	return "localhost"
}
