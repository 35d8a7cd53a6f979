package mailer

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Stdout prints a summary of each message instead of delivering it.
// Intended for development.
type Stdout struct {
	writer io.Writer
}

// NewStdout creates a Stdout transport writing to os.Stdout.
func NewStdout() *Stdout {
	return &Stdout{writer: os.Stdout}
}

func (s *Stdout) Name() string { return "stdout" }

// Send prints the envelope and message size.
func (s *Stdout) Send(_ context.Context, msg *Composed) (*Result, error) {
	var b strings.Builder
	b.WriteString("--- stdout transport: message ---\n")
	fmt.Fprintf(&b, "Message-Id: %s\n", msg.MessageID)
	fmt.Fprintf(&b, "From:       %s\n", msg.From)
	fmt.Fprintf(&b, "To:         %s\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Size:       %d bytes\n", len(msg.Raw))
	b.WriteString("--- end ---\n")

	if _, err := io.WriteString(s.writer, b.String()); err != nil {
		return nil, &TransportError{Transport: s.Name(), Message: "write: " + err.Error(), Err: err}
	}

	return &Result{MessageID: msg.MessageID, Timestamp: time.Now()}, nil
}

// HealthCheck always succeeds.
func (s *Stdout) HealthCheck(_ context.Context) error {
	return nil
}
