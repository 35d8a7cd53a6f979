package dispatch

import (
	"context"
	"time"

	"github.com/annedfinds/storefront-notify/internal/domain"
	"github.com/annedfinds/storefront-notify/internal/render"
)

// diagnosticCategory labels test emails in logs and metrics. Test emails
// are never written to the delivery log.
const diagnosticCategory domain.Category = "diagnostic"

// SendDiagnostic sends a canned test message to the operator mailbox to
// prove the transport works end to end.
func (d *Dispatcher) SendDiagnostic(ctx context.Context) (*Result, error) {
	start := d.now()
	env := envelope{
		category: diagnosticCategory,
		from:     d.identity.Sender,
		to:       d.identity.Operator,
	}
	log := d.logFor(ctx, env)

	composed, res, err := d.submit(ctx, env, start, func(now time.Time) (render.Content, error) {
		return d.renderer.Diagnostic(render.DiagnosticInput{
			Service: d.transport.Name(),
			Mailbox: d.identity.Operator.Address,
			SentAt:  now,
		})
	})
	if err != nil {
		log.Error().Err(err).Msg("test email failed")
		return nil, Internal("Test email failed: "+err.Error(), err)
	}

	messageID := res.MessageID
	if messageID == "" {
		messageID = composed.MessageID
	}
	log.Info().Str("message_id", messageID).Msg("test email sent")

	return &Result{
		MessageID: messageID,
		Recipient: d.identity.Operator.Address,
		Timestamp: start,
	}, nil
}
