package dispatch

import (
	"context"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"

	"github.com/annedfinds/storefront-notify/internal/domain"
	"github.com/annedfinds/storefront-notify/internal/render"
)

// SendContactMessage relays a contact form submission to the operator
// mailbox with Reply-To set to the sender. A reference id is assigned when
// the payload has none and is returned as the result's CorrelationID.
func (d *Dispatcher) SendContactMessage(ctx context.Context, contact domain.ContactPayload) (*Result, error) {
	return d.sendContact(ctx, contact)
}

func (d *Dispatcher) sendContact(ctx context.Context, p domain.ContactPayload) (*Result, error) {
	if err := validateContact(p); err != nil {
		return nil, reject(domain.CategoryContactMessage, err)
	}

	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = strings.TrimSpace(p.Email)
	if p.ReferenceID == "" {
		p.ReferenceID = uuid.NewString()
	}

	env := envelope{
		category:      domain.CategoryContactMessage,
		correlationID: p.ReferenceID,
		customerName:  p.FullName(),
		from:          d.identity.System,
		to:            d.identity.Operator,
		replyTo:       &mail.Address{Name: p.FullName(), Address: p.Email},
	}

	res, err := d.deliver(ctx, env, func(now time.Time) (render.Content, error) {
		return d.renderer.ContactMessage(render.ContactInput{Contact: p, ReceivedAt: now})
	})
	return res, err
}
