// Package dispatch is the notification dispatcher: it validates a request,
// renders it, submits it through the configured transport, records the
// outcome in the delivery log and fans out the operator notification.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/annedfinds/storefront-notify/internal/config"
	"github.com/annedfinds/storefront-notify/internal/domain"
	"github.com/annedfinds/storefront-notify/internal/logger"
	"github.com/annedfinds/storefront-notify/internal/mailer"
	"github.com/annedfinds/storefront-notify/internal/metrics"
	"github.com/annedfinds/storefront-notify/internal/msgstore"
	"github.com/annedfinds/storefront-notify/internal/render"
	"github.com/annedfinds/storefront-notify/internal/storage"
)

// DeliveryLogWriter appends delivery records. storage.Queries satisfies it.
type DeliveryLogWriter interface {
	CreateEmailLog(ctx context.Context, arg storage.CreateEmailLogParams) (storage.EmailLog, error)
}

// PaymentLinkIssuer builds the signed link the operator follows to confirm
// a payment. auth.PaymentTokens satisfies it.
type PaymentLinkIssuer interface {
	ConfirmLink(orderID string) (string, error)
}

// Identity holds the fixed mailboxes the dispatcher sends from and to.
type Identity struct {
	// Sender is the From of customer-facing messages.
	Sender mail.Address
	// System is the From of messages addressed to the operator.
	System mail.Address
	// Operator receives admin alerts, payment notices and contact messages.
	Operator mail.Address
	// Hostname qualifies generated Message-Ids.
	Hostname string
}

// IdentityFromConfig builds the Identity from mail and transport settings.
func IdentityFromConfig(m config.MailConfig, s config.SMTPConfig) Identity {
	return Identity{
		Sender:   mail.Address{Name: m.SenderName, Address: m.SenderAddress},
		System:   mail.Address{Name: m.SystemName, Address: m.SenderAddress},
		Operator: mail.Address{Name: m.OperatorName, Address: m.OperatorAddress},
		Hostname: s.LocalName,
	}
}

// Options are the collaborators of a Dispatcher. Archive and Links are optional.
type Options struct {
	Transport mailer.Transport
	Records   DeliveryLogWriter
	Archive   msgstore.MessageStore
	Links     PaymentLinkIssuer
	Renderer  *render.Renderer
	Identity  Identity
	Payment   config.PaymentConfig
	Logger    zerolog.Logger
	Now       func() time.Time
}

// Dispatcher sends notifications. It holds no per-request state and is safe
// for concurrent use.
type Dispatcher struct {
	transport mailer.Transport
	records   DeliveryLogWriter
	archive   msgstore.MessageStore
	links     PaymentLinkIssuer
	renderer  *render.Renderer
	identity  Identity
	payment   config.PaymentConfig
	log       zerolog.Logger
	now       func() time.Time
}

// New creates a Dispatcher.
func New(opts Options) (*Dispatcher, error) {
	if opts.Transport == nil {
		return nil, errors.New("dispatch: transport is required")
	}
	if opts.Records == nil {
		return nil, errors.New("dispatch: delivery log writer is required")
	}
	if opts.Renderer == nil {
		return nil, errors.New("dispatch: renderer is required")
	}
	if opts.Identity.Sender.Address == "" || opts.Identity.Operator.Address == "" {
		return nil, errors.New("dispatch: sender and operator addresses are required")
	}
	if opts.Identity.System.Address == "" {
		opts.Identity.System = opts.Identity.Sender
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Dispatcher{
		transport: opts.Transport,
		records:   opts.Records,
		archive:   opts.Archive,
		links:     opts.Links,
		renderer:  opts.Renderer,
		identity:  opts.Identity,
		payment:   opts.Payment,
		log:       opts.Logger,
		now:       opts.Now,
	}, nil
}

// Result describes a delivered notification.
type Result struct {
	MessageID     string
	CorrelationID string
	Recipient     string
	Timestamp     time.Time
}

// Dispatch validates and delivers req according to its payload type.
// Operator-bound payloads (payment alerts, contact messages) are always
// addressed to the operator mailbox.
func (d *Dispatcher) Dispatch(ctx context.Context, req domain.NotificationRequest) (*Result, error) {
	switch p := req.Payload.(type) {
	case domain.OrderPayload:
		return d.sendOrder(ctx, req.Recipient, p, req.Flags)
	case domain.PaymentAlertPayload:
		return d.sendPaymentAlert(ctx, p)
	case domain.PaymentConfirmationPayload:
		return d.sendPaymentConfirmation(ctx, req.Recipient, p)
	case domain.ContactPayload:
		return d.sendContact(ctx, p)
	case nil:
		return nil, InvalidArgument("Missing notification payload")
	default:
		return nil, InvalidArgument(fmt.Sprintf("Unsupported notification payload %T", p))
	}
}

// envelope is everything about one dispatch that ends up in its record.
type envelope struct {
	category      domain.Category
	correlationID string
	customerName  string
	from          mail.Address
	to            mail.Address
	replyTo       *mail.Address
}

func (d *Dispatcher) logFor(ctx context.Context, env envelope) zerolog.Logger {
	c := d.log.With().
		Str("category", string(env.category)).
		Str("correlation_id", env.correlationID).
		Str("recipient", env.to.Address)
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		c = c.Str("request_id", id)
	}
	return c.Logger()
}

// deliver renders, composes and submits one recorded notification. Every
// failure after validation produces exactly one failed record and an
// Internal error; success produces exactly one sent record.
func (d *Dispatcher) deliver(ctx context.Context, env envelope, build func(now time.Time) (render.Content, error)) (*Result, error) {
	start := d.now()
	log := d.logFor(ctx, env)
	defer func() {
		metrics.NotificationDuration.WithLabelValues(string(env.category)).Observe(d.now().Sub(start).Seconds())
	}()

	composed, res, err := d.submit(ctx, env, start, build)
	if err != nil {
		log.Error().Err(err).Msg("notification failed")
		metrics.NotificationsTotal.WithLabelValues(string(env.category), string(domain.StatusFailed)).Inc()
		d.record(ctx, log, env, domain.StatusFailed, "", err.Error(), start)
		return nil, Internal("Failed to send email: "+err.Error(), err)
	}

	messageID := res.MessageID
	if messageID == "" {
		messageID = composed.MessageID
	}

	log.Info().Str("message_id", messageID).Msg("notification sent")
	metrics.NotificationsTotal.WithLabelValues(string(env.category), string(domain.StatusSent)).Inc()
	d.record(ctx, log, env, domain.StatusSent, messageID, "", start)
	d.store(ctx, log, messageID, composed.Raw)

	return &Result{
		MessageID:     messageID,
		CorrelationID: env.correlationID,
		Recipient:     env.to.Address,
		Timestamp:     start,
	}, nil
}

// errNoMessageID reports a transport that accepted a message without
// returning a result.
var errNoMessageID = errors.New("failed to get message ID")

// submit renders, composes and sends without touching the delivery log.
func (d *Dispatcher) submit(ctx context.Context, env envelope, now time.Time, build func(now time.Time) (render.Content, error)) (*mailer.Composed, *mailer.Result, error) {
	content, err := build(now)
	if err != nil {
		return nil, nil, fmt.Errorf("render: %w", err)
	}

	composed, err := mailer.Compose(&mailer.Message{
		From:    env.from,
		To:      []mail.Address{env.to},
		ReplyTo: env.replyTo,
		Subject: content.Subject,
		Text:    content.Text,
		HTML:    content.HTML,
	}, d.identity.Hostname, now)
	if err != nil {
		return nil, nil, err
	}

	sendStart := time.Now()
	res, err := d.transport.Send(ctx, composed)
	metrics.TransportSendDuration.WithLabelValues(d.transport.Name()).Observe(time.Since(sendStart).Seconds())
	if err != nil {
		return nil, nil, err
	}
	if res == nil {
		return nil, nil, errNoMessageID
	}
	return composed, res, nil
}

// record writes the delivery record. A failed write is logged and never
// replaces the dispatch outcome.
func (d *Dispatcher) record(ctx context.Context, log zerolog.Logger, env envelope, status domain.DeliveryStatus, messageID, detail string, at time.Time) {
	_, err := d.records.CreateEmailLog(ctx, storage.CreateEmailLogParams{
		Recipient:     env.to.Address,
		CorrelationID: env.correlationID,
		CustomerName:  env.customerName,
		Status:        string(status),
		MessageID:     pgtype.Text{String: messageID, Valid: status == domain.StatusSent},
		Error:         pgtype.Text{String: detail, Valid: status == domain.StatusFailed},
		Service:       d.transport.Name(),
		EmailType:     string(env.category),
		CreatedAt:     pgtype.Timestamptz{Time: at, Valid: true},
	})
	if err != nil {
		metrics.DeliveryLogErrorsTotal.Inc()
		log.Error().Err(err).Str("status", string(status)).Msg("failed to write delivery record")
	}
}

// store archives the composed message when an archive is configured.
func (d *Dispatcher) store(ctx context.Context, log zerolog.Logger, messageID string, raw []byte) {
	if d.archive == nil {
		return
	}
	if err := d.archive.Put(ctx, messageID, raw); err != nil {
		metrics.ArchiveErrorsTotal.Inc()
		log.Warn().Err(err).Str("message_id", messageID).Msg("failed to archive message")
	}
}

func reject(category domain.Category, err error) error {
	metrics.NotificationsTotal.WithLabelValues(string(category), "rejected").Inc()
	return err
}
