package dispatch

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/rs/zerolog"

	"github.com/annedfinds/storefront-notify/internal/domain"
	"github.com/annedfinds/storefront-notify/internal/render"
)

// DefaultExpectedAccount is shown when the payment method has no configured account.
const DefaultExpectedAccount = "Your designated account"

// SendAdminPaymentNotification asks the operator to verify a manual payment.
// The message carries a signed confirmation link for the order.
func (d *Dispatcher) SendAdminPaymentNotification(ctx context.Context, alert domain.PaymentAlertPayload) (*Result, error) {
	return d.sendPaymentAlert(ctx, alert)
}

// SendCustomerPaymentConfirmation tells the customer their payment was verified.
func (d *Dispatcher) SendCustomerPaymentConfirmation(ctx context.Context, to domain.Recipient, confirmation domain.PaymentConfirmationPayload) (*Result, error) {
	return d.sendPaymentConfirmation(ctx, to, confirmation)
}

func (d *Dispatcher) sendPaymentAlert(ctx context.Context, p domain.PaymentAlertPayload) (*Result, error) {
	if err := validatePaymentAlert(p); err != nil {
		return nil, reject(domain.CategoryPaymentAlert, err)
	}

	env := envelope{
		category:      domain.CategoryPaymentAlert,
		correlationID: p.OrderID,
		customerName:  p.Customer.Name,
		from:          d.identity.System,
		to:            d.identity.Operator,
	}
	confirmURL := d.confirmLink(d.logFor(ctx, env), p.OrderID)
	expected := d.expectedAccount(p.PaymentMethod)

	res, err := d.deliver(ctx, env, func(now time.Time) (render.Content, error) {
		return d.renderer.PaymentAlert(render.PaymentAlertInput{
			Alert:           p,
			ConfirmURL:      confirmURL,
			ExpectedAccount: expected,
			ReceivedAt:      now,
		})
	})
	return res, err
}

func (d *Dispatcher) sendPaymentConfirmation(ctx context.Context, to domain.Recipient, p domain.PaymentConfirmationPayload) (*Result, error) {
	if err := validatePaymentConfirmation(to, p); err != nil {
		return nil, reject(domain.CategoryPaymentConfirmation, err)
	}

	env := envelope{
		category:      domain.CategoryPaymentConfirmation,
		correlationID: p.OrderID,
		customerName:  to.Name,
		from:          d.identity.Sender,
		to:            mail.Address{Name: to.Name, Address: to.Address},
	}

	res, err := d.deliver(ctx, env, func(now time.Time) (render.Content, error) {
		return d.renderer.PaymentConfirmation(render.PaymentConfirmationInput{
			CustomerName: to.Name,
			Confirmation: p,
			ReceivedAt:   now,
		})
	})
	return res, err
}

// expectedAccount looks up the receiving account for a payment method label,
// ignoring case.
func (d *Dispatcher) expectedAccount(method string) string {
	if acct, ok := d.payment.ExpectedAccounts[strings.ToLower(strings.TrimSpace(method))]; ok && acct != "" {
		return acct
	}
	return DefaultExpectedAccount
}

// confirmLink returns the signed confirmation link, or the unsigned page URL
// with only the order id when no link can be signed.
func (d *Dispatcher) confirmLink(log zerolog.Logger, orderID string) string {
	if d.links != nil {
		link, err := d.links.ConfirmLink(orderID)
		if err == nil {
			return link
		}
		log.Warn().Err(err).Msg("could not sign payment confirmation link")
	}

	if d.payment.ConfirmURL == "" {
		return ""
	}
	u, err := url.Parse(d.payment.ConfirmURL)
	if err != nil {
		log.Warn().Err(err).Msg("invalid payment confirm url")
		return ""
	}
	q := u.Query()
	q.Set("orderId", orderID)
	u.RawQuery = q.Encode()
	return u.String()
}
