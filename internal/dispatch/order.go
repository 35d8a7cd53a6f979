package dispatch

import (
	"context"
	"time"

	"github.com/emersion/go-message/mail"

	"github.com/annedfinds/storefront-notify/internal/domain"
	"github.com/annedfinds/storefront-notify/internal/metrics"
	"github.com/annedfinds/storefront-notify/internal/render"
)

// SendOrderConfirmation emails the order confirmation to the customer and,
// unless flags suppress it, alerts the operator about the new order.
func (d *Dispatcher) SendOrderConfirmation(ctx context.Context, to domain.Recipient, order domain.OrderPayload, flags domain.Flags) (*Result, error) {
	return d.sendOrder(ctx, to, order, flags)
}

func (d *Dispatcher) sendOrder(ctx context.Context, to domain.Recipient, order domain.OrderPayload, flags domain.Flags) (*Result, error) {
	if err := validateOrder(to, order); err != nil {
		return nil, reject(domain.CategoryOrderConfirmation, err)
	}

	env := envelope{
		category:      domain.CategoryOrderConfirmation,
		correlationID: order.OrderID,
		customerName:  to.Name,
		from:          d.identity.Sender,
		to:            mail.Address{Name: to.Name, Address: to.Address},
	}

	var placedAt time.Time
	res, err := d.deliver(ctx, env, func(now time.Time) (render.Content, error) {
		placedAt = now
		return d.renderer.OrderConfirmation(render.OrderInput{
			CustomerName:  to.Name,
			CustomerEmail: to.Address,
			Order:         order,
			PlacedAt:      now,
		})
	})
	if err != nil {
		return nil, err
	}

	if flags.SkipAdminNotification {
		metrics.AdminNotificationsTotal.WithLabelValues("skipped").Inc()
		return res, nil
	}

	d.notifyOperator(ctx, env, render.OrderInput{
		CustomerName:  to.Name,
		CustomerEmail: to.Address,
		Order:         order,
		PlacedAt:      placedAt,
	})
	return res, nil
}

// notifyOperator sends the new-order alert. It is a best-effort side call:
// the alert is not recorded and its failure never reaches the caller.
func (d *Dispatcher) notifyOperator(ctx context.Context, primary envelope, in render.OrderInput) {
	env := envelope{
		category:      primary.category,
		correlationID: primary.correlationID,
		customerName:  primary.customerName,
		from:          d.identity.System,
		to:            d.identity.Operator,
	}
	log := d.logFor(ctx, env)

	_, _, err := d.submit(ctx, env, in.PlacedAt, func(time.Time) (render.Content, error) {
		return d.renderer.AdminOrderAlert(in)
	})
	if err != nil {
		metrics.AdminNotificationsTotal.WithLabelValues("failed").Inc()
		log.Warn().Err(err).Msg("admin notification failed")
		return
	}

	metrics.AdminNotificationsTotal.WithLabelValues("sent").Inc()
	log.Info().Msg("admin notification sent")
}
