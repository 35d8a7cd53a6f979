package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/annedfinds/storefront-notify/internal/domain"
)

// DefaultDeliveryEstimate is shown when an order has no estimated delivery.
const DefaultDeliveryEstimate = "3-5 business days"

const (
	defaultCountry       = "Philippines"
	emailNotProvided     = "Not provided"
	defaultContactTopic  = "New message"
	orderDetailsFallback = "Order details"

	dateLayout      = "January 2, 2006"
	deliveryLayout  = "Monday, January 2, 2006"
	timestampLayout = "January 2, 2006 3:04 PM MST"
)

type itemLine struct {
	Name     string
	Quantity int
	Amount   string
}

type addressView struct {
	FullName       string
	Email          string
	Phone          string
	Street         string
	ApartmentSuite string
	City           string
	Province       string
	PostalCode     string
	Country        string
	Instructions   string
}

type orderView struct {
	Brand         Brand
	CustomerName  string
	CustomerEmail string
	OrderID       string
	OrderDate     string
	PlacedAt      string
	PaymentMethod string
	DeliveryDate  string
	Items         []itemLine
	ItemCount     int
	Total         string
	Address       *addressView
}

type paymentAlertView struct {
	Brand           Brand
	OrderID         string
	SubmittedAt     string
	Items           string
	Amount          string
	PaymentMethod   string
	ExpectedAccount string
	Customer        domain.CustomerInfo
	ConfirmURL      string
}

type paymentConfirmationView struct {
	Brand         Brand
	CustomerName  string
	OrderID       string
	Amount        string
	PaymentMethod string
	ConfirmedAt   string
}

type contactView struct {
	Brand       Brand
	ReferenceID string
	FullName    string
	Email       string
	Phone       string
	Topic       string
	Message     string
	ReceivedAt  string
}

type diagnosticView struct {
	Brand   Brand
	Service string
	Mailbox string
	SentAt  string
}

// newAddressView applies the display fallbacks for optional and alternate
// address fields. A nil address yields nil.
func newAddressView(a *domain.Address) *addressView {
	if a == nil {
		return nil
	}
	return &addressView{
		FullName:       a.FullName,
		Email:          firstNonEmpty(a.Email, emailNotProvided),
		Phone:          a.Phone,
		Street:         firstNonEmpty(a.StreetAddress, a.Street),
		ApartmentSuite: a.ApartmentSuite,
		City:           a.City,
		Province:       firstNonEmpty(a.Province, a.State),
		PostalCode:     firstNonEmpty(a.PostalCode, a.ZipCode),
		Country:        firstNonEmpty(a.Country, defaultCountry),
		Instructions:   a.DeliveryInstructions,
	}
}

func (r *Renderer) newOrderView(in OrderInput) orderView {
	items := make([]itemLine, 0, len(in.Order.Items))
	for _, it := range in.Order.Items {
		items = append(items, itemLine{
			Name:     it.Name,
			Quantity: it.Quantity,
			Amount:   LineAmount(it.Price, it.Quantity),
		})
	}

	delivery := DefaultDeliveryEstimate
	if in.Order.EstimatedDelivery.IsSet() {
		delivery = in.Order.EstimatedDelivery.In(r.loc).Format(deliveryLayout)
	}

	placed := in.PlacedAt.In(r.loc)
	return orderView{
		Brand:         r.brand,
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		OrderID:       in.Order.OrderID,
		OrderDate:     placed.Format(dateLayout),
		PlacedAt:      placed.Format(timestampLayout),
		PaymentMethod: in.Order.PaymentMethod,
		DeliveryDate:  delivery,
		Items:         items,
		ItemCount:     len(items),
		Total:         FormatAmount(in.Order.TotalAmount),
		Address:       newAddressView(in.Order.DeliveryAddress),
	}
}

func (r *Renderer) newPaymentAlertView(in PaymentAlertInput) paymentAlertView {
	return paymentAlertView{
		Brand:           r.brand,
		OrderID:         in.Alert.OrderID,
		SubmittedAt:     r.instantOr(in.Alert.SubmittedAt, in.ReceivedAt),
		Items:           summarizeItems(in.Alert.Items),
		Amount:          FormatAmount(in.Alert.Amount),
		PaymentMethod:   in.Alert.PaymentMethod,
		ExpectedAccount: in.ExpectedAccount,
		Customer:        in.Alert.Customer,
		ConfirmURL:      in.ConfirmURL,
	}
}

func (r *Renderer) newPaymentConfirmationView(in PaymentConfirmationInput) paymentConfirmationView {
	return paymentConfirmationView{
		Brand:         r.brand,
		CustomerName:  in.CustomerName,
		OrderID:       in.Confirmation.OrderID,
		Amount:        FormatAmount(in.Confirmation.Amount),
		PaymentMethod: in.Confirmation.PaymentMethod,
		ConfirmedAt:   r.instantOr(in.Confirmation.ConfirmedAt, in.ReceivedAt),
	}
}

func (r *Renderer) newContactView(in ContactInput) contactView {
	return contactView{
		Brand:       r.brand,
		ReferenceID: in.Contact.ReferenceID,
		FullName:    in.Contact.FullName(),
		Email:       in.Contact.Email,
		Phone:       in.Contact.Phone,
		Topic:       firstNonEmpty(strings.TrimSpace(in.Contact.Subject), defaultContactTopic),
		Message:     in.Contact.Message,
		ReceivedAt:  in.ReceivedAt.In(r.loc).Format(timestampLayout),
	}
}

func (r *Renderer) instantOr(i *domain.Instant, fallback time.Time) string {
	t := fallback
	if i.IsSet() {
		t = i.Time
	}
	return t.In(r.loc).Format(timestampLayout)
}

// summarizeItems renders client-supplied order detail. Line items are listed
// as "name xQty"; anything else is shown as compact JSON.
func summarizeItems(raw json.RawMessage) string {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return orderDetailsFallback
	}

	var items []domain.LineItem
	if err := json.Unmarshal(raw, &items); err == nil && len(items) > 0 && items[0].Name != "" {
		parts := make([]string, 0, len(items))
		for _, it := range items {
			parts = append(parts, fmt.Sprintf("%s x%d", it.Name, it.Quantity))
		}
		return strings.Join(parts, ", ")
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return orderDetailsFallback
	}
	return buf.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
