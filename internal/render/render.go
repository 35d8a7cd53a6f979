// Package render produces the subject, plain-text and HTML bodies of every
// notification. Rendering is pure: the same input always yields the same
// Content, so callers pass in every timestamp they want shown.
package render

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"github.com/annedfinds/storefront-notify/internal/domain"
)

//go:embed templates
var templateFS embed.FS

// Manila is the display zone for every rendered date.
var Manila = time.FixedZone("PHT", 8*60*60)

// Content is one rendered message.
type Content struct {
	Subject string
	Text    string
	HTML    string
}

// Brand carries the storefront details printed in message headers and footers.
type Brand struct {
	StoreName    string
	SupportEmail string
	SupportPhone string
	SiteURL      string
}

// OrderInput feeds both the customer confirmation and the operator alert.
type OrderInput struct {
	CustomerName  string
	CustomerEmail string
	Order         domain.OrderPayload
	PlacedAt      time.Time
}

// PaymentAlertInput feeds the operator payment verification notice.
type PaymentAlertInput struct {
	Alert           domain.PaymentAlertPayload
	ConfirmURL      string
	ExpectedAccount string
	ReceivedAt      time.Time
}

// PaymentConfirmationInput feeds the customer payment confirmation.
type PaymentConfirmationInput struct {
	CustomerName string
	Confirmation domain.PaymentConfirmationPayload
	ReceivedAt   time.Time
}

// ContactInput feeds the relayed contact form message.
type ContactInput struct {
	Contact    domain.ContactPayload
	ReceivedAt time.Time
}

// DiagnosticInput feeds the canned transport test message.
type DiagnosticInput struct {
	Service string
	Mailbox string
	SentAt  time.Time
}

// Renderer holds the parsed templates.
type Renderer struct {
	brand Brand
	loc   *time.Location
	text  *texttemplate.Template
	html  *htmltemplate.Template
}

// New parses the embedded templates.
func New(brand Brand) (*Renderer, error) {
	text, err := texttemplate.ParseFS(templateFS, "templates/*.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse text templates: %w", err)
	}
	html, err := htmltemplate.ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse html templates: %w", err)
	}
	return &Renderer{brand: brand, loc: Manila, text: text, html: html}, nil
}

// OrderConfirmation renders the customer's order confirmation.
func (r *Renderer) OrderConfirmation(in OrderInput) (Content, error) {
	v := r.newOrderView(in)
	subject := fmt.Sprintf("Order Confirmation - %s | %s", v.OrderID, r.brand.StoreName)
	return r.execute("order_confirmation", subject, v)
}

// AdminOrderAlert renders the operator's new-order notification.
func (r *Renderer) AdminOrderAlert(in OrderInput) (Content, error) {
	v := r.newOrderView(in)
	subject := fmt.Sprintf("New Order: %s - %s%s | %s", v.OrderID, CurrencySymbol, v.Total, r.brand.StoreName)
	return r.execute("admin_order", subject, v)
}

// PaymentAlert renders the operator's payment verification request.
func (r *Renderer) PaymentAlert(in PaymentAlertInput) (Content, error) {
	v := r.newPaymentAlertView(in)
	subject := fmt.Sprintf("Payment Verification Required - Order %s", v.OrderID)
	return r.execute("payment_alert", subject, v)
}

// PaymentConfirmation renders the customer's payment confirmation.
func (r *Renderer) PaymentConfirmation(in PaymentConfirmationInput) (Content, error) {
	v := r.newPaymentConfirmationView(in)
	subject := fmt.Sprintf("Payment Confirmed - Order %s | %s", v.OrderID, r.brand.StoreName)
	return r.execute("payment_confirmation", subject, v)
}

// ContactMessage renders a contact form submission for the operator mailbox.
func (r *Renderer) ContactMessage(in ContactInput) (Content, error) {
	v := r.newContactView(in)
	subject := fmt.Sprintf("Contact Form: %s - %s", v.Topic, v.FullName)
	return r.execute("contact", subject, v)
}

// Diagnostic renders the transport test message.
func (r *Renderer) Diagnostic(in DiagnosticInput) (Content, error) {
	v := diagnosticView{
		Brand:   r.brand,
		Service: in.Service,
		Mailbox: in.Mailbox,
		SentAt:  in.SentAt.In(r.loc).Format(timestampLayout),
	}
	subject := fmt.Sprintf("Test Email - %s", v.SentAt)
	return r.execute("diagnostic", subject, v)
}

func (r *Renderer) execute(name, subject string, data any) (Content, error) {
	var text, html bytes.Buffer
	if err := r.text.ExecuteTemplate(&text, name+".txt.tmpl", data); err != nil {
		return Content{}, fmt.Errorf("render %s text: %w", name, err)
	}
	if err := r.html.ExecuteTemplate(&html, name+".html.tmpl", data); err != nil {
		return Content{}, fmt.Errorf("render %s html: %w", name, err)
	}
	return Content{Subject: subject, Text: text.String(), HTML: html.String()}, nil
}
