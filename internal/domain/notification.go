// Package domain holds the notification payloads and delivery records shared
// by the renderer, the dispatcher and the storage layer.
package domain

import (
	"encoding/json"
	"time"
)

// Category distinguishes the kinds of notifications the dispatcher sends.
type Category string

const (
	CategoryOrderConfirmation   Category = "order_confirmation"
	CategoryPaymentAlert        Category = "payment_alert"
	CategoryPaymentConfirmation Category = "payment_confirmation"
	CategoryContactMessage      Category = "contact_message"
)

// Payload is the discriminated body of a NotificationRequest.
type Payload interface {
	Category() Category
	// CorrelationID ties the notification to a business transaction.
	CorrelationID() string
}

// Recipient is a mailbox with an optional display name.
type Recipient struct {
	Address string
	Name    string
}

// Flags alter dispatcher behaviour for a single request.
type Flags struct {
	SkipAdminNotification bool
}

// NotificationRequest is one caller-owned dispatch request.
type NotificationRequest struct {
	Recipient Recipient
	Payload   Payload
	Flags     Flags
}

// LineItem is one ordered product.
type LineItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Address is a delivery address as captured at checkout. Several fields have
// alternates (Street/StreetAddress, State/Province, ZipCode/PostalCode)
// because older clients send the alternate names.
type Address struct {
	FullName             string `json:"fullName"`
	Email                string `json:"email,omitempty"`
	Phone                string `json:"phone"`
	StreetAddress        string `json:"streetAddress,omitempty"`
	Street               string `json:"street,omitempty"`
	ApartmentSuite       string `json:"apartmentSuite,omitempty"`
	City                 string `json:"city"`
	Province             string `json:"province,omitempty"`
	State                string `json:"state,omitempty"`
	PostalCode           string `json:"postalCode,omitempty"`
	ZipCode              string `json:"zipCode,omitempty"`
	Country              string `json:"country,omitempty"`
	DeliveryInstructions string `json:"deliveryInstructions,omitempty"`
}

// OrderPayload is a placed order.
type OrderPayload struct {
	OrderID           string
	Items             []LineItem
	TotalAmount       float64
	PaymentMethod     string
	DeliveryAddress   *Address
	EstimatedDelivery *Instant
}

func (p OrderPayload) Category() Category    { return CategoryOrderConfirmation }
func (p OrderPayload) CorrelationID() string { return p.OrderID }

// CustomerInfo identifies the payer in a payment alert.
type CustomerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// PaymentAlertPayload asks the operator to verify a manual payment.
type PaymentAlertPayload struct {
	OrderID       string
	PaymentMethod string
	Amount        float64
	Customer      CustomerInfo
	// Items is the client's order detail, rendered as-is.
	Items       json.RawMessage
	SubmittedAt *Instant
}

func (p PaymentAlertPayload) Category() Category    { return CategoryPaymentAlert }
func (p PaymentAlertPayload) CorrelationID() string { return p.OrderID }

// PaymentConfirmationPayload tells a customer their payment was verified.
type PaymentConfirmationPayload struct {
	OrderID       string
	Amount        float64
	PaymentMethod string
	ConfirmedAt   *Instant
}

func (p PaymentConfirmationPayload) Category() Category    { return CategoryPaymentConfirmation }
func (p PaymentConfirmationPayload) CorrelationID() string { return p.OrderID }

// ContactPayload is a storefront contact form submission.
type ContactPayload struct {
	// ReferenceID is assigned by the dispatcher when empty.
	ReferenceID string
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Subject     string
	Message     string
}

func (p ContactPayload) Category() Category    { return CategoryContactMessage }
func (p ContactPayload) CorrelationID() string { return p.ReferenceID }

// FullName joins the sender's first and last name.
func (p ContactPayload) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// DeliveryStatus is the terminal outcome of one dispatch attempt.
type DeliveryStatus string

const (
	StatusSent   DeliveryStatus = "sent"
	StatusFailed DeliveryStatus = "failed"
)

// DeliveryRecord is the append-only audit entry for one dispatch attempt.
// ID is empty until the record has been persisted.
type DeliveryRecord struct {
	ID            string
	Recipient     string
	CorrelationID string
	CustomerName  string
	Status        DeliveryStatus
	MessageID     string
	Error         string
	Service       string
	Category      Category
	Timestamp     time.Time
}
