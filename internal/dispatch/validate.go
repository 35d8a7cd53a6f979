package dispatch

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/annedfinds/storefront-notify/internal/domain"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func validateOrder(to domain.Recipient, p domain.OrderPayload) error {
	if blank(to.Address) || blank(to.Name) || blank(p.OrderID) {
		return InvalidArgument("Missing required fields: toEmail, customerName, or orderId")
	}
	for i, it := range p.Items {
		if it.Price < 0 || it.Quantity < 0 {
			return InvalidArgument(fmt.Sprintf("Invalid order item %d: price and quantity must not be negative", i))
		}
	}
	if p.TotalAmount < 0 {
		return InvalidArgument("Invalid totalAmount: must not be negative")
	}
	return nil
}

func validatePaymentAlert(p domain.PaymentAlertPayload) error {
	if blank(p.OrderID) {
		return InvalidArgument("Missing required field: orderId")
	}
	if p.Amount < 0 {
		return InvalidArgument("Invalid amount: must not be negative")
	}
	return nil
}

func validatePaymentConfirmation(to domain.Recipient, p domain.PaymentConfirmationPayload) error {
	if blank(to.Address) || blank(to.Name) || blank(p.OrderID) {
		return InvalidArgument("Missing required fields: customerEmail, customerName, or orderId")
	}
	if p.Amount < 0 {
		return InvalidArgument("Invalid amount: must not be negative")
	}
	return nil
}

func validateContact(p domain.ContactPayload) error {
	if blank(p.FirstName) || blank(p.LastName) || blank(p.Email) || blank(p.Message) {
		return InvalidArgument("Missing required fields: firstName, lastName, email, or message")
	}
	if !emailPattern.MatchString(p.Email) {
		return InvalidArgument("Invalid email address")
	}
	return nil
}
