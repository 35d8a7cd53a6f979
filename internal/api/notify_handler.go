package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/annedfinds/storefront-notify/internal/auth"
	"github.com/annedfinds/storefront-notify/internal/dispatch"
	"github.com/annedfinds/storefront-notify/internal/domain"
	"github.com/annedfinds/storefront-notify/internal/logger"
)

// Notifier is the dispatcher surface used by the handlers.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, to domain.Recipient, order domain.OrderPayload, flags domain.Flags) (*dispatch.Result, error)
	SendContactMessage(ctx context.Context, contact domain.ContactPayload) (*dispatch.Result, error)
	SendAdminPaymentNotification(ctx context.Context, alert domain.PaymentAlertPayload) (*dispatch.Result, error)
	SendCustomerPaymentConfirmation(ctx context.Context, to domain.Recipient, confirmation domain.PaymentConfirmationPayload) (*dispatch.Result, error)
	SendDiagnostic(ctx context.Context) (*dispatch.Result, error)
}

// TokenValidator checks payment confirmation tokens.
type TokenValidator interface {
	Validate(token, orderID string) (*auth.PaymentClaims, error)
}

// orderConfirmationRequest is the data of POST /sendOrderConfirmationEmail.
type orderConfirmationRequest struct {
	ToEmail               string            `json:"toEmail"`
	CustomerName          string            `json:"customerName"`
	OrderID               string            `json:"orderId"`
	OrderItems            []domain.LineItem `json:"orderItems"`
	TotalAmount           float64           `json:"totalAmount"`
	PaymentMethod         string            `json:"paymentMethod"`
	DeliveryAddress       *domain.Address   `json:"deliveryAddress"`
	EstimatedDelivery     *domain.Instant   `json:"estimatedDelivery"`
	SkipAdminNotification bool              `json:"skipAdminNotification"`
}

type orderConfirmationResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	MessageID string `json:"messageId"`
	OrderID   string `json:"orderId"`
}

// SendOrderConfirmationHandler handles POST /sendOrderConfirmationEmail.
func SendOrderConfirmationHandler(n Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req orderConfirmationRequest
		if err := decodeCallable(w, r, &req); err != nil {
			respondDispatchError(w, r, err)
			return
		}

		res, err := n.SendOrderConfirmation(r.Context(),
			domain.Recipient{Address: req.ToEmail, Name: req.CustomerName},
			domain.OrderPayload{
				OrderID:           req.OrderID,
				Items:             req.OrderItems,
				TotalAmount:       req.TotalAmount,
				PaymentMethod:     req.PaymentMethod,
				DeliveryAddress:   req.DeliveryAddress,
				EstimatedDelivery: req.EstimatedDelivery,
			},
			domain.Flags{SkipAdminNotification: req.SkipAdminNotification},
		)
		if err != nil {
			respondDispatchError(w, r, err)
			return
		}

		respondResult(w, orderConfirmationResponse{
			Success:   true,
			Message:   "Order confirmation email sent successfully",
			MessageID: res.MessageID,
			OrderID:   req.OrderID,
		})
	}
}

// contactRequest is the data of POST /sendContactFormEmail.
type contactRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}

type contactResponse struct {
	Success       bool   `json:"success"`
	MessageID     string `json:"messageId"`
	ReferenceID   string `json:"referenceId"`
	CustomerEmail string `json:"customerEmail"`
	CustomerName  string `json:"customerName"`
	Timestamp     string `json:"timestamp"`
}

// SendContactFormHandler handles POST /sendContactFormEmail.
func SendContactFormHandler(n Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contactRequest
		if err := decodeCallable(w, r, &req); err != nil {
			respondDispatchError(w, r, err)
			return
		}

		contact := domain.ContactPayload{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Phone:     req.Phone,
			Subject:   req.Subject,
			Message:   req.Message,
		}
		res, err := n.SendContactMessage(r.Context(), contact)
		if err != nil {
			respondDispatchError(w, r, err)
			return
		}

		respondResult(w, contactResponse{
			Success:       true,
			MessageID:     res.MessageID,
			ReferenceID:   res.CorrelationID,
			CustomerEmail: req.Email,
			CustomerName:  contact.FullName(),
			Timestamp:     res.Timestamp.UTC().Format(time.RFC3339),
		})
	}
}

// paymentAlertRequest is the data of POST /sendAdminPaymentNotification.
type paymentAlertRequest struct {
	OrderID       string              `json:"orderId"`
	PaymentMethod string              `json:"paymentMethod"`
	Amount        float64             `json:"amount"`
	CustomerInfo  domain.CustomerInfo `json:"customerInfo"`
	OrderDetails  json.RawMessage     `json:"orderDetails"`
	Timestamp     *domain.Instant     `json:"timestamp"`
}

// paymentConfirmationRequest is the data of POST /sendCustomerPaymentConfirmation.
type paymentConfirmationRequest struct {
	CustomerEmail string          `json:"customerEmail"`
	CustomerName  string          `json:"customerName"`
	OrderID       string          `json:"orderId"`
	Amount        float64         `json:"amount"`
	PaymentMethod string          `json:"paymentMethod"`
	Timestamp     *domain.Instant `json:"timestamp"`
}

// paymentResponse is returned by both payment endpoints. They never raise:
// failures are reported as {success: false, error}.
type paymentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	OrderID string `json:"orderId,omitempty"`
	Error   string `json:"error,omitempty"`
}

func paymentFailure(r *http.Request, err error) paymentResponse {
	var de *dispatch.Error
	if errors.As(err, &de) {
		return paymentResponse{Success: false, Error: de.Message}
	}
	log := logger.FromContext(r.Context())
	log.Error().Err(err).Msg("unclassified payment notification error")
	return paymentResponse{Success: false, Error: err.Error()}
}

// SendAdminPaymentNotificationHandler handles POST /sendAdminPaymentNotification.
func SendAdminPaymentNotificationHandler(n Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req paymentAlertRequest
		if err := decodeCallable(w, r, &req); err != nil {
			respondResult(w, paymentFailure(r, err))
			return
		}

		_, err := n.SendAdminPaymentNotification(r.Context(), domain.PaymentAlertPayload{
			OrderID:       req.OrderID,
			PaymentMethod: req.PaymentMethod,
			Amount:        req.Amount,
			Customer:      req.CustomerInfo,
			Items:         req.OrderDetails,
			SubmittedAt:   req.Timestamp,
		})
		if err != nil {
			respondResult(w, paymentFailure(r, err))
			return
		}

		respondResult(w, paymentResponse{
			Success: true,
			Message: "Admin payment notification sent successfully",
			OrderID: req.OrderID,
		})
	}
}

// SendCustomerPaymentConfirmationHandler handles POST /sendCustomerPaymentConfirmation.
func SendCustomerPaymentConfirmationHandler(n Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req paymentConfirmationRequest
		if err := decodeCallable(w, r, &req); err != nil {
			respondResult(w, paymentFailure(r, err))
			return
		}

		_, err := n.SendCustomerPaymentConfirmation(r.Context(),
			domain.Recipient{Address: req.CustomerEmail, Name: req.CustomerName},
			domain.PaymentConfirmationPayload{
				OrderID:       req.OrderID,
				Amount:        req.Amount,
				PaymentMethod: req.PaymentMethod,
				ConfirmedAt:   req.Timestamp,
			},
		)
		if err != nil {
			respondResult(w, paymentFailure(r, err))
			return
		}

		respondResult(w, paymentResponse{
			Success: true,
			Message: "Customer payment confirmation sent successfully",
			OrderID: req.OrderID,
		})
	}
}

// verifyTokenRequest is the data of POST /verifyPaymentToken.
type verifyTokenRequest struct {
	OrderID string `json:"orderId"`
	Token   string `json:"token"`
}

type verifyTokenResponse struct {
	Valid     bool   `json:"valid"`
	OrderID   string `json:"orderId,omitempty"`
	ExpiresAt string `json:"expiresAt,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// VerifyPaymentTokenHandler handles POST /verifyPaymentToken. The operator's
// confirm-payment page calls it with the query parameters of the link it
// was opened from.
func VerifyPaymentTokenHandler(tokens TokenValidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyTokenRequest
		if err := decodeCallable(w, r, &req); err != nil {
			respondDispatchError(w, r, err)
			return
		}
		if req.OrderID == "" || req.Token == "" {
			respondDispatchError(w, r, dispatch.InvalidArgument("Missing required fields: orderId or token"))
			return
		}

		claims, err := tokens.Validate(req.Token, req.OrderID)
		if err != nil {
			reason := "invalid"
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				reason = "expired"
			case errors.Is(err, auth.ErrOrderMismatch):
				reason = "order_mismatch"
			case errors.Is(err, auth.ErrNoSigningKey):
				respondError(w, http.StatusInternalServerError, dispatch.CodeInternal, "payment links are not configured")
				return
			}
			respondResult(w, verifyTokenResponse{Valid: false, Reason: reason})
			return
		}

		resp := verifyTokenResponse{Valid: true, OrderID: claims.OrderID()}
		if claims.ExpiresAt != nil {
			resp.ExpiresAt = claims.ExpiresAt.UTC().Format(time.RFC3339)
		}
		respondResult(w, resp)
	}
}

type diagnosticResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	MessageID string `json:"messageId"`
}

// TestEmailHandler handles POST /testGmailEmail (operator only).
func TestEmailHandler(n Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := n.SendDiagnostic(r.Context())
		if err != nil {
			respondDispatchError(w, r, err)
			return
		}
		respondResult(w, diagnosticResponse{
			Success:   true,
			Message:   "Test email sent successfully",
			MessageID: res.MessageID,
		})
	}
}
