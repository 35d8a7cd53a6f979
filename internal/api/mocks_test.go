package api

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/annedfinds/storefront-notify/internal/auth"
	"github.com/annedfinds/storefront-notify/internal/dispatch"
	"github.com/annedfinds/storefront-notify/internal/domain"
	"github.com/annedfinds/storefront-notify/internal/msgstore"
	"github.com/annedfinds/storefront-notify/internal/storage"
)

// mockNotifier implements Notifier for handler tests.
type mockNotifier struct {
	orderFn        func(ctx context.Context, to domain.Recipient, order domain.OrderPayload, flags domain.Flags) (*dispatch.Result, error)
	contactFn      func(ctx context.Context, contact domain.ContactPayload) (*dispatch.Result, error)
	alertFn        func(ctx context.Context, alert domain.PaymentAlertPayload) (*dispatch.Result, error)
	confirmationFn func(ctx context.Context, to domain.Recipient, p domain.PaymentConfirmationPayload) (*dispatch.Result, error)
	diagnosticFn   func(ctx context.Context) (*dispatch.Result, error)
}

func (m *mockNotifier) SendOrderConfirmation(ctx context.Context, to domain.Recipient, order domain.OrderPayload, flags domain.Flags) (*dispatch.Result, error) {
	if m.orderFn != nil {
		return m.orderFn(ctx, to, order, flags)
	}
	return &dispatch.Result{MessageID: "<order@example.com>", CorrelationID: order.OrderID}, nil
}

func (m *mockNotifier) SendContactMessage(ctx context.Context, contact domain.ContactPayload) (*dispatch.Result, error) {
	if m.contactFn != nil {
		return m.contactFn(ctx, contact)
	}
	return &dispatch.Result{MessageID: "<contact@example.com>", CorrelationID: "ref-1"}, nil
}

func (m *mockNotifier) SendAdminPaymentNotification(ctx context.Context, alert domain.PaymentAlertPayload) (*dispatch.Result, error) {
	if m.alertFn != nil {
		return m.alertFn(ctx, alert)
	}
	return &dispatch.Result{MessageID: "<alert@example.com>", CorrelationID: alert.OrderID}, nil
}

func (m *mockNotifier) SendCustomerPaymentConfirmation(ctx context.Context, to domain.Recipient, p domain.PaymentConfirmationPayload) (*dispatch.Result, error) {
	if m.confirmationFn != nil {
		return m.confirmationFn(ctx, to, p)
	}
	return &dispatch.Result{MessageID: "<confirm@example.com>", CorrelationID: p.OrderID}, nil
}

func (m *mockNotifier) SendDiagnostic(ctx context.Context) (*dispatch.Result, error) {
	if m.diagnosticFn != nil {
		return m.diagnosticFn(ctx)
	}
	return &dispatch.Result{MessageID: "<diag@example.com>", CorrelationID: "diagnostic"}, nil
}

// mockQuerier implements storage.Querier for handler tests.
type mockQuerier struct {
	listFn        func(ctx context.Context, arg storage.ListEmailLogsParams) ([]storage.EmailLog, error)
	listByOrderFn func(ctx context.Context, arg storage.ListEmailLogsByCorrelationIDParams) ([]storage.EmailLog, error)
}

func (m *mockQuerier) CreateEmailLog(ctx context.Context, arg storage.CreateEmailLogParams) (storage.EmailLog, error) {
	return storage.EmailLog{}, nil
}

func (m *mockQuerier) ListEmailLogs(ctx context.Context, arg storage.ListEmailLogsParams) ([]storage.EmailLog, error) {
	if m.listFn != nil {
		return m.listFn(ctx, arg)
	}
	return nil, nil
}

func (m *mockQuerier) ListEmailLogsByCorrelationID(ctx context.Context, arg storage.ListEmailLogsByCorrelationIDParams) ([]storage.EmailLog, error) {
	if m.listByOrderFn != nil {
		return m.listByOrderFn(ctx, arg)
	}
	return nil, nil
}

type mockTokens struct {
	validateFn func(token, orderID string) (*auth.PaymentClaims, error)
}

func (m *mockTokens) Validate(token, orderID string) (*auth.PaymentClaims, error) {
	return m.validateFn(token, orderID)
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(ctx context.Context) error { return m.err }

type mockTransportHealth struct{ healthy bool }

func (m *mockTransportHealth) IsHealthy() bool { return m.healthy }

type mockStore struct {
	messages map[string][]byte
	err      error
}

func (m *mockStore) Put(ctx context.Context, messageID string, data []byte) error {
	if m.messages == nil {
		m.messages = make(map[string][]byte)
	}
	m.messages[messageID] = data
	return nil
}

func (m *mockStore) Get(ctx context.Context, messageID string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	data, ok := m.messages[messageID]
	if !ok {
		return nil, msgstore.ErrNotFound
	}
	return data, nil
}

// decodeResult unwraps a successful callable response into dst.
func decodeResult(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(envelope.Result) == 0 {
		t.Fatal("response has no result")
	}
	if err := json.Unmarshal(envelope.Result, dst); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
}

// decodeError unwraps a callable error response.
func decodeError(t *testing.T, rec *httptest.ResponseRecorder) callableError {
	t.Helper()
	var envelope struct {
		Error callableError `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return envelope.Error
}
