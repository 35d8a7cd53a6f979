package dispatch

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/annedfinds/storefront-notify/internal/config"
	"github.com/annedfinds/storefront-notify/internal/mailer"
	"github.com/annedfinds/storefront-notify/internal/render"
	"github.com/annedfinds/storefront-notify/internal/storage"
)

// fakeTransport records submissions. failOn maps a 1-based call number to
// the error that call returns. With noResult set every call returns a nil
// result and a nil error.
type fakeTransport struct {
	mu       sync.Mutex
	sent     []*mailer.Composed
	calls    int
	failOn   map[int]error
	noResult bool
}

func (f *fakeTransport) Send(_ context.Context, msg *mailer.Composed) (*mailer.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.failOn[f.calls]; ok {
		return nil, err
	}
	if f.noResult {
		return nil, nil
	}
	f.sent = append(f.sent, msg)
	return &mailer.Result{MessageID: msg.MessageID, Timestamp: time.Now()}, nil
}

func (f *fakeTransport) Name() string                      { return "fake" }
func (f *fakeTransport) HealthCheck(context.Context) error { return nil }

type fakeRecords struct {
	mu      sync.Mutex
	records []storage.CreateEmailLogParams
	err     error
}

func (f *fakeRecords) CreateEmailLog(_ context.Context, arg storage.CreateEmailLogParams) (storage.EmailLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return storage.EmailLog{}, f.err
	}
	f.records = append(f.records, arg)
	return storage.EmailLog{
		ID:            uuid.New(),
		Recipient:     arg.Recipient,
		CorrelationID: arg.CorrelationID,
		Status:        arg.Status,
		MessageID:     arg.MessageID,
		Error:         arg.Error,
	}, nil
}

type fakeArchive struct {
	mu    sync.Mutex
	items map[string][]byte
	err   error
}

func (f *fakeArchive) Put(_ context.Context, id string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.items == nil {
		f.items = make(map[string][]byte)
	}
	f.items[id] = data
	return nil
}

func (f *fakeArchive) Get(_ context.Context, id string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.items[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

type fakeLinks struct {
	err error
}

func (f fakeLinks) ConfirmLink(orderID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://shop.example.com/admin/confirm-payment?orderId=" + orderID + "&token=signed", nil
}

var fixedNow = time.Date(2025, time.March, 14, 2, 30, 0, 0, time.UTC)

type harness struct {
	d         *Dispatcher
	transport *fakeTransport
	records   *fakeRecords
	archive   *fakeArchive
}

func newHarness(t *testing.T, mutate ...func(*Options)) *harness {
	t.Helper()

	r, err := render.New(render.Brand{
		StoreName:    "AnneDFinds",
		SupportEmail: "shop@example.com",
		SupportPhone: "(+63) 900-000-0000",
		SiteURL:      "https://shop.example.com",
	})
	if err != nil {
		t.Fatalf("render.New() error = %v", err)
	}

	h := &harness{
		transport: &fakeTransport{},
		records:   &fakeRecords{},
		archive:   &fakeArchive{},
	}
	opts := Options{
		Transport: h.transport,
		Records:   h.records,
		Archive:   h.archive,
		Links:     fakeLinks{},
		Renderer:  r,
		Identity: Identity{
			Sender:   mail.Address{Name: "AnneDFinds", Address: "shop@example.com"},
			System:   mail.Address{Name: "AnneDFinds System", Address: "shop@example.com"},
			Operator: mail.Address{Name: "AnneDFinds Admin", Address: "ops@example.com"},
			Hostname: "shop.example.com",
		},
		Payment: config.PaymentConfig{
			ConfirmURL: "https://shop.example.com/admin/confirm-payment",
			ExpectedAccounts: map[string]string{
				"gcash":       "GCash 0917 ending in 1234",
				"gotyme bank": "GoTyme ending in 5678",
			},
		},
		Logger: zerolog.Nop(),
		Now:    func() time.Time { return fixedNow },
	}
	for _, m := range mutate {
		m(&opts)
	}

	h.d, err = New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return h
}

// parsed is the header view of a composed message.
type parsed struct {
	subject string
	from    string
	to      string
	replyTo string
	body    string
}

func parseComposed(t *testing.T, c *mailer.Composed) parsed {
	t.Helper()
	mr, err := mail.CreateReader(bytes.NewReader(c.Raw))
	if err != nil {
		t.Fatalf("read composed message: %v", err)
	}
	defer mr.Close()

	var p parsed
	if p.subject, err = mr.Header.Subject(); err != nil {
		t.Fatalf("subject: %v", err)
	}
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		p.from = from[0].Address
	}
	if to, err := mr.Header.AddressList("To"); err == nil && len(to) > 0 {
		p.to = to[0].Address
	}
	if rt, err := mr.Header.AddressList("Reply-To"); err == nil && len(rt) > 0 {
		p.replyTo = rt[0].Address
	}

	var body bytes.Buffer
	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}
		if _, err := body.ReadFrom(part.Body); err != nil {
			t.Fatalf("read part: %v", err)
		}
	}
	p.body = body.String()
	return p
}
