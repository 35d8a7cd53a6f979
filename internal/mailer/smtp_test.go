package mailer

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/annedfinds/storefront-notify/internal/config"
	"github.com/annedfinds/storefront-notify/internal/mailer/smtptest"
)

func smtpConfigFor(t *testing.T, addr string) config.SMTPConfig {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("split %s: %v", addr, err)
	}
	port, _ := strconv.Atoi(portStr)
	return config.SMTPConfig{
		Type:           "smtp",
		Host:           host,
		Port:           port,
		TLSMode:        "none",
		LocalName:      "annedfinds.web.app",
		CommandTimeout: 5 * time.Second,
		SubmitTimeout:  5 * time.Second,
	}
}

func composedSample(t *testing.T) *Composed {
	t.Helper()
	c, err := Compose(sampleMessage(), "annedfinds.web.app", time.Now())
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	return c
}

func TestSMTP_Send(t *testing.T) {
	srv := smtptest.NewServer(t)
	tr := NewSMTP(smtpConfigFor(t, srv.Addr))

	msg := composedSample(t)
	res, err := tr.Send(context.Background(), msg)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if res.MessageID != msg.MessageID {
		t.Errorf("MessageID = %q, want %q", res.MessageID, msg.MessageID)
	}

	got := srv.Received()
	if len(got) != 1 {
		t.Fatalf("expected 1 message at relay, got %d", len(got))
	}
	if got[0].From != "annedfinds@gmail.com" {
		t.Errorf("envelope from = %q", got[0].From)
	}
	if len(got[0].To) != 1 || got[0].To[0] != "a@b.com" {
		t.Errorf("envelope to = %v", got[0].To)
	}
	if !strings.Contains(string(got[0].Data), "Subject: Order Confirmation - ORD-1") {
		t.Error("relay did not receive the composed headers")
	}
}

func TestSMTP_SendWithAuth(t *testing.T) {
	srv := smtptest.NewServer(t, smtptest.WithAuth("annedfinds@gmail.com", "app-password"))
	cfg := smtpConfigFor(t, srv.Addr)
	cfg.Username = "annedfinds@gmail.com"
	cfg.Password = "app-password"

	if _, err := NewSMTP(cfg).Send(context.Background(), composedSample(t)); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	got := srv.Received()
	if len(got) != 1 || got[0].User != "annedfinds@gmail.com" {
		t.Fatalf("expected one authenticated message, got %+v", got)
	}
}

func TestSMTP_SendStartTLS(t *testing.T) {
	serverTLS, roots := smtptest.SelfSignedTLS(t)
	srv := smtptest.NewServer(t,
		smtptest.WithTLS(serverTLS),
		smtptest.WithAuth("annedfinds@gmail.com", "app-password"),
	)
	cfg := smtpConfigFor(t, srv.Addr)
	cfg.TLSMode = "starttls"
	cfg.Username = "annedfinds@gmail.com"
	cfg.Password = "app-password"

	tr := NewSMTP(cfg)
	tr.tlsConfig.RootCAs = roots

	msg := composedSample(t)
	res, err := tr.Send(context.Background(), msg)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if res.MessageID != msg.MessageID {
		t.Errorf("MessageID = %q, want %q", res.MessageID, msg.MessageID)
	}

	got := srv.Received()
	if len(got) != 1 {
		t.Fatalf("expected 1 message at relay, got %d", len(got))
	}
	if !got[0].TLS {
		t.Error("message was submitted without TLS")
	}
	if got[0].User != "annedfinds@gmail.com" {
		t.Errorf("user = %q", got[0].User)
	}
}

func TestSMTP_StartTLSFailures(t *testing.T) {
	serverTLS, _ := smtptest.SelfSignedTLS(t)

	tests := []struct {
		name string
		opts []smtptest.Option
	}{
		{"not advertised", nil},
		{"untrusted certificate", []smtptest.Option{smtptest.WithTLS(serverTLS)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := smtptest.NewServer(t, tc.opts...)
			cfg := smtpConfigFor(t, srv.Addr)
			cfg.TLSMode = "starttls"

			_, err := NewSMTP(cfg).Send(context.Background(), composedSample(t))
			if err == nil {
				t.Fatal("expected STARTTLS failure")
			}
			if !strings.Contains(err.Error(), "starttls") {
				t.Errorf("error %q does not name the STARTTLS step", err.Error())
			}
			if len(srv.Received()) != 0 {
				t.Error("relay accepted mail without TLS")
			}
		})
	}
}

func TestSMTP_BadCredentialsArePermanent(t *testing.T) {
	srv := smtptest.NewServer(t, smtptest.WithAuth("annedfinds@gmail.com", "app-password"))
	cfg := smtpConfigFor(t, srv.Addr)
	cfg.Username = "annedfinds@gmail.com"
	cfg.Password = "wrong"

	_, err := NewSMTP(cfg).Send(context.Background(), composedSample(t))
	if err == nil {
		t.Fatal("expected auth failure")
	}
	var te *TransportError
	if !errors.As(err, &te) || te.Code != 535 || !te.Permanent {
		t.Errorf("expected permanent 535 TransportError, got %v", err)
	}
	if len(srv.Received()) != 0 {
		t.Error("relay must not accept mail after failed auth")
	}
}

func TestSMTP_RecipientRejected(t *testing.T) {
	srv := smtptest.NewServer(t, smtptest.WithRcptError(550, "No such user"))
	_, err := NewSMTP(smtpConfigFor(t, srv.Addr)).Send(context.Background(), composedSample(t))
	if err == nil {
		t.Fatal("expected rejection")
	}
	if !IsPermanent(err) {
		t.Errorf("expected permanent failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "No such user") {
		t.Errorf("expected server detail in error, got %q", err.Error())
	}
}

func TestSMTP_TransientRejection(t *testing.T) {
	srv := smtptest.NewServer(t, smtptest.WithRcptError(451, "Greylisted"))
	_, err := NewSMTP(smtpConfigFor(t, srv.Addr)).Send(context.Background(), composedSample(t))
	if err == nil {
		t.Fatal("expected rejection")
	}
	if IsPermanent(err) {
		t.Errorf("expected transient failure, got %v", err)
	}
}

func TestSMTP_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	_, err = NewSMTP(smtpConfigFor(t, addr)).Send(context.Background(), composedSample(t))
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if te.Permanent {
		t.Error("connection failures must be transient")
	}
}

func TestSMTP_HealthCheck(t *testing.T) {
	srv := smtptest.NewServer(t)
	if err := NewSMTP(smtpConfigFor(t, srv.Addr)).HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}
	if len(srv.Received()) != 0 {
		t.Error("health check must not submit mail")
	}
}

func TestNewSMTP_Defaults(t *testing.T) {
	s := NewSMTP(config.SMTPConfig{Host: "smtp.gmail.com", Port: 587})
	if s.tlsMode != "starttls" {
		t.Errorf("tlsMode = %q, want starttls", s.tlsMode)
	}
	if s.localName != "localhost" {
		t.Errorf("localName = %q, want localhost", s.localName)
	}
	if s.addr != "smtp.gmail.com:587" {
		t.Errorf("addr = %q", s.addr)
	}
	if s.commandTimeout != defaultCommandTimeout || s.submitTimeout != defaultSubmitTimeout {
		t.Errorf("unexpected timeouts %v / %v", s.commandTimeout, s.submitTimeout)
	}
	if s.Name() != "smtp" {
		t.Errorf("Name() = %q", s.Name())
	}
}
