package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"github.com/annedfinds/storefront-notify/internal/config"
)

const (
	defaultDialTimeout    = 30 * time.Second
	defaultCommandTimeout = 30 * time.Second
	defaultSubmitTimeout  = 2 * time.Minute
)

// SMTP submits messages to an authenticated SMTP relay such as Gmail.
type SMTP struct {
	addr           string
	host           string
	tlsMode        string
	username       string
	password       string
	localName      string
	commandTimeout time.Duration
	submitTimeout  time.Duration
	tlsConfig      *tls.Config
	dialer         *net.Dialer
}

// NewSMTP creates an SMTP transport from cfg.
func NewSMTP(cfg config.SMTPConfig) *SMTP {
	s := &SMTP{
		addr:           net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		host:           cfg.Host,
		tlsMode:        cfg.TLSMode,
		username:       cfg.Username,
		password:       cfg.Password,
		localName:      cfg.LocalName,
		commandTimeout: cfg.CommandTimeout,
		submitTimeout:  cfg.SubmitTimeout,
		tlsConfig: &tls.Config{
			ServerName: cfg.Host,
			MinVersion: tls.VersionTLS12,
		},
		dialer: &net.Dialer{Timeout: defaultDialTimeout},
	}
	if s.tlsMode == "" {
		s.tlsMode = "starttls"
	}
	if s.localName == "" {
		s.localName = "localhost"
	}
	if s.commandTimeout == 0 {
		s.commandTimeout = defaultCommandTimeout
	}
	if s.submitTimeout == 0 {
		s.submitTimeout = defaultSubmitTimeout
	}
	return s
}

func (s *SMTP) Name() string { return "smtp" }

// Send opens a session, authenticates when credentials are configured and
// submits msg. One connection is used per message.
func (s *SMTP) Send(ctx context.Context, msg *Composed) (*Result, error) {
	c, err := s.connect(ctx)
	if err != nil {
		return nil, classifyError(s.Name(), err)
	}
	defer c.Close()

	if err := s.auth(c); err != nil {
		return nil, classifyError(s.Name(), err)
	}

	if err := c.SendMail(msg.From, msg.To, bytes.NewReader(msg.Raw)); err != nil {
		return nil, classifyError(s.Name(), err)
	}

	// The message is accepted once DATA completes; a failed QUIT does not
	// change that.
	_ = c.Quit()

	return &Result{
		MessageID: msg.MessageID,
		Timestamp: time.Now(),
		Metadata:  map[string]string{"relay": s.addr},
	}, nil
}

// HealthCheck opens a session, authenticates and issues NOOP.
func (s *SMTP) HealthCheck(ctx context.Context) error {
	c, err := s.connect(ctx)
	if err != nil {
		return classifyError(s.Name(), err)
	}
	defer c.Close()

	if err := s.auth(c); err != nil {
		return classifyError(s.Name(), err)
	}
	if err := c.Noop(); err != nil {
		return classifyError(s.Name(), err)
	}
	_ = c.Quit()
	return nil
}

func (s *SMTP) connect(ctx context.Context) (*smtp.Client, error) {
	var (
		conn net.Conn
		err  error
	)
	switch s.tlsMode {
	case "tls":
		d := &tls.Dialer{NetDialer: s.dialer, Config: s.tlsConfig}
		conn, err = d.DialContext(ctx, "tcp", s.addr)
	default:
		conn, err = s.dialer.DialContext(ctx, "tcp", s.addr)
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", s.addr, err)
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}

	c, err := s.handshake(conn)
	if err != nil {
		return nil, err
	}
	c.CommandTimeout = s.commandTimeout
	c.SubmissionTimeout = s.submitTimeout
	return c, nil
}

// handshake greets the relay on conn and, in starttls mode, upgrades the
// session. The STARTTLS path greets with the client library's default
// name because EHLO is sent before the upgrade.
func (s *SMTP) handshake(conn net.Conn) (*smtp.Client, error) {
	if s.tlsMode == "starttls" {
		c, err := smtp.NewClientStartTLS(conn, s.tlsConfig)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("starttls: %w", err)
		}
		return c, nil
	}

	c := smtp.NewClient(conn)
	if err := c.Hello(s.localName); err != nil {
		c.Close()
		return nil, fmt.Errorf("hello: %w", err)
	}
	return c, nil
}

func (s *SMTP) auth(c *smtp.Client) error {
	if s.username == "" {
		return nil
	}
	if ok, _ := c.Extension("AUTH"); !ok {
		return fmt.Errorf("server %s does not support AUTH", s.host)
	}
	if err := c.Auth(sasl.NewPlainClient("", s.username, s.password)); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	return nil
}
