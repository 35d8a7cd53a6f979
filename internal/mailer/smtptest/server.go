// Package smtptest runs an in-process SMTP relay for transport tests.
package smtptest

import (
	"bytes"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-sasl"
	gosmtp "github.com/emersion/go-smtp"
)

// Received is one message accepted by the relay.
type Received struct {
	From string
	To   []string
	Data []byte
	User string
	TLS  bool
}

// Server is a go-smtp server that records every accepted message.
type Server struct {
	Addr string

	mu         sync.Mutex
	received   []Received
	rejectRcpt *gosmtp.SMTPError
	username   string
	password   string
	tlsConfig  *tls.Config

	srv *gosmtp.Server
	ln  net.Listener
}

// Option configures a Server.
type Option func(*Server)

// WithAuth requires AUTH PLAIN with the given credentials.
func WithAuth(username, password string) Option {
	return func(s *Server) {
		s.username = username
		s.password = password
	}
}

// WithRcptError makes every RCPT TO fail with the given reply.
func WithRcptError(code int, message string) Option {
	return func(s *Server) {
		s.rejectRcpt = &gosmtp.SMTPError{
			Code:         code,
			EnhancedCode: gosmtp.EnhancedCodeNotSet,
			Message:      message,
		}
	}
}

// WithTLS advertises STARTTLS using cfg.
func WithTLS(cfg *tls.Config) Option {
	return func(s *Server) {
		s.tlsConfig = cfg
	}
}

// NewServer starts a plaintext relay on a loopback port and stops it when
// the test finishes.
func NewServer(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := &Server{}
	for _, opt := range opts {
		opt(s)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("smtptest: listen: %v", err)
	}
	s.ln = ln
	s.Addr = ln.Addr().String()

	s.srv = gosmtp.NewServer(&backend{server: s})
	s.srv.Domain = "smtptest.local"
	s.srv.ReadTimeout = 10 * time.Second
	s.srv.WriteTimeout = 10 * time.Second
	s.srv.AllowInsecureAuth = true
	s.srv.TLSConfig = s.tlsConfig

	go func() {
		_ = s.srv.Serve(ln)
	}()

	t.Cleanup(func() {
		_ = s.srv.Close()
	})
	return s
}

// Received returns a copy of every accepted message.
func (s *Server) Received() []Received {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Received, len(s.received))
	copy(out, s.received)
	return out
}

func (s *Server) record(r Received) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, r)
}

type backend struct {
	server *Server
}

func (b *backend) NewSession(c *gosmtp.Conn) (gosmtp.Session, error) {
	return &session{server: b.server, conn: c}, nil
}

type session struct {
	server *Server
	conn   *gosmtp.Conn
	user   string
	from   string
	to     []string
}

var errAuthRequired = &gosmtp.SMTPError{
	Code:         530,
	EnhancedCode: gosmtp.EnhancedCode{5, 7, 0},
	Message:      "Authentication required",
}

func (s *session) AuthMechanisms() []string {
	if s.server.username == "" {
		return nil
	}
	return []string{sasl.Plain}
}

func (s *session) Auth(mech string) (sasl.Server, error) {
	if mech != sasl.Plain {
		return nil, gosmtp.ErrAuthUnknownMechanism
	}
	return sasl.NewPlainServer(func(_, username, password string) error {
		if username != s.server.username || password != s.server.password {
			return &gosmtp.SMTPError{
				Code:         535,
				EnhancedCode: gosmtp.EnhancedCode{5, 7, 8},
				Message:      "Authentication failed",
			}
		}
		s.user = username
		return nil
	}), nil
}

func (s *session) Mail(from string, _ *gosmtp.MailOptions) error {
	if s.server.username != "" && s.user == "" {
		return errAuthRequired
	}
	s.from = from
	return nil
}

func (s *session) Rcpt(to string, _ *gosmtp.RcptOptions) error {
	if s.server.rejectRcpt != nil {
		return s.server.rejectRcpt
	}
	s.to = append(s.to, to)
	return nil
}

func (s *session) Data(r io.Reader) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	if len(s.to) == 0 {
		return errors.New("no recipients")
	}
	_, secure := s.conn.TLSConnectionState()
	s.server.record(Received{From: s.from, To: s.to, Data: buf.Bytes(), User: s.user, TLS: secure})
	return nil
}

func (s *session) Reset() {
	s.from = ""
	s.to = nil
}

func (s *session) Logout() error {
	return nil
}
