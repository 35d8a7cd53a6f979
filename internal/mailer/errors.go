package mailer

import (
	"context"
	"errors"
	"net"

	"github.com/emersion/go-smtp"
)

// TransportError wraps a submission failure with classification metadata.
type TransportError struct {
	// Transport is the name of the transport that failed.
	Transport string
	// Code is the SMTP reply code, or 0 when the failure happened below SMTP.
	Code int
	// Message is the failure detail surfaced to callers and delivery records.
	Message string
	// Permanent indicates the server rejected the message outright.
	Permanent bool
	Err       error
}

func (e *TransportError) Error() string {
	return e.Transport + ": " + e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsPermanent reports whether err is a transport failure that will not
// succeed if the same message is submitted again.
func IsPermanent(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Permanent
	}
	return false
}

// classifyError converts an SMTP client error into a TransportError.
// 5xx replies are permanent; 4xx replies, network errors and timeouts are
// transient.
func classifyError(transport string, err error) *TransportError {
	if err == nil {
		return nil
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te
	}

	var se *smtp.SMTPError
	if errors.As(err, &se) {
		return &TransportError{
			Transport: transport,
			Code:      se.Code,
			Message:   se.Error(),
			Permanent: se.Code >= 500 && se.Code < 600,
			Err:       err,
		}
	}

	msg := err.Error()
	var ne net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &ne) && ne.Timeout():
		msg = "timeout: " + msg
	}
	return &TransportError{Transport: transport, Message: msg, Err: err}
}
