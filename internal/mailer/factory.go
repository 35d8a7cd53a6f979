package mailer

import (
	"fmt"

	"github.com/annedfinds/storefront-notify/internal/config"
)

// New creates the transport selected by cfg.Type.
func New(cfg config.SMTPConfig) (Transport, error) {
	switch cfg.Type {
	case "smtp":
		if cfg.Host == "" || cfg.Port == 0 {
			return nil, fmt.Errorf("smtp transport requires host and port")
		}
		return NewSMTP(cfg), nil
	case "stdout", "":
		return NewStdout(), nil
	case "file":
		return NewFile(cfg.OutputDir), nil
	default:
		return nil, fmt.Errorf("unsupported transport type: %s", cfg.Type)
	}
}
