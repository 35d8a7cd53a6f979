// Package msgstore archives composed messages so operators can inspect
// exactly what a customer received.
package msgstore

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/annedfinds/storefront-notify/internal/config"
)

// ErrNotFound is returned when a requested message does not exist.
var ErrNotFound = errors.New("msgstore: message not found")

// ErrInvalidID is returned for message ids that cannot name an object.
var ErrInvalidID = errors.New("msgstore: invalid message id")

// MessageStore keeps raw RFC 5322 messages keyed by Message-Id.
type MessageStore interface {
	Put(ctx context.Context, messageID string, data []byte) error
	Get(ctx context.Context, messageID string) ([]byte, error)
}

// New creates the archive selected by cfg.Type. An empty type disables
// archiving and returns a nil store.
func New(cfg config.ArchiveConfig, logger zerolog.Logger) (MessageStore, error) {
	switch cfg.Type {
	case "":
		logger.Info().Msg("message archive disabled")
		return nil, nil
	case "local":
		return NewLocalFileStore(cfg.Path)
	case "s3":
		return NewS3StoreFromConfig(cfg)
	default:
		logger.Warn().
			Str("type", cfg.Type).
			Msg("unsupported archive type, defaulting to local")
		return NewLocalFileStore(cfg.Path)
	}
}

// objectName maps a Message-Id such as <ABC.DEF@annedfinds.web.app> to a
// flat file or object name. Characters outside [A-Za-z0-9._@-] become '_'.
func objectName(messageID string) (string, error) {
	id := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(messageID), "<"), ">")
	if id == "" || strings.Trim(id, ".") == "" {
		return "", ErrInvalidID
	}

	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '@', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String() + ".eml", nil
}
