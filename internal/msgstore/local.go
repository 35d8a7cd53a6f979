package msgstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LocalFileStore keeps archived messages as .eml files in one directory.
type LocalFileStore struct {
	basePath string
}

// NewLocalFileStore creates basePath if needed.
func NewLocalFileStore(basePath string) (*LocalFileStore, error) {
	if err := os.MkdirAll(basePath, 0o750); err != nil {
		return nil, fmt.Errorf("msgstore: create base directory: %w", err)
	}
	return &LocalFileStore{basePath: basePath}, nil
}

// Put writes data through a temp file and rename so readers never observe a
// partial message.
func (s *LocalFileStore) Put(_ context.Context, messageID string, data []byte) error {
	name, err := objectName(messageID)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.basePath, ".tmp-*")
	if err != nil {
		return fmt.Errorf("msgstore: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("msgstore: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("msgstore: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.basePath, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("msgstore: rename temp file: %w", err)
	}
	return nil
}

// Get returns ErrNotFound when nothing was archived under messageID.
func (s *LocalFileStore) Get(_ context.Context, messageID string) ([]byte, error) {
	name, err := objectName(messageID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.basePath, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("msgstore: read file: %w", err)
	}
	return data, nil
}
