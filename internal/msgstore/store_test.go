package msgstore

import (
	"errors"
	"os"
	"testing"

	"github.com/rs/zerolog"

	"github.com/annedfinds/storefront-notify/internal/config"
)

func TestNew_Disabled(t *testing.T) {
	store, err := New(config.ArchiveConfig{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if store != nil {
		t.Errorf("expected nil store when archive is disabled, got %T", store)
	}
}

func TestNew_Local(t *testing.T) {
	store, err := New(config.ArchiveConfig{Type: "local", Path: t.TempDir()}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := store.(*LocalFileStore); !ok {
		t.Errorf("got %T, want *LocalFileStore", store)
	}
}

func TestNew_UnknownFallsBackToLocal(t *testing.T) {
	store, err := New(config.ArchiveConfig{Type: "tape", Path: t.TempDir()}, zerolog.New(os.Stderr))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := store.(*LocalFileStore); !ok {
		t.Errorf("got %T, want *LocalFileStore", store)
	}
}

func TestObjectName(t *testing.T) {
	tests := []struct {
		id      string
		want    string
		wantErr bool
	}{
		{"<ABC.DEF@annedfinds.web.app>", "ABC.DEF@annedfinds.web.app.eml", false},
		{"plain-id", "plain-id.eml", false},
		{"<../../etc/passwd>", ".._.._etc_passwd.eml", false},
		{"a b\\c", "a_b_c.eml", false},
		{"<>", "", true},
		{"..", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := objectName(tt.id)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidID) {
				t.Errorf("objectName(%q) error = %v, want ErrInvalidID", tt.id, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("objectName(%q) error = %v", tt.id, err)
			continue
		}
		if got != tt.want {
			t.Errorf("objectName(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
