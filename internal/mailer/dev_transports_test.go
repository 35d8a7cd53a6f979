package mailer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStdout_Send(t *testing.T) {
	var buf bytes.Buffer
	s := &Stdout{writer: &buf}

	msg := &Composed{
		MessageID: "<abc@annedfinds.web.app>",
		From:      "annedfinds@gmail.com",
		To:        []string{"a@b.com"},
		Raw:       []byte("Subject: hi\r\n\r\nsecret body"),
	}

	res, err := s.Send(context.Background(), msg)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if res.MessageID != msg.MessageID {
		t.Errorf("MessageID = %q", res.MessageID)
	}

	out := buf.String()
	for _, want := range []string{"<abc@annedfinds.web.app>", "annedfinds@gmail.com", "a@b.com", "bytes"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "secret body") {
		t.Error("stdout transport must not print message bodies")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestStdout_WriteError(t *testing.T) {
	s := &Stdout{writer: failingWriter{}}
	_, err := s.Send(context.Background(), &Composed{MessageID: "<x@y>"})
	var te *TransportError
	if !errors.As(err, &te) || te.Transport != "stdout" {
		t.Fatalf("expected stdout TransportError, got %v", err)
	}
}

func TestFile_Send(t *testing.T) {
	dir := t.TempDir()
	f := NewFile(dir)

	msg := &Composed{
		MessageID: "<abc.def@annedfinds.web.app>",
		From:      "annedfinds@gmail.com",
		To:        []string{"a@b.com"},
		Raw:       []byte("Subject: Order Confirmation\r\n\r\nbody"),
	}

	res, err := f.Send(context.Background(), msg)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	path := res.Metadata["path"]
	if filepath.Dir(path) != dir {
		t.Errorf("file written outside output dir: %s", path)
	}
	if !strings.HasSuffix(path, "abc.def_at_annedfinds.web.app.eml") {
		t.Errorf("unexpected file name %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read written file: %v", err)
	}
	if !bytes.Equal(data, msg.Raw) {
		t.Errorf("file content = %q, want raw message", data)
	}
}

func TestFile_DefaultDir(t *testing.T) {
	if f := NewFile(""); f.outputDir != defaultOutputDir {
		t.Errorf("outputDir = %q, want %q", f.outputDir, defaultOutputDir)
	}
}

func TestFile_HealthCheck_NotWritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := NewFile(filepath.Join(blocker, "sub"))
	if err := f.HealthCheck(context.Background()); err == nil {
		t.Error("expected health check to fail when output dir cannot be created")
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		host    string
		port    int
		want    string
		wantErr bool
	}{
		{"smtp", "smtp", "smtp.gmail.com", 587, "smtp", false},
		{"smtp without host", "smtp", "", 587, "", true},
		{"stdout", "stdout", "", 0, "stdout", false},
		{"empty defaults to stdout", "", "", 0, "stdout", false},
		{"file", "file", "", 0, "file", false},
		{"unknown", "carrier-pigeon", "", 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smtpConfigFor(t, "127.0.0.1:1")
			cfg.Type, cfg.Host, cfg.Port = tt.typ, tt.host, tt.port

			tr, err := New(cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if tr.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", tr.Name(), tt.want)
			}
		})
	}
}
