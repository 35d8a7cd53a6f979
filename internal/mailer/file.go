package mailer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultOutputDir = "./mail_output"

// File writes each message as an .eml file instead of delivering it.
// Intended for development.
type File struct {
	outputDir string
}

// NewFile creates a File transport writing into dir, or ./mail_output.
func NewFile(dir string) *File {
	if dir == "" {
		dir = defaultOutputDir
	}
	return &File{outputDir: dir}
}

func (f *File) Name() string { return "file" }

// Send writes msg.Raw to <timestamp>_<message-id>.eml in the output directory.
func (f *File) Send(_ context.Context, msg *Composed) (*Result, error) {
	if err := os.MkdirAll(f.outputDir, 0o750); err != nil {
		return nil, f.fail("create output dir", err)
	}

	ts := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.eml", ts, fileSafe(msg.MessageID))
	path := filepath.Join(f.outputDir, filename)

	if err := os.WriteFile(path, msg.Raw, 0o640); err != nil {
		return nil, f.fail("write "+path, err)
	}

	return &Result{
		MessageID: msg.MessageID,
		Timestamp: time.Now(),
		Metadata:  map[string]string{"path": path},
	}, nil
}

// HealthCheck verifies the output directory is writable.
func (f *File) HealthCheck(_ context.Context) error {
	if err := os.MkdirAll(f.outputDir, 0o750); err != nil {
		return f.fail("output dir not writable", err)
	}
	return nil
}

func (f *File) fail(op string, err error) error {
	return &TransportError{Transport: f.Name(), Message: op + ": " + err.Error(), Err: err}
}

func fileSafe(id string) string {
	return strings.NewReplacer("<", "", ">", "", "/", "_", "@", "_at_").Replace(id)
}
