package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jongio/taskport/cliout"
	"github.com/jongio/taskport/logutil"
)

// CaptureOutput captures stdout during function execution.
// The original stdout is always restored, even if fn returns an error.
func CaptureOutput(t *testing.T, fn func() error) string {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w

	// Buffered so the reader never blocks after the test gives up on it.
	outCh := make(chan string, 1)
	go func() {
		var output strings.Builder
		buf := make([]byte, 1024)
		for {
			n, readErr := r.Read(buf)
			if n > 0 {
				output.Write(buf[:n])
			}
			if readErr != nil {
				break
			}
		}
		outCh <- output.String()
	}()

	fnErr := fn()

	if err := w.Close(); err != nil {
		t.Logf("Failed to close pipe writer: %v", err)
	}
	os.Stdout = origStdout
	output := <-outCh

	if fnErr != nil {
		t.Logf("Command error: %v", fnErr)
	}
	return output
}

// CaptureCLI redirects cliout to a buffer in the default format without
// color until the test ends.
func CaptureCLI(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	prev := cliout.SetOutput(&buf)
	prevFormat := cliout.GetFormat()
	if err := cliout.SetFormat("default"); err != nil {
		t.Fatalf("Failed to reset output format: %v", err)
	}
	cliout.NoColor()

	t.Cleanup(func() {
		cliout.SetOutput(prev)
		_ = cliout.SetFormat(string(prevFormat))
	})
	return &buf
}

// CaptureLogs redirects the global logger to a buffer in text format until
// the test ends.
func CaptureLogs(t *testing.T, debug bool) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	logutil.SetupLoggerWithWriter(&buf, debug, false)
	t.Cleanup(func() {
		logutil.SetupLogger(false, false)
	})
	return &buf
}

// WriteFile writes content to name inside a temporary directory owned by
// the test and returns the full path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}
