package testutil

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jongio/taskport/cliout"
	"github.com/jongio/taskport/logutil"
)

func TestCaptureOutput(t *testing.T) {
	t.Run("captures stdout", func(t *testing.T) {
		output := CaptureOutput(t, func() error {
			fmt.Println("line 1")
			fmt.Println("line 2")
			return nil
		})
		if !strings.Contains(output, "line 1") || !strings.Contains(output, "line 2") {
			t.Errorf("expected both lines, got: %q", output)
		}
	})

	t.Run("restores stdout on error", func(t *testing.T) {
		orig := os.Stdout
		output := CaptureOutput(t, func() error {
			fmt.Println("output before error")
			return errors.New("test error")
		})
		if !strings.Contains(output, "output before error") {
			t.Error("expected output to contain 'output before error'")
		}
		if os.Stdout != orig {
			t.Error("expected stdout to be restored")
		}
	})

	t.Run("handles empty output", func(t *testing.T) {
		if output := CaptureOutput(t, func() error { return nil }); output != "" {
			t.Errorf("expected empty output, got: %q", output)
		}
	})
}

func TestCaptureCLI(t *testing.T) {
	out := CaptureCLI(t)
	cliout.Success("SUCCESS with direct")
	cliout.Label("Target PID", "42")

	got := out.String()
	if !strings.Contains(got, "SUCCESS with direct") {
		t.Errorf("expected success line, got: %q", got)
	}
	if strings.Contains(got, "\033[") {
		t.Errorf("expected no ANSI codes, got: %q", got)
	}
}

func TestCaptureLogs(t *testing.T) {
	logs := CaptureLogs(t, true)
	logutil.Debug("released handle", "handle", "0x103")
	if !strings.Contains(logs.String(), "released handle") {
		t.Errorf("expected debug line in logs, got: %q", logs.String())
	}

	quiet := CaptureLogs(t, false)
	logutil.Debug("hidden")
	if quiet.Len() != 0 {
		t.Errorf("expected no debug output, got: %q", quiet.String())
	}
}

func TestWriteFile(t *testing.T) {
	path := WriteFile(t, "taskport.yaml", "method: enumerate\n")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "method: enumerate\n" {
		t.Errorf("unexpected content %q", data)
	}
}
