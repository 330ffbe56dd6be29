package cliout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Format represents the output format.
type Format string

const (
	// FormatDefault is the default human-readable format.
	FormatDefault Format = "default"
	// FormatJSON is JSON format.
	FormatJSON Format = "json"
)

// ANSI color codes for consistent styling
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	BrightRed    = "\033[91m"
	BrightGreen  = "\033[92m"
	BrightYellow = "\033[93m"
	BrightBlue   = "\033[94m"
)

// Unicode symbols
const (
	SymbolCheck   = "✓"
	SymbolCross   = "✗"
	SymbolWarning = "⚠"
	SymbolInfo    = "ℹ"
)

// ASCII fallback symbols, matching the classic "[+] found" style of
// diagnostic tools.
const (
	ASCIICheck   = "[+]"
	ASCIICross   = "[-]"
	ASCIIWarning = "[!]"
	ASCIIInfo    = "[i]"
)

var (
	// mu protects global state variables
	mu           sync.RWMutex
	globalFormat           = FormatDefault
	out          io.Writer = os.Stdout
	color                  = isTerminal(os.Stdout)
	unicode                = color
)

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// SetFormat sets the global output format.
func SetFormat(format string) error {
	mu.Lock()
	defer mu.Unlock()

	switch strings.ToLower(format) {
	case "default", "":
		globalFormat = FormatDefault
	case "json":
		globalFormat = FormatJSON
	default:
		return fmt.Errorf("invalid output format: %s (valid options: default, json)", format)
	}
	return nil
}

// GetFormat returns the current output format.
func GetFormat() Format {
	mu.RLock()
	defer mu.RUnlock()
	return globalFormat
}

// IsJSON returns true if the output format is JSON.
func IsJSON() bool {
	return GetFormat() == FormatJSON
}

// SetOutput redirects all output and returns the previous writer. Color and
// Unicode symbols are enabled only when w is a terminal.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()

	prev := out
	out = w
	f, ok := w.(*os.File)
	color = ok && isTerminal(f)
	unicode = color
	return prev
}

// NoColor disables color output and Unicode symbols.
func NoColor() {
	mu.Lock()
	color = false
	unicode = false
	mu.Unlock()
}

// ForceColor enables color output regardless of terminal detection.
func ForceColor() {
	mu.Lock()
	color = true
	unicode = true
	mu.Unlock()
}

func state() (io.Writer, bool, bool, Format) {
	mu.RLock()
	defer mu.RUnlock()
	return out, color, unicode, globalFormat
}

// styled writes one human-readable line; it is a no-op in JSON mode.
func styled(prefix, style, symbol, ascii, format string, args ...any) {
	w, useColor, useUnicode, f := state()
	if f == FormatJSON {
		return
	}
	icon := ascii
	if useUnicode {
		icon = symbol
	}
	msg := fmt.Sprintf(format, args...)
	if useColor {
		fmt.Fprintf(w, "%s%s%s%s %s\n", prefix, style, icon, Reset, msg)
		return
	}
	fmt.Fprintf(w, "%s%s %s\n", prefix, icon, msg)
}

// PrintJSON prints data as indented JSON.
func PrintJSON(data any) error {
	w, _, _, _ := state()
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Print outputs data in the configured format.
// For default format, uses the formatter function.
// For JSON format, marshals the data object.
func Print(data any, formatter func()) error {
	if IsJSON() {
		return PrintJSON(data)
	}
	formatter()
	return nil
}

// Header prints a bold header with a divider
func Header(text string) {
	w, useColor, _, f := state()
	if f == FormatJSON {
		return
	}
	if useColor {
		fmt.Fprintf(w, "%s%s%s\n", Bold, text, Reset)
	} else {
		fmt.Fprintln(w, text)
	}
	fmt.Fprintln(w, strings.Repeat("-", len(text)))
}

// Success prints a success message with a green check
func Success(format string, args ...any) {
	styled("", BrightGreen, SymbolCheck, ASCIICheck, format, args...)
}

// Error prints an error message with a red cross
func Error(format string, args ...any) {
	styled("", BrightRed, SymbolCross, ASCIICross, format, args...)
}

// Warning prints a warning message
func Warning(format string, args ...any) {
	styled("", BrightYellow, SymbolWarning, ASCIIWarning, format, args...)
}

// Info prints an info message
func Info(format string, args ...any) {
	styled("", BrightBlue, SymbolInfo, ASCIIInfo, format, args...)
}

// ItemWarning prints an indented warning item
func ItemWarning(format string, args ...any) {
	styled("   ", BrightYellow, SymbolWarning, ASCIIWarning, format, args...)
}

// Label prints a label and value pair
func Label(label, value string) {
	w, useColor, _, f := state()
	if f == FormatJSON {
		return
	}
	if useColor {
		fmt.Fprintf(w, "%s%-12s%s %s\n", Dim, label+":", Reset, value)
		return
	}
	fmt.Fprintf(w, "%-12s %s\n", label+":", value)
}

// Divider prints the "---" separator between the run header and the attempt.
func Divider() {
	Plain("---")
}

// Plain prints plain text without any formatting.
func Plain(format string, args ...any) {
	w, _, _, f := state()
	if f == FormatJSON {
		return
	}
	fmt.Fprintf(w, format+"\n", args...)
}
