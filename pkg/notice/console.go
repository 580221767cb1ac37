package notice

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

const (
	ansiCyan  = "\x1b[36m"
	ansiReset = "\x1b[0m"
)

// Console writes notices to a terminal stream, one per line.
type Console struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// NewConsole writes to f, with color when ShouldUseColor allows it.
func NewConsole(f *os.File) *Console {
	return &Console{w: f, color: ShouldUseColor(f)}
}

// NewConsoleWriter writes to w with explicit color choice.
func NewConsoleWriter(w io.Writer, color bool) *Console {
	return &Console{w: w, color: color}
}

// Notify implements Notifier.
func (c *Console) Notify(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.color {
		fmt.Fprintf(c.w, "%s▸%s %s\n", ansiCyan, ansiReset, message)
		return
	}
	fmt.Fprintf(c.w, "▸ %s\n", message)
}

// ShouldUseColor reports whether ANSI colors should be written to f.
// It respects NO_COLOR, CLICOLOR_FORCE, CLICOLOR, and TTY detection.
func ShouldUseColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR_FORCE")) == "1" {
		return true
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR")) == "0" {
		return false
	}
	return f != nil && term.IsTerminal(int(f.Fd()))
}
