// Package report emits operator-facing status lines. The seeder's console
// output is a product surface (progress, tallies, the closing patient id),
// distinct from structured logging, so it lives behind its own narrow
// interface and stays stubbable in tests.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Kind classifies a status line.
type Kind int

const (
	KindSuccess Kind = iota
	KindError
	KindInfo
	KindHeader
)

// Reporter emits operator-facing status lines of a given kind.
type Reporter interface {
	Successf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Headerf(format string, args ...interface{})
	// Dump pretty-prints a response body (JSON indented when possible,
	// raw text otherwise) followed by a blank line.
	Dump(body string)
	// Blank emits an empty line.
	Blank()
}

// ANSI styles, applied per line. No package-level mutable styling state;
// color is a per-Console setting.
const (
	ansiGreen  = "\033[0;32m"
	ansiRed    = "\033[0;31m"
	ansiYellow = "\033[1;33m"
	ansiBlue   = "\033[0;34m"
	ansiReset  = "\033[0m"
)

// Console writes styled status lines to a writer.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	noColor bool
}

// NewConsole creates a console reporter. With noColor set, lines are
// emitted without escape sequences (for pipes and CI logs).
func NewConsole(out io.Writer, noColor bool) *Console {
	return &Console{out: out, noColor: noColor}
}

func (c *Console) line(color, prefix, format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := prefix + fmt.Sprintf(format, args...)
	if c.noColor {
		fmt.Fprintln(c.out, msg)
		return
	}
	fmt.Fprintln(c.out, color+msg+ansiReset)
}

func (c *Console) Successf(format string, args ...interface{}) {
	c.line(ansiGreen, "✓ ", format, args...)
}

func (c *Console) Errorf(format string, args ...interface{}) {
	c.line(ansiRed, "✗ ", format, args...)
}

func (c *Console) Infof(format string, args ...interface{}) {
	c.line(ansiYellow, "", format, args...)
}

func (c *Console) Headerf(format string, args ...interface{}) {
	c.line(ansiBlue, "", format, args...)
}

func (c *Console) Dump(body string) {
	if body == "" {
		return
	}
	var parsed interface{}
	if err := json.Unmarshal([]byte(body), &parsed); err == nil {
		if pretty, err := json.MarshalIndent(parsed, "", "  "); err == nil {
			body = string(pretty)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, body)
	fmt.Fprintln(c.out)
}

func (c *Console) Blank() {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out)
}
