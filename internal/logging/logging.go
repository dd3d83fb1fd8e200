// Package logging builds the logger shared by the CLI and the stream parser.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

const prefix = "gh-copilot"

// New returns a logger writing to w at the named level ("debug", "info",
// "warn", "error"). A nil writer logs to stderr so rendered output on stdout
// stays clean.
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	if w == nil {
		w = os.Stderr
	}

	return log.NewWithOptions(w, log.Options{
		Level:  lvl,
		Prefix: prefix,
	}), nil
}
