package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/cli/go-gh/v2/pkg/markdown"
	"github.com/markis/gh-copilot-chat/internal/stream"
)

type TerminalRenderer struct {
	out       io.Writer
	markdown  *glamour.TermRenderer
	plainText bool
	buffer    strings.Builder
}

// NewTerminalRenderer renders to stdout, as markdown wrapped at wrap columns
// unless usePlainText is set.
func NewTerminalRenderer(usePlainText bool, wrap int) *TerminalRenderer {
	return NewRenderer(os.Stdout, usePlainText, wrap)
}

func NewRenderer(out io.Writer, usePlainText bool, wrap int) *TerminalRenderer {
	var md *glamour.TermRenderer
	if !usePlainText {
		var err error
		md, err = glamour.NewTermRenderer(
			markdown.WithWrap(wrap),
			glamour.WithAutoStyle(),
		)
		if err != nil {
			usePlainText = true
		}
	}

	return &TerminalRenderer{
		out:       out,
		markdown:  md,
		plainText: usePlainText,
	}
}

// Render writes the content of the first choice as it streams in, flushing at
// paragraph breaks, and returns everything it accumulated. Events left unread
// after an error are drained in the background.
func (t *TerminalRenderer) Render(events <-chan stream.Event) (acc *stream.Accumulator, err error) {
	acc = stream.NewAccumulator()
	defer func() {
		if err != nil {
			go drain(events)
		}
	}()

	for ev := range events {
		if ev.Error != nil {
			return acc, fmt.Errorf("stream error: %w", ev.Error)
		}
		if ev.Chunk == nil {
			continue
		}

		acc.Add(ev.Chunk)
		if len(ev.Chunk.Choices) == 0 || ev.Chunk.Choices[0].Delta.Content == nil {
			continue
		}

		t.buffer.WriteString(*ev.Chunk.Choices[0].Delta.Content)
		content := t.buffer.String()

		if idx := findMarkdownBreakPoint(content); idx > 0 {
			if err := t.renderContent(content[:idx]); err != nil {
				return acc, err
			}
			// Reset buffer with remaining content
			remaining := content[idx:]
			t.buffer.Reset()
			t.buffer.WriteString(remaining)
		}
	}

	// Render any remaining content
	if remaining := t.buffer.String(); remaining != "" {
		t.buffer.Reset()
		if err := t.renderContent(remaining); err != nil {
			return acc, err
		}
	}

	if _, err := fmt.Fprintln(t.out); err != nil {
		return acc, fmt.Errorf("failed to write output: %w", err)
	}
	return acc, nil
}

func drain(events <-chan stream.Event) {
	for range events {
	}
}

func (t *TerminalRenderer) renderContent(content string) error {
	if t.plainText {
		if _, err := fmt.Fprint(t.out, content); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "#") {
		fmt.Fprintln(t.out)
	}

	mdContent, err := t.markdown.Render(content)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}

	if _, err := fmt.Fprintln(t.out, strings.TrimSpace(mdContent)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func findMarkdownBreakPoint(content string) int {
	const marker string = "\n\n"
	lastBreak := -1
	idx := strings.LastIndex(content, marker)
	if idx > lastBreak {
		lastBreak = idx + len(marker)
	}
	return lastBreak
}
