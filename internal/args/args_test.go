package args

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markis/gh-copilot-chat/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		Model: "gpt-4o",
		Log:   config.LogConfig{Level: "warn"},
		Prompts: map[string]config.Prompt{
			"explain": {Prompt: "Explain this code"},
			"review":  {Prompt: "Review this diff", Model: "o1"},
		},
	}
}

func TestParseArgs_DirectPrompt(t *testing.T) {
	args, err := ParseArgs(context.Background(), testConfig(), []string{"what is a goroutine"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"what is a goroutine"}, args.Prompts)
	assert.Equal(t, "gpt-4o", args.Model)
	assert.Equal(t, "warn", args.LogLevel)
	assert.Empty(t, args.Command)
}

func TestParseArgs_Flags(t *testing.T) {
	args, err := ParseArgs(context.Background(), testConfig(),
		[]string{"--model", "claude-3.7-sonnet", "--plain", "--log-level", "debug", "hi"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "claude-3.7-sonnet", args.Model)
	assert.True(t, args.UsePlainText)
	assert.Equal(t, "debug", args.LogLevel)
}

func TestParseArgs_PredefinedCommand(t *testing.T) {
	args, err := ParseArgs(context.Background(), testConfig(), []string{"review", "main.go"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "review", args.Command)
	assert.Equal(t, []string{"main.go", "Review this diff"}, args.Prompts)
	assert.Equal(t, "o1", args.Model)
}

func TestParseArgs_ExplicitModelOverridesCommand(t *testing.T) {
	args, err := ParseArgs(context.Background(), testConfig(), []string{"review", "--model", "gpt-4.1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1", args.Model)
}

func TestParseArgs_Stdin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stdin")
	require.NoError(t, os.WriteFile(path, []byte("  piped input\n"), 0o600))
	stdin, err := os.Open(path)
	require.NoError(t, err)
	defer stdin.Close()

	args, err := ParseArgs(context.Background(), testConfig(), []string{"explain"}, stdin)
	require.NoError(t, err)
	assert.Equal(t, []string{"piped input", "Explain this code"}, args.Prompts)
}

func TestParseArgs_NoPrompt(t *testing.T) {
	_, err := ParseArgs(context.Background(), testConfig(), []string{}, nil)
	assert.EqualError(t, err, "no prompt provided")
}

func TestSummarizePrompt(t *testing.T) {
	assert.Equal(t, "short", summarizePrompt("  short  "))

	long := summarizePrompt(strings.Repeat("x", 100))
	assert.Len(t, long, 60)
	assert.True(t, strings.HasSuffix(long, "..."))
}
