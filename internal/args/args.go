package args

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/markis/gh-copilot-chat/internal/config"
	"github.com/spf13/cobra"
)

// Arguments represents the command-line arguments structure.
type Arguments struct {
	Prompts      []string
	Model        string
	Command      string
	UsePlainText bool
	LogLevel     string
}

// ParseArgs parses argv and piped stdin into Arguments.
// Every prompt defined in the config becomes a subcommand; a bare argument is
// used as a direct prompt. stdin may be nil.
func ParseArgs(ctx context.Context, cfg config.Config, argv []string, stdin *os.File) (Arguments, error) {
	args := Arguments{}

	rootCmd := &cobra.Command{
		Use:   "gh-copilot [command] [flags] [prompt]",
		Short: "A GitHub Copilot CLI tool for AI-assisted development",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			if len(cmdArgs) > 0 {
				args.Prompts = append(args.Prompts, cmdArgs[0])
			}
			return nil
		},
		SilenceErrors: true, // We'll handle error reporting
		SilenceUsage:  true, // We'll handle usage display
	}

	rootCmd.PersistentFlags().StringVar(&args.Model, "model", cfg.Model, "The AI model to use")
	rootCmd.PersistentFlags().BoolVar(&args.UsePlainText, "plain", shouldUsePlainText(cfg), "Disable markdown rendering")
	rootCmd.PersistentFlags().StringVar(&args.LogLevel, "log-level", cfg.Log.Level, "Log level (debug, info, warn, error)")

	names := make([]string, 0, len(cfg.Prompts))
	for name := range cfg.Prompts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cmdPrompt := cfg.Prompts[name]
		cmd := &cobra.Command{
			Use:   name + " [input]",
			Short: summarizePrompt(cmdPrompt.Prompt),
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, cmdArgs []string) error {
				args.Command = name
				if len(cmdArgs) > 0 {
					args.Prompts = append(args.Prompts, cmdArgs[0])
				}
				args.Prompts = append(args.Prompts, cmdPrompt.Prompt)
				// an explicit --model wins over the prompt's model
				if cmdPrompt.Model != "" && !cmd.Flags().Changed("model") {
					args.Model = cmdPrompt.Model
				}
				return nil
			},
		}
		rootCmd.AddCommand(cmd)
	}

	if isPiped(stdin) {
		prompt, err := readPrompt(stdin)
		if err != nil {
			return Arguments{}, err
		}
		if prompt != "" {
			args.Prompts = append(args.Prompts, prompt)
		}
	}

	rootCmd.SetArgs(argv)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return Arguments{}, err
	}

	if len(args.Prompts) == 0 {
		return Arguments{}, errors.New("no prompt provided")
	}

	return args, nil
}

func isPiped(f *os.File) bool {
	if f == nil {
		return false
	}
	stat, err := f.Stat()
	return err == nil && (stat.Mode()&os.ModeCharDevice) == 0
}

func readPrompt(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) // 1MB max buffer
	var buf strings.Builder
	for scanner.Scan() {
		buf.WriteString(scanner.Text())
		buf.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// shouldUsePlainText determines if plain text output should be used based on environment and terminal settings.
func shouldUsePlainText(cfg config.Config) bool {
	if cfg.Render.Format == "plain" {
		return true
	}

	// Check if output is being redirected
	if fileInfo, _ := os.Stdout.Stat(); fileInfo != nil {
		if (fileInfo.Mode() & os.ModeCharDevice) == 0 {
			return true
		}
	}

	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return true
	}

	if term := os.Getenv("TERM"); term == "dumb" {
		return true
	}

	return false
}

func summarizePrompt(prompt string) string {
	summary := strings.TrimSpace(prompt)
	if len(summary) > 60 {
		summary = summary[:57] + "..."
	}
	return summary
}
