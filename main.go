package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/markis/gh-copilot-chat/internal/args"
	"github.com/markis/gh-copilot-chat/internal/client"
	"github.com/markis/gh-copilot-chat/internal/config"
	"github.com/markis/gh-copilot-chat/internal/logging"
	"github.com/markis/gh-copilot-chat/internal/render"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	a, err := args.ParseArgs(ctx, *cfg, os.Args[1:], os.Stdin)
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, a.LogLevel)
	if err != nil {
		return err
	}

	events, err := client.New(*cfg, logger).Ask(ctx, a.Prompts, a.Model)
	if err != nil {
		return err
	}

	acc, err := render.NewTerminalRenderer(a.UsePlainText, cfg.Render.Wrap).Render(events)
	if err != nil {
		return err
	}

	if usage := acc.Usage(); usage != nil {
		logger.Debug("token usage",
			"prompt", usage.PromptTokens,
			"completion", usage.CompletionTokens,
			"total", usage.TotalTokens)
	}
	return nil
}
