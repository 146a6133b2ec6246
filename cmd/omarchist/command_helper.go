package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/fatih/color"
	"github.com/omarchist/omarchist/internal/infrastructure/container"
	"github.com/omarchist/omarchist/internal/infrastructure/output"
	"github.com/omarchist/omarchist/internal/infrastructure/system"
	"github.com/spf13/cobra"
)

// CommandContext provides common command dependencies.
// Eliminates repetitive container initialization across CLI commands.
type CommandContext struct {
	Container *container.Container
	Config    *system.Config
	Logger    *slog.Logger
	Context   context.Context
	Out       io.Writer
	In        io.Reader
}

// CommandHandler is a function that executes with initialized dependencies.
// Commands focus on business logic, not infrastructure setup.
type CommandHandler func(*CommandContext, *cobra.Command, []string) error

// withContainer wraps a command handler with container initialization.
// Handles common setup: config loading, logger creation, dependency injection.
func withContainer(opts *globalOptions, handler CommandHandler) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := opts.loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		logger := slog.Default()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		c, err := container.New(ctx, container.Options{
			Config: cfg,
			Logger: logger,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}

		return handler(&CommandContext{
			Container: c,
			Config:    cfg,
			Logger:    logger,
			Context:   ctx,
			Out:       cmd.OutOrStdout(),
			In:        cmd.InOrStdin(),
		}, cmd, args)
	}
}

// Print renders v in the configured output format.
func (c *CommandContext) Print(v any) error {
	formatter, err := output.NewFormatterFactory().Create(c.Config.Output, c.Out, output.Options{
		Color: !color.NoColor && c.Out == os.Stdout,
	})
	if err != nil {
		return err
	}
	return formatter.Format(v)
}

// ReadInput reads a file argument, or standard input when path is "-".
func (c *CommandContext) ReadInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(c.In)
	}
	//nolint:gosec // G304: path is supplied by the user on the command line
	return os.ReadFile(path)
}

// Confirm asks before a destructive action. It returns true without asking
// when assumeYes is set, when the config file sets assume_yes, or when the
// user turned confirmations off in settings.
func (c *CommandContext) Confirm(title string, assumeYes bool) (bool, error) {
	if assumeYes || c.Config.AssumeYes {
		return true, nil
	}
	settings, err := c.Container.SettingsService().Load(c.Context)
	if err == nil && !settings.ConfirmDestructiveActions {
		return true, nil
	}

	var confirmed bool
	err = huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed).
		Run()
	if err != nil {
		return false, fmt.Errorf("confirmation prompt failed (use --yes to skip): %w", err)
	}
	return confirmed, nil
}
