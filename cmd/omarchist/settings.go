package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	apperrors "github.com/omarchist/omarchist/internal/application/errors"
	"github.com/omarchist/omarchist/internal/domain/entities"
	"github.com/spf13/cobra"
)

func newSettingsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show and change application settings",
	}
	cmd.AddCommand(
		newSettingsGetCmd(opts),
		newSettingsUpdateCmd(opts),
		newSettingsResetCmd(opts),
	)
	return cmd
}

func newSettingsGetCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the current settings",
		Long: `Print the settings document. Defaults are shown when no settings have
been saved yet; nothing is written.`,
		Args: cobra.NoArgs,
		RunE: withContainer(opts, func(ctx *CommandContext, _ *cobra.Command, _ []string) error {
			settings, err := ctx.Container.SettingsService().Load(ctx.Context)
			if err != nil {
				return err
			}
			return ctx.Print(settings)
		}),
	}
}

func newSettingsUpdateCmd(opts *globalOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Replace the settings document",
		Long: `Validate and store a complete settings document read from a JSON file.
Fields missing from the document take their defaults. Out-of-range numbers are
clamped; invalid enum values and colors are rejected.`,
		Example: `  omarchist settings get -o json > settings.json
  omarchist settings update --file settings.json
  echo '{"theme":"dark"}' | omarchist settings update --file -`,
		Args: cobra.NoArgs,
		RunE: withContainer(opts, func(ctx *CommandContext, _ *cobra.Command, _ []string) error {
			data, err := ctx.ReadInput(file)
			if err != nil {
				return fmt.Errorf("reading settings document: %w", err)
			}

			candidate, err := decodeSettings(data)
			if err != nil {
				return err
			}

			stored, err := ctx.Container.SettingsService().Update(ctx.Context, candidate)
			if err != nil {
				return err
			}
			return ctx.Print(stored)
		}),
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON settings document, or - for stdin")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newSettingsResetCmd(opts *globalOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default settings",
		Args:  cobra.NoArgs,
		RunE: withContainer(opts, func(ctx *CommandContext, _ *cobra.Command, _ []string) error {
			ok, err := ctx.Confirm("Reset all settings to their defaults?", yes)
			if err != nil {
				return err
			}
			if !ok {
				ctx.Logger.Info("settings reset cancelled")
				return nil
			}

			settings, err := ctx.Container.SettingsService().Reset(ctx.Context)
			if err != nil {
				return err
			}
			return ctx.Print(settings)
		}),
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// decodeSettings overlays a JSON document on the defaults.
func decodeSettings(data []byte) (entities.AppSettings, error) {
	settings := entities.DefaultAppSettings()
	if len(bytes.TrimSpace(data)) == 0 {
		return settings, apperrors.NewValidationError("document", "settings document is empty")
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return settings, apperrors.NewValidationError("document", err.Error())
	}
	return settings, nil
}
