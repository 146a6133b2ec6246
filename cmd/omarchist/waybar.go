package main

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/omarchist/omarchist/internal/application/errors"
	"github.com/omarchist/omarchist/internal/application/dto"
	domainservices "github.com/omarchist/omarchist/internal/domain/services"
	"github.com/spf13/cobra"
)

func newWaybarCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "waybar",
		Short: "Manage Waybar profiles and the live Waybar configuration",
	}

	snapshot := &cobra.Command{Use: "snapshot", Short: "Read or replace the active profile's configuration"}
	snapshot.AddCommand(newSnapshotGetCmd(opts), newSnapshotSaveCmd(opts))

	style := &cobra.Command{Use: "style", Short: "Read or replace the active profile's global CSS"}
	style.AddCommand(newStyleGetCmd(opts), newStyleSaveCmd(opts))

	profiles := &cobra.Command{Use: "profiles", Short: "List, create, select and delete profiles"}
	profiles.AddCommand(
		newProfilesListCmd(opts),
		newProfilesCreateCmd(opts),
		newProfilesSelectCmd(opts),
		newProfilesDeleteCmd(opts),
		newProfilesImportCmd(opts),
	)

	cmd.AddCommand(snapshot, style, profiles, newWaybarResetCmd(opts), newWaybarSyncCmd(opts))
	return cmd
}

func newSnapshotGetCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the active profile as one document",
		Args:  cobra.NoArgs,
		RunE: withContainer(opts, func(ctx *CommandContext, _ *cobra.Command, _ []string) error {
			snapshot, err := ctx.Container.WaybarService().LoadSnapshot(ctx.Context)
			if err != nil {
				return err
			}
			return ctx.Print(snapshot)
		}),
	}
}

func newSnapshotSaveCmd(opts *globalOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Replace the active profile's configuration",
		Long: `Replace every fragment of the active profile with the JSON document in
--file, then sync it to the live Waybar directory. Fields left out of the
document are stored empty; nothing is merged.`,
		Example: `  omarchist waybar snapshot get -o json > bar.json
  $EDITOR bar.json
  omarchist waybar snapshot save --file bar.json`,
		Args: cobra.NoArgs,
		RunE: withContainer(opts, func(ctx *CommandContext, _ *cobra.Command, _ []string) error {
			data, err := ctx.ReadInput(file)
			if err != nil {
				return fmt.Errorf("reading snapshot document: %w", err)
			}

			var payload dto.SaveWaybarConfigPayload
			if err := json.Unmarshal(data, &payload); err != nil {
				return apperrors.NewValidationError("document", err.Error())
			}

			snapshot, err := ctx.Container.WaybarService().SaveSnapshot(ctx.Context, payload)
			if err != nil {
				return err
			}
			return ctx.Print(snapshot)
		}),
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON snapshot document, or - for stdin")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newStyleGetCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the active profile's global CSS",
		Args:  cobra.NoArgs,
		RunE: withContainer(opts, func(ctx *CommandContext, _ *cobra.Command, _ []string) error {
			style, err := ctx.Container.WaybarService().GetStyle(ctx.Context)
			if err != nil {
				return err
			}
			return ctx.Print(style)
		}),
	}
}

func newStyleSaveCmd(opts *globalOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Replace the active profile's global CSS",
		Long: `Replace the global stylesheet of the active profile. Per-module style
overrides and every other fragment are kept.`,
		Args: cobra.NoArgs,
		RunE: withContainer(opts, func(ctx *CommandContext, _ *cobra.Command, _ []string) error {
			css, err := ctx.ReadInput(file)
			if err != nil {
				return fmt.Errorf("reading stylesheet: %w", err)
			}
			style, err := ctx.Container.WaybarService().SaveStyle(ctx.Context, string(css))
			if err != nil {
				return err
			}
			return ctx.Print(style)
		}),
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "CSS file, or - for stdin")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newProfilesListCmd(opts *globalOptions) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List profiles, oldest first",
		Example: `  omarchist waybar profiles list
  omarchist waybar profiles list --filter 'active || name startsWith "Tokyo"'`,
		Args: cobra.NoArgs,
		RunE: withContainer(opts, func(ctx *CommandContext, _ *cobra.Command, _ []string) error {
			// Compile before touching the store so a bad expression fails fast.
			f, err := domainservices.CompileProfileFilter(filter)
			if err != nil {
				return apperrors.NewValidationError("filter", err.Error())
			}

			if err := ctx.Container.WaybarService().Initialize(ctx.Context); err != nil {
				return err
			}
			resp, err := ctx.Container.WaybarService().ListProfiles(ctx.Context)
			if err != nil {
				return err
			}

			matched := make([]dto.ProfileSummary, 0, len(resp.Profiles))
			for _, p := range resp.Profiles {
				ok, err := f.Matches(domainservices.ProfileEnv{
					ID:        p.ID,
					Name:      p.Name,
					Active:    p.IsActive,
					CreatedAt: p.CreatedAt,
				})
				if err != nil {
					return apperrors.NewValidationError("filter", err.Error())
				}
				if ok {
					matched = append(matched, p)
				}
			}
			resp.Profiles = matched
			return ctx.Print(resp)
		}),
	}

	cmd.Flags().StringVar(&filter, "filter", "", "expression over id, name, active and created_at")
	return cmd
}

func newProfilesCreateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create a profile from the bundled defaults",
		Long: `Create a profile holding the bundled default configuration. The id is
derived from NAME (lowercase, dashes). The active profile does not change.`,
		Args: cobra.ExactArgs(1),
		RunE: withContainer(opts, func(ctx *CommandContext, _ *cobra.Command, args []string) error {
			resp, err := ctx.Container.WaybarService().CreateProfile(ctx.Context, args[0])
			if err != nil {
				return err
			}
			return ctx.Print(resp)
		}),
	}
}

func newProfilesImportCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import NAME",
		Short: "Create a profile from the live Waybar configuration",
		Long: `Create a profile from the config.jsonc and style.css currently in the
Waybar directory. The active profile does not change.`,
		Args: cobra.ExactArgs(1),
		RunE: withContainer(opts, func(ctx *CommandContext, _ *cobra.Command, args []string) error {
			resp, err := ctx.Container.WaybarService().ImportLiveProfile(ctx.Context, args[0])
			if err != nil {
				return err
			}
			return ctx.Print(resp)
		}),
	}
}

func newProfilesSelectCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "select ID",
		Short: "Make a profile active and sync it to Waybar",
		Args:  cobra.ExactArgs(1),
		RunE: withContainer(opts, func(ctx *CommandContext, _ *cobra.Command, args []string) error {
			resp, err := ctx.Container.WaybarService().SelectProfile(ctx.Context, args[0])
			if err != nil {
				return err
			}
			return ctx.Print(resp)
		}),
	}
}

func newProfilesDeleteCmd(opts *globalOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a profile",
		Long: `Delete a profile. The last remaining profile cannot be deleted. When the
active profile is deleted, "default" becomes active if it exists, otherwise the
profile with the smallest id.`,
		Args: cobra.ExactArgs(1),
		RunE: withContainer(opts, func(ctx *CommandContext, _ *cobra.Command, args []string) error {
			ok, err := ctx.Confirm(fmt.Sprintf("Delete profile %q?", args[0]), yes)
			if err != nil {
				return err
			}
			if !ok {
				ctx.Logger.Info("profile delete cancelled", "profile", args[0])
				return nil
			}

			resp, err := ctx.Container.WaybarService().DeleteProfile(ctx.Context, args[0])
			if err != nil {
				return err
			}
			return ctx.Print(resp)
		}),
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newWaybarResetCmd(opts *globalOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Replace the active profile with the bundled defaults",
		Args:  cobra.NoArgs,
		RunE: withContainer(opts, func(ctx *CommandContext, _ *cobra.Command, _ []string) error {
			ok, err := ctx.Confirm("Replace the active profile with the bundled defaults?", yes)
			if err != nil {
				return err
			}
			if !ok {
				ctx.Logger.Info("waybar reset cancelled")
				return nil
			}

			snapshot, err := ctx.Container.WaybarService().ResetActiveProfileToDefaults(ctx.Context)
			if err != nil {
				return err
			}
			return ctx.Print(snapshot)
		}),
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newWaybarSyncCmd(opts *globalOptions) *cobra.Command {
	var statusOnly bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Write the active profile to the live Waybar directory",
		Args:  cobra.NoArgs,
		RunE: withContainer(opts, func(ctx *CommandContext, _ *cobra.Command, _ []string) error {
			svc := ctx.Container.WaybarService()
			var (
				status *dto.SyncStatusResponse
				err    error
			)
			if statusOnly {
				status, err = svc.SyncStatus(ctx.Context)
			} else {
				status, err = svc.SyncActive(ctx.Context)
			}
			if err != nil {
				return err
			}
			return ctx.Print(status)
		}),
	}

	cmd.Flags().BoolVar(&statusOnly, "status", false, "only report whether the live files match the active profile")
	return cmd
}
