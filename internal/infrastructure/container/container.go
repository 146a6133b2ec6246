// Package container provides dependency injection for the application.
package container

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/omarchist/omarchist/internal/application/services"
	"github.com/omarchist/omarchist/internal/infrastructure/livesync"
	"github.com/omarchist/omarchist/internal/infrastructure/persistence/disk"
	"github.com/omarchist/omarchist/internal/infrastructure/system"
	"github.com/omarchist/omarchist/internal/infrastructure/validation"
	"github.com/omarchist/omarchist/internal/templates"
)

// Container holds all application dependencies.
type Container struct {
	settingsService *services.SettingsService
	waybarService   *services.WaybarConfigService
	settingsStore   *disk.SettingsFileStore
	profileStore    *disk.ProfileFileStore
	syncer          *livesync.Syncer
	systemCfg       *system.Config
	logger          *slog.Logger
}

// Options configure the container.
type Options struct {
	Logger *slog.Logger
	Config *system.Config
}

// New creates a new dependency injection container. It finishes any profile
// replacement interrupted by a crash before returning.
func New(ctx context.Context, opts Options) (*Container, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Config == nil {
		opts.Config = system.DefaultConfig()
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	schema, err := validation.NewSettingsSchema()
	if err != nil {
		return nil, fmt.Errorf("compiling settings schema: %w", err)
	}

	// Persistence adapters
	settingsStore := disk.NewSettingsFileStore(
		filepath.Join(opts.Config.DataDir, disk.SettingsFileName),
		schema,
		opts.Logger,
	)
	profileStore := disk.NewProfileFileStore(filepath.Join(opts.Config.DataDir, "waybar"), opts.Logger)
	if err := profileStore.Recover(ctx); err != nil {
		return nil, fmt.Errorf("recovering profile store: %w", err)
	}

	// Live Waybar adapters
	syncer := livesync.NewSyncer(opts.Config.WaybarDir, opts.Logger)
	reader := livesync.NewReader(opts.Config.WaybarDir)

	// Application services
	settingsService := services.NewSettingsService(settingsStore, opts.Logger)
	waybarService := services.NewWaybarConfigService(
		profileStore,
		templates.NewBundled(),
		syncer,
		opts.Logger,
		services.WithLiveConfigReader(reader),
	)

	opts.Logger.Debug("container initialized",
		"data_dir", opts.Config.DataDir,
		"waybar_dir", opts.Config.WaybarDir,
	)

	return &Container{
		settingsService: settingsService,
		waybarService:   waybarService,
		settingsStore:   settingsStore,
		profileStore:    profileStore,
		syncer:          syncer,
		systemCfg:       opts.Config,
		logger:          opts.Logger,
	}, nil
}

// SettingsService returns the settings use cases.
func (c *Container) SettingsService() *services.SettingsService {
	return c.settingsService
}

// WaybarService returns the Waybar profile use cases.
func (c *Container) WaybarService() *services.WaybarConfigService {
	return c.waybarService
}

// SettingsPath returns the location of the settings document.
func (c *Container) SettingsPath() string {
	return c.settingsStore.Path()
}

// ProfileRoot returns the directory holding the profile store.
func (c *Container) ProfileRoot() string {
	return c.profileStore.Root()
}

// WaybarDir returns the live Waybar config directory.
func (c *Container) WaybarDir() string {
	return c.syncer.Dir()
}

// SystemConfig returns the system configuration.
func (c *Container) SystemConfig() *system.Config {
	return c.systemCfg
}

// Logger returns the configured logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}
