// Package services contains application use cases.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	apperrors "github.com/omarchist/omarchist/internal/application/errors"
	"github.com/omarchist/omarchist/internal/domain/entities"
	"github.com/omarchist/omarchist/internal/domain/repositories"
	"github.com/omarchist/omarchist/internal/domain/services"
)

// SettingsService implements the settings operations: get, update and reset.
// Operations are serialized; the stored document is always replaced whole.
type SettingsService struct {
	mu        sync.Mutex
	repo      repositories.SettingsRepository
	sanitizer *services.SettingsSanitizer
	logger    *slog.Logger
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(repo repositories.SettingsRepository, logger *slog.Logger) *SettingsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsService{
		repo:      repo,
		sanitizer: services.NewSettingsSanitizer(),
		logger:    logger,
	}
}

// Load returns the stored settings, or the defaults when none are stored.
// A malformed document is reported and left untouched on disk.
func (s *SettingsService) Load(ctx context.Context) (entities.AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return entities.AppSettings{}, err
	}
	settings, err := s.repo.Load(ctx)
	if err != nil {
		return entities.AppSettings{}, fmt.Errorf("loading settings: %w", err)
	}
	return settings, nil
}

// Validate sanitizes a candidate document. Out-of-range numeric fields are
// clamped; a field with a reject policy fails the whole document.
func (s *SettingsService) Validate(candidate entities.AppSettings) (entities.AppSettings, error) {
	res := s.sanitizer.Sanitize(candidate)
	if len(res.Violations) > 0 {
		first := res.Violations[0]
		details := make([]string, 0, len(res.Violations))
		for _, v := range res.Violations {
			details = append(details, v.String())
		}
		return entities.AppSettings{}, apperrors.NewValidationError(first.Field, first.Message, details...)
	}
	for _, adj := range res.Adjusted {
		s.logger.Debug("settings field adjusted", "field", adj.Field, "detail", adj.Message)
	}
	return res.Settings, nil
}

// Save stores an already validated document.
func (s *SettingsService) Save(ctx context.Context, settings entities.AppSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, settings)
}

// Update validates candidate, stores it and returns the stored document.
func (s *SettingsService) Update(ctx context.Context, candidate entities.AppSettings) (entities.AppSettings, error) {
	validated, err := s.Validate(candidate)
	if err != nil {
		return entities.AppSettings{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.save(ctx, validated); err != nil {
		return entities.AppSettings{}, err
	}
	s.logger.Info("settings updated")
	return validated, nil
}

// Reset overwrites the stored document with the defaults and returns them.
func (s *SettingsService) Reset(ctx context.Context) (entities.AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defaults := entities.DefaultAppSettings()
	if err := s.save(ctx, defaults); err != nil {
		return entities.AppSettings{}, err
	}
	s.logger.Info("settings reset to defaults")
	return defaults, nil
}

func (s *SettingsService) save(ctx context.Context, settings entities.AppSettings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, settings); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}
