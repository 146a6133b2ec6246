package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/omarchist/omarchist/internal/application/dto"
	apperrors "github.com/omarchist/omarchist/internal/application/errors"
	"github.com/omarchist/omarchist/internal/application/ports"
	"github.com/omarchist/omarchist/internal/domain/entities"
	"github.com/omarchist/omarchist/internal/domain/repositories"
	"github.com/omarchist/omarchist/internal/domain/services"
	"github.com/omarchist/omarchist/internal/domain/values"
)

// DefaultProfileID is the id of the profile seeded from the bundled template.
const DefaultProfileID = "default"

// DefaultProfileName is the name of the seeded profile.
const DefaultProfileName = "Default"

// ErrNoLiveConfigReader is the cause reported when importing without a live
// configuration reader.
var ErrNoLiveConfigReader = errors.New("no live config reader configured")

// WaybarConfigService manages Waybar profiles and the active profile's snapshot.
//
// Every operation holds the service lock from its first read to its last write,
// so two mutating calls never interleave their persist steps. Operations that
// change the active profile's identity or content end with a Live Sync. A sync
// failure is returned but never rolls back the stored change.
type WaybarConfigService struct {
	mu        sync.Mutex
	store     repositories.ProfileStore
	templates ports.TemplateProvider
	syncer    ports.LiveSyncer
	live      ports.LiveConfigReader
	composer  *services.SnapshotComposer
	logger    *slog.Logger
	now       func() time.Time
}

// WaybarConfigOption configures a WaybarConfigService.
type WaybarConfigOption func(*WaybarConfigService)

// WithClock replaces the time source.
func WithClock(now func() time.Time) WaybarConfigOption {
	return func(s *WaybarConfigService) {
		s.now = now
	}
}

// WithLiveConfigReader enables ImportLiveProfile.
func WithLiveConfigReader(live ports.LiveConfigReader) WaybarConfigOption {
	return func(s *WaybarConfigService) {
		s.live = live
	}
}

// NewWaybarConfigService creates a new WaybarConfigService.
func NewWaybarConfigService(
	store repositories.ProfileStore,
	templates ports.TemplateProvider,
	syncer ports.LiveSyncer,
	logger *slog.Logger,
	opts ...WaybarConfigOption,
) *WaybarConfigService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &WaybarConfigService{
		store:     store,
		templates: templates,
		syncer:    syncer,
		composer:  services.NewSnapshotComposer(),
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize seeds the default profile from the bundled template when the
// store holds no profiles, and marks it active.
func (s *WaybarConfigService) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureSeeded(ctx)
}

// ListProfiles returns every profile, oldest first. It never writes.
func (s *WaybarConfigService) ListProfiles(ctx context.Context) (*dto.ProfileListResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	listing, err := s.listSummaries(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ProfileListResponse{
		Profiles:        listing.summaries,
		ActiveProfileID: listing.activeID,
		Unreadable:      listing.unreadable,
	}, nil
}

// CreateProfile materializes a new profile from the bundled template.
// The active profile does not change.
func (s *WaybarConfigService) CreateProfile(ctx context.Context, name string) (*dto.ProfileChangeResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureSeeded(ctx); err != nil {
		return nil, err
	}
	id, name, err := s.newProfileIdentity(ctx, name)
	if err != nil {
		return nil, err
	}

	profile, err := s.fromTemplate(id, name)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, profile); err != nil {
		return nil, fmt.Errorf("creating profile %q: %w", id, err)
	}
	s.logger.Info("profile created", "profile", id.String(), "name", name)

	return s.changeResponse(ctx, profile.Metadata())
}

// ImportLiveProfile creates a new profile from the Waybar configuration
// currently on disk. The active profile does not change.
func (s *WaybarConfigService) ImportLiveProfile(ctx context.Context, name string) (*dto.ProfileChangeResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.live == nil {
		return nil, apperrors.NewFileReadError("live Waybar configuration", ErrNoLiveConfigReader)
	}
	if err := s.ensureSeeded(ctx); err != nil {
		return nil, err
	}
	id, name, err := s.newProfileIdentity(ctx, name)
	if err != nil {
		return nil, err
	}

	content, err := s.live.ReadLive(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading live configuration: %w", err)
	}
	profile := s.newProfile(id, name)
	profile.ReplaceContent(content)
	profile.Normalize()
	if err := validateProfile(profile); err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, profile); err != nil {
		return nil, fmt.Errorf("creating profile %q: %w", id, err)
	}
	s.logger.Info("profile imported from live configuration", "profile", id.String())

	return s.changeResponse(ctx, profile.Metadata())
}

// SelectProfile marks a profile active and syncs it to the live files.
// Selecting the already active profile repeats the sync.
func (s *WaybarConfigService) SelectProfile(ctx context.Context, rawID string) (*dto.ProfileChangeResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureSeeded(ctx); err != nil {
		return nil, err
	}
	id, err := parseExistingID(rawID)
	if err != nil {
		return nil, err
	}
	profile, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("selecting profile: %w", err)
	}
	if err := s.store.SetActive(ctx, id); err != nil {
		return nil, fmt.Errorf("selecting profile %q: %w", id, err)
	}
	s.logger.Info("profile selected", "profile", id.String())

	if err := s.sync(ctx, profile); err != nil {
		return nil, err
	}
	return s.changeResponse(ctx, profile.Metadata())
}

// DeleteProfile removes a profile. The last remaining profile cannot be
// deleted. When the active profile is deleted, the default profile becomes
// active if it remains, otherwise the remaining profile with the smallest id.
// A profile whose files cannot be read can still be deleted.
func (s *WaybarConfigService) DeleteProfile(ctx context.Context, rawID string) (*dto.ProfileChangeResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureSeeded(ctx); err != nil {
		return nil, err
	}
	id, err := parseExistingID(rawID)
	if err != nil {
		return nil, err
	}
	exists, err := s.store.Exists(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("deleting profile %q: %w", id, err)
	}
	if !exists {
		return nil, apperrors.NewNotFoundError(id.String())
	}
	ids, err := s.store.IDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	if len(ids) <= 1 {
		return nil, apperrors.NewConflictError(id.String(), "cannot delete the only profile")
	}

	acted := entities.ProfileMetadata{ID: id}
	if target, err := s.store.Get(ctx, id); err == nil {
		acted = target.Metadata()
	} else {
		s.logger.Warn("deleting unreadable profile", "profile", id.String(), "error", err)
	}

	// Only readable profiles can take over as active.
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}

	activeID, err := s.store.ActiveID(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading active profile: %w", err)
	}

	var fallback *entities.WaybarProfile
	if activeID.Equals(id) {
		fallbackID := FallbackProfileID(entries, id)
		if fallbackID.IsEmpty() {
			return nil, apperrors.NewConflictError(id.String(), "no readable profile can become active")
		}
		if fallback, err = s.store.Get(ctx, fallbackID); err != nil {
			return nil, fmt.Errorf("loading fallback profile: %w", err)
		}
		// The pointer moves before the profile disappears so it never dangles.
		if err := s.store.SetActive(ctx, fallbackID); err != nil {
			return nil, fmt.Errorf("selecting fallback profile %q: %w", fallbackID, err)
		}
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("deleting profile %q: %w", id, err)
	}
	s.logger.Info("profile deleted", "profile", id.String())

	if fallback != nil {
		s.logger.Info("active profile fell back", "profile", fallback.ID.String())
		if err := s.sync(ctx, fallback); err != nil {
			return nil, err
		}
	}
	return s.changeResponse(ctx, acted)
}

// FallbackProfileID picks the profile that becomes active when deleted is
// removed: the default profile if it remains, otherwise the smallest id.
// It returns the zero ID when no other profile remains.
func FallbackProfileID(entries []entities.ProfileMetadata, deleted values.ProfileID) values.ProfileID {
	var smallest values.ProfileID
	for _, e := range entries {
		if e.ID.Equals(deleted) {
			continue
		}
		if e.ID.String() == DefaultProfileID {
			return e.ID
		}
		if smallest.IsEmpty() || e.ID.Less(smallest) {
			smallest = e.ID
		}
	}
	return smallest
}

// ResetActiveProfileToDefaults replaces the active profile's content with the
// bundled template, keeping its id and name, and syncs it.
func (s *WaybarConfigService) ResetActiveProfileToDefaults(ctx context.Context) (*entities.WaybarConfigSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureSeeded(ctx); err != nil {
		return nil, err
	}
	profile, err := s.loadActive(ctx)
	if err != nil {
		return nil, err
	}
	tmpl, err := s.templates.DefaultProfile()
	if err != nil {
		return nil, fmt.Errorf("loading bundled template: %w", err)
	}

	profile.ReplaceContent(tmpl)
	profile.Normalize()
	profile.UpdatedAt = s.now().UTC()
	s.logger.Info("resetting active profile to defaults", "profile", profile.ID.String())

	return s.persistActive(ctx, profile)
}

// LoadSnapshot composes the active profile into a snapshot.
// A missing or dangling active pointer is reported as not_found.
func (s *WaybarConfigService) LoadSnapshot(ctx context.Context) (*entities.WaybarConfigSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureSeeded(ctx); err != nil {
		return nil, err
	}
	profile, err := s.loadActive(ctx)
	if err != nil {
		return nil, err
	}
	return s.composer.Compose(profile), nil
}

// SaveSnapshot replaces the active profile's content with payload as a whole.
// Fields omitted from payload are stored empty. Returns the re-read snapshot.
func (s *WaybarConfigService) SaveSnapshot(ctx context.Context, payload dto.SaveWaybarConfigPayload) (*entities.WaybarConfigSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveSnapshot(ctx, payload)
}

// GetStyle returns the active profile's global stylesheet.
func (s *WaybarConfigService) GetStyle(ctx context.Context) (*dto.StyleResponse, error) {
	snap, err := s.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.StyleResponse{ProfileID: snap.ProfileID, StyleCSS: snap.StyleCSS}, nil
}

// SaveStyle replaces only the global stylesheet. Every other field, module
// styles included, is copied forward from the current snapshot.
func (s *WaybarConfigService) SaveStyle(ctx context.Context, css string) (*dto.StyleResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureSeeded(ctx); err != nil {
		return nil, err
	}
	profile, err := s.loadActive(ctx)
	if err != nil {
		return nil, err
	}
	payload := dto.PayloadFromSnapshot(s.composer.Compose(profile))
	payload.StyleCSS = css

	snap, err := s.saveSnapshot(ctx, payload)
	if err != nil {
		return nil, err
	}
	return &dto.StyleResponse{ProfileID: snap.ProfileID, StyleCSS: snap.StyleCSS}, nil
}

// SyncActive repeats the Live Sync of the active profile.
func (s *WaybarConfigService) SyncActive(ctx context.Context) (*dto.SyncStatusResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureSeeded(ctx); err != nil {
		return nil, err
	}
	profile, err := s.loadActive(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.sync(ctx, profile); err != nil {
		return nil, err
	}
	return s.syncStatus(ctx, profile)
}

// SyncStatus reports whether the live files mirror the active profile's
// current revision. It never writes.
func (s *WaybarConfigService) SyncStatus(ctx context.Context) (*dto.SyncStatusResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.loadActive(ctx)
	if err != nil {
		return nil, err
	}
	return s.syncStatus(ctx, profile)
}

func (s *WaybarConfigService) saveSnapshot(ctx context.Context, payload dto.SaveWaybarConfigPayload) (*entities.WaybarConfigSnapshot, error) {
	if err := s.ensureSeeded(ctx); err != nil {
		return nil, err
	}
	base, err := s.loadActive(ctx)
	if err != nil {
		return nil, err
	}
	profile := s.composer.Decompose(base, payload.Content(), s.now())
	if err := validateProfile(profile); err != nil {
		return nil, err
	}
	s.logger.Info("saving snapshot", "profile", profile.ID.String())
	return s.persistActive(ctx, profile)
}

// persistActive stores profile, syncs it and returns the re-read snapshot.
func (s *WaybarConfigService) persistActive(ctx context.Context, profile *entities.WaybarProfile) (*entities.WaybarConfigSnapshot, error) {
	profile.Revision = uuid.NewString()
	if err := s.store.Put(ctx, profile); err != nil {
		return nil, fmt.Errorf("saving profile %q: %w", profile.ID, err)
	}

	stored, err := s.store.Get(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("re-reading profile: %w", err)
	}
	if err := s.sync(ctx, stored); err != nil {
		return nil, err
	}
	return s.composer.Compose(stored), nil
}

func (s *WaybarConfigService) sync(ctx context.Context, profile *entities.WaybarProfile) error {
	if err := s.syncer.Sync(ctx, profile); err != nil {
		s.logger.Warn("live sync failed", "profile", profile.ID.String(), "error", err)
		return fmt.Errorf("live sync of profile %q: %w", profile.ID, err)
	}
	s.logger.Debug("live sync complete", "profile", profile.ID.String(), "revision", profile.Revision)
	return nil
}

func (s *WaybarConfigService) syncStatus(ctx context.Context, profile *entities.WaybarProfile) (*dto.SyncStatusResponse, error) {
	state, err := s.syncer.State(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading sync state: %w", err)
	}
	status := &dto.SyncStatusResponse{
		ActiveProfileID: profile.ID.String(),
		ActiveRevision:  profile.Revision,
	}
	if state != nil {
		syncedAt := state.SyncedAt
		status.SyncedProfileID = state.ProfileID
		status.SyncedRevision = state.Revision
		status.SyncedAt = &syncedAt
		status.InSync = state.ProfileID == profile.ID.String() && state.Revision == profile.Revision
	}
	return status, nil
}

func (s *WaybarConfigService) loadActive(ctx context.Context) (*entities.WaybarProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	activeID, err := s.store.ActiveID(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading active profile: %w", err)
	}
	if activeID.IsEmpty() {
		return nil, apperrors.NewNoActiveProfileError()
	}
	profile, err := s.store.Get(ctx, activeID)
	if err != nil {
		return nil, fmt.Errorf("loading active profile: %w", err)
	}
	return profile, nil
}

func (s *WaybarConfigService) ensureSeeded(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ids, err := s.store.IDs(ctx)
	if err != nil {
		return fmt.Errorf("listing profiles: %w", err)
	}
	if len(ids) > 0 {
		return nil
	}

	profile, err := s.fromTemplate(values.MustNewProfileID(DefaultProfileID), DefaultProfileName)
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, profile); err != nil {
		return fmt.Errorf("seeding default profile: %w", err)
	}
	if err := s.store.SetActive(ctx, profile.ID); err != nil {
		return fmt.Errorf("seeding default profile: %w", err)
	}
	s.logger.Info("seeded default profile", "profile", profile.ID.String())
	return nil
}

// newProfileIdentity validates a new profile name and derives a free id.
func (s *WaybarConfigService) newProfileIdentity(ctx context.Context, name string) (values.ProfileID, string, error) {
	if err := entities.ValidateProfileName(name); err != nil {
		return values.ProfileID{}, "", apperrors.NewValidationError("name", err.Error())
	}
	name = strings.TrimSpace(name)

	id, err := values.ProfileIDFromName(name)
	if err != nil {
		return values.ProfileID{}, "", apperrors.NewValidationError("name", err.Error())
	}
	exists, err := s.store.Exists(ctx, id)
	if err != nil {
		return values.ProfileID{}, "", fmt.Errorf("checking profile %q: %w", id, err)
	}
	if exists {
		return values.ProfileID{}, "", apperrors.NewConflictError(id.String(), "a profile with this id already exists")
	}
	return id, name, nil
}

func (s *WaybarConfigService) newProfile(id values.ProfileID, name string) *entities.WaybarProfile {
	now := s.now().UTC()
	return &entities.WaybarProfile{
		ID:            id,
		Name:          name,
		FormatVersion: entities.ProfileFormatVersion,
		CreatedAt:     now,
		UpdatedAt:     now,
		Revision:      uuid.NewString(),
	}
}

func (s *WaybarConfigService) fromTemplate(id values.ProfileID, name string) (*entities.WaybarProfile, error) {
	tmpl, err := s.templates.DefaultProfile()
	if err != nil {
		return nil, fmt.Errorf("loading bundled template: %w", err)
	}
	profile := s.newProfile(id, name)
	profile.ReplaceContent(tmpl)
	profile.Normalize()
	return profile, nil
}

type profileListing struct {
	summaries  []dto.ProfileSummary
	activeID   string
	unreadable []string
}

func (s *WaybarConfigService) listSummaries(ctx context.Context) (*profileListing, error) {
	ids, err := s.store.IDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	activeID, err := s.store.ActiveID(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading active profile: %w", err)
	}

	listing := &profileListing{
		summaries: make([]dto.ProfileSummary, 0, len(entries)),
		activeID:  activeID.String(),
	}
	listed := make(map[string]bool, len(entries))
	for _, e := range entries {
		listed[e.ID.String()] = true
		listing.summaries = append(listing.summaries, dto.NewProfileSummary(e, listing.activeID))
	}
	for _, id := range ids {
		if !listed[id.String()] {
			listing.unreadable = append(listing.unreadable, id.String())
		}
	}
	return listing, nil
}

func (s *WaybarConfigService) changeResponse(ctx context.Context, acted entities.ProfileMetadata) (*dto.ProfileChangeResponse, error) {
	listing, err := s.listSummaries(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ProfileChangeResponse{
		Profiles:        listing.summaries,
		ActiveProfileID: listing.activeID,
		Profile:         dto.NewProfileSummary(acted, listing.activeID),
		Unreadable:      listing.unreadable,
	}, nil
}

// parseExistingID maps a malformed id to not_found: no stored profile can carry it.
func parseExistingID(raw string) (values.ProfileID, error) {
	id, err := values.NewProfileID(raw)
	if err != nil {
		return values.ProfileID{}, apperrors.NewNotFoundError(raw)
	}
	return id, nil
}

func validateProfile(profile *entities.WaybarProfile) error {
	violations := profile.Validate()
	if len(violations) == 0 {
		return nil
	}
	details := make([]string, 0, len(violations))
	for _, v := range violations {
		details = append(details, v.String())
	}
	return apperrors.NewValidationError(violations[0].Field, violations[0].Message, details...)
}
