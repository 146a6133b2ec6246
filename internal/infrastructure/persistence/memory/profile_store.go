// Package memory provides in-memory implementations of domain repositories.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	apperrors "github.com/omarchist/omarchist/internal/application/errors"
	"github.com/omarchist/omarchist/internal/domain/entities"
	"github.com/omarchist/omarchist/internal/domain/repositories"
	"github.com/omarchist/omarchist/internal/domain/values"
)

// Ensure interface compliance
var _ repositories.ProfileStore = (*ProfileStore)(nil)

// ProfileStore is an in-memory implementation of repositories.ProfileStore.
// Useful for testing and for dry runs that must not touch the data directory.
type ProfileStore struct {
	profiles map[string]*entities.WaybarProfile
	active   values.ProfileID
	mu       sync.RWMutex
}

// NewProfileStore creates a new in-memory profile store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles: make(map[string]*entities.WaybarProfile),
	}
}

// List returns the metadata of every profile, oldest first.
func (s *ProfileStore) List(_ context.Context) ([]entities.ProfileMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.ProfileMetadata, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p.Metadata())
	}
	entities.SortProfileMetadata(out)
	return out, nil
}

// IDs returns every stored profile id in ascending order.
func (s *ProfileStore) IDs(_ context.Context) ([]values.ProfileID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]values.ProfileID, 0, len(s.profiles))
	for _, p := range s.profiles {
		ids = append(ids, p.ID)
	}
	slices.SortFunc(ids, func(a, b values.ProfileID) int {
		return strings.Compare(a.String(), b.String())
	})
	return ids, nil
}

// Get returns a copy of the stored profile.
func (s *ProfileStore) Get(_ context.Context, id values.ProfileID) (*entities.WaybarProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id.String()]
	if !ok {
		return nil, apperrors.NewNotFoundError(id.String())
	}
	return p.Clone(), nil
}

// Exists reports whether the profile is stored.
func (s *ProfileStore) Exists(_ context.Context, id values.ProfileID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.profiles[id.String()]
	return ok, nil
}

// Put stores a copy of profile, so later changes by the caller are not visible.
func (s *ProfileStore) Put(_ context.Context, profile *entities.WaybarProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := profile.Clone()
	stored.Normalize()
	s.profiles[profile.ID.String()] = stored
	return nil
}

// Delete removes a profile.
func (s *ProfileStore) Delete(_ context.Context, id values.ProfileID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[id.String()]; !ok {
		return apperrors.NewNotFoundError(id.String())
	}
	delete(s.profiles, id.String())
	return nil
}

// ActiveID returns the active pointer.
func (s *ProfileStore) ActiveID(_ context.Context) (values.ProfileID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active, nil
}

// SetActive replaces the active pointer. The zero ID clears it.
func (s *ProfileStore) SetActive(_ context.Context, id values.ProfileID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = id
	return nil
}
