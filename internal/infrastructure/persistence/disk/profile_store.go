package disk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
	apperrors "github.com/omarchist/omarchist/internal/application/errors"
	"github.com/omarchist/omarchist/internal/domain/entities"
	"github.com/omarchist/omarchist/internal/domain/repositories"
	"github.com/omarchist/omarchist/internal/domain/values"
	"github.com/omarchist/omarchist/internal/infrastructure/filesystem"
	"golang.org/x/sync/errgroup"
)

// Fragment file names inside a profile directory.
const (
	MetadataFile     = "profile.yaml"
	LayoutFile       = "layout.json"
	ModulesFile      = "modules.json"
	GlobalsFile      = "globals.json"
	PassthroughFile  = "passthrough.json"
	StyleFile        = "style.css"
	ModuleStylesFile = "module-styles.json"
)

const (
	profilesDirName = "profiles"
	activeFileName  = "active.yaml"
	stagingPrefix   = ".staging-"
	trashPrefix     = ".trash-"

	// maxParallelReads bounds concurrent metadata reads when listing.
	maxParallelReads = 8
)

// supportedFormats accepts every 1.x profile; newer majors are refused, never migrated.
var supportedFormats = mustConstraint("^1.0.0")

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraint
}

var _ repositories.ProfileStore = (*ProfileFileStore)(nil)

type metadataDoc struct {
	ID            string    `yaml:"id"`
	Name          string    `yaml:"name"`
	FormatVersion string    `yaml:"format_version"`
	CreatedAt     time.Time `yaml:"created_at"`
	UpdatedAt     time.Time `yaml:"updated_at"`
	Revision      string    `yaml:"revision"`
}

type activeDoc struct {
	ActiveProfile string `yaml:"active_profile"`
}

// ProfileFileStore keeps each profile as a directory of fragment files:
//
//	<root>/active.yaml
//	<root>/profiles/<id>/profile.yaml
//	<root>/profiles/<id>/layout.json
//	...
//
// A profile is written to a staging directory and swapped in with renames,
// so a reader sees either the old or the new profile as a whole.
type ProfileFileStore struct {
	root   string
	logger *slog.Logger
}

// NewProfileFileStore creates a store rooted at root (typically <data>/waybar).
func NewProfileFileStore(root string, logger *slog.Logger) *ProfileFileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileFileStore{root: root, logger: logger}
}

// Root returns the store's root directory.
func (s *ProfileFileStore) Root() string {
	return s.root
}

func (s *ProfileFileStore) profilesDir() string {
	return filepath.Join(s.root, profilesDirName)
}

func (s *ProfileFileStore) profileDir(id values.ProfileID) string {
	return filepath.Join(s.profilesDir(), id.String())
}

func (s *ProfileFileStore) activePath() string {
	return filepath.Join(s.root, activeFileName)
}

// Recover finishes or discards swaps interrupted by a crash. Leftover staging
// directories are removed. A trashed profile whose directory is missing is
// restored; otherwise the trash is removed.
func (s *ProfileFileStore) Recover(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := os.ReadDir(s.profilesDir())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return apperrors.NewFileReadError(s.profilesDir(), err)
	}

	for _, e := range entries {
		name := e.Name()
		path := filepath.Join(s.profilesDir(), name)
		switch {
		case strings.HasPrefix(name, stagingPrefix):
			s.logger.Warn("removing interrupted profile write", "path", path)
			if err := os.RemoveAll(path); err != nil {
				return apperrors.NewFileWriteError(path, err)
			}
		case strings.HasPrefix(name, trashPrefix):
			id, ok := trashedID(name)
			target := filepath.Join(s.profilesDir(), id)
			if _, statErr := os.Stat(target); ok && errors.Is(statErr, fs.ErrNotExist) {
				s.logger.Warn("restoring profile from interrupted swap", "profile", id)
				if err := os.Rename(path, target); err != nil {
					return apperrors.NewFileWriteError(target, err)
				}
				continue
			}
			if err := os.RemoveAll(path); err != nil {
				return apperrors.NewFileWriteError(path, err)
			}
		}
	}
	return nil
}

// trashedID extracts <id> from ".trash-<id>-<8 hex>".
func trashedID(name string) (string, bool) {
	rest := strings.TrimPrefix(name, trashPrefix)
	if len(rest) < 10 || rest[len(rest)-9] != '-' {
		return "", false
	}
	id := rest[:len(rest)-9]
	if _, err := values.NewProfileID(id); err != nil {
		return "", false
	}
	return id, true
}

func trashName(id values.ProfileID) string {
	return fmt.Sprintf("%s%s-%s", trashPrefix, id, uuid.NewString()[:8])
}

// IDs returns the id of every profile directory, sorted, without reading
// any of its files.
func (s *ProfileFileStore) IDs(ctx context.Context) ([]values.ProfileID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.profilesDir())
	if errors.Is(err, fs.ErrNotExist) {
		return []values.ProfileID{}, nil
	}
	if err != nil {
		return nil, apperrors.NewFileReadError(s.profilesDir(), err)
	}

	ids := make([]values.ProfileID, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		id, err := values.NewProfileID(e.Name())
		if err != nil {
			s.logger.Debug("ignoring directory that is not a profile", "name", e.Name())
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// List reads every profile's metadata with bounded parallelism, then sorts by
// creation time and id. Profiles whose metadata cannot be read are logged and
// left out; Get reports their error.
func (s *ProfileFileStore) List(ctx context.Context) ([]entities.ProfileMetadata, error) {
	ids, err := s.IDs(ctx)
	if err != nil {
		return nil, err
	}

	metas := make([]entities.ProfileMetadata, len(ids))
	readable := make([]bool, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			meta, err := s.readMetadata(id)
			if err != nil {
				s.logger.Warn("skipping unreadable profile", "profile", id.String(), "error", err)
				return nil
			}
			metas[i] = meta
			readable[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]entities.ProfileMetadata, 0, len(ids))
	for i, ok := range readable {
		if ok {
			out = append(out, metas[i])
		}
	}
	entities.SortProfileMetadata(out)
	return out, nil
}

// Exists reports whether a profile directory is present.
func (s *ProfileFileStore) Exists(ctx context.Context, id values.ProfileID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(s.profileDir(id))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.NewFileReadError(s.profileDir(id), err)
	}
	return true, nil
}

// Get reads every fragment of a profile.
func (s *ProfileFileStore) Get(ctx context.Context, id values.ProfileID) (*entities.WaybarProfile, error) {
	exists, err := s.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NewNotFoundError(id.String())
	}

	meta, err := s.readMetadata(id)
	if err != nil {
		return nil, err
	}
	profile := &entities.WaybarProfile{
		ID:            meta.ID,
		Name:          meta.Name,
		FormatVersion: meta.FormatVersion,
		CreatedAt:     meta.CreatedAt,
		UpdatedAt:     meta.UpdatedAt,
		Revision:      meta.Revision,
	}

	dir := s.profileDir(id)
	fragments := []struct {
		file   string
		target any
	}{
		{LayoutFile, &profile.Layout},
		{ModulesFile, &profile.Modules},
		{GlobalsFile, &profile.Globals},
		{PassthroughFile, &profile.Passthrough},
		{ModuleStylesFile, &profile.ModuleStyles},
	}
	for _, f := range fragments {
		if err := readJSONFragment(filepath.Join(dir, f.file), f.target); err != nil {
			return nil, err
		}
	}

	css, err := os.ReadFile(filepath.Join(dir, StyleFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, apperrors.NewFileReadError(filepath.Join(dir, StyleFile), err)
	default:
		profile.StyleCSS = string(css)
	}

	profile.Normalize()
	return profile, nil
}

// Put writes the profile into a staging directory, then swaps it into place.
func (s *ProfileFileStore) Put(ctx context.Context, profile *entities.WaybarProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.profilesDir(), 0o755); err != nil {
		return apperrors.NewFileWriteError(s.profilesDir(), err)
	}

	files, err := encodeProfile(profile)
	if err != nil {
		return apperrors.NewFileWriteError(s.profileDir(profile.ID), err)
	}

	staging, err := os.MkdirTemp(s.profilesDir(), stagingPrefix+profile.ID.String()+"-")
	if err != nil {
		return apperrors.NewFileWriteError(s.profilesDir(), err)
	}
	defer func() { _ = os.RemoveAll(staging) }()

	for _, name := range fragmentOrder {
		if err := filesystem.WriteFileAtomic(filepath.Join(staging, name), files[name], 0o644); err != nil {
			return apperrors.NewFileWriteError(filepath.Join(staging, name), err)
		}
	}

	if err := s.swapIn(staging, profile.ID); err != nil {
		return err
	}
	s.logger.Debug("profile written", "profile", profile.ID.String(), "revision", profile.Revision)
	return nil
}

func (s *ProfileFileStore) swapIn(staging string, id values.ProfileID) error {
	final := s.profileDir(id)
	trash := filepath.Join(s.profilesDir(), trashName(id))

	hadPrevious := true
	if err := os.Rename(final, trash); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return apperrors.NewFileWriteError(final, err)
		}
		hadPrevious = false
	}

	if err := os.Rename(staging, final); err != nil {
		if hadPrevious {
			_ = os.Rename(trash, final)
		}
		return apperrors.NewFileWriteError(final, err)
	}
	if err := filesystem.SyncDir(s.profilesDir()); err != nil {
		return apperrors.NewFileWriteError(s.profilesDir(), err)
	}

	if hadPrevious {
		if err := os.RemoveAll(trash); err != nil {
			s.logger.Warn("could not remove replaced profile", "path", trash, "error", err)
		}
	}
	return nil
}

// Delete moves the profile directory aside, then removes it.
func (s *ProfileFileStore) Delete(ctx context.Context, id values.ProfileID) error {
	exists, err := s.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.NewNotFoundError(id.String())
	}

	trash := filepath.Join(s.profilesDir(), trashName(id))
	if err := os.Rename(s.profileDir(id), trash); err != nil {
		return apperrors.NewFileWriteError(s.profileDir(id), err)
	}
	if err := filesystem.SyncDir(s.profilesDir()); err != nil {
		return apperrors.NewFileWriteError(s.profilesDir(), err)
	}
	if err := os.RemoveAll(trash); err != nil {
		s.logger.Warn("could not remove deleted profile", "path", trash, "error", err)
	}
	return nil
}

// ActiveID reads the active pointer. An absent pointer file yields the zero ID.
func (s *ProfileFileStore) ActiveID(ctx context.Context) (values.ProfileID, error) {
	if err := ctx.Err(); err != nil {
		return values.ProfileID{}, err
	}
	path := s.activePath()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return values.ProfileID{}, nil
	}
	if err != nil {
		return values.ProfileID{}, apperrors.NewFileReadError(path, err)
	}

	var doc activeDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return values.ProfileID{}, apperrors.NewJSONParseError(path, err)
	}
	if strings.TrimSpace(doc.ActiveProfile) == "" {
		return values.ProfileID{}, nil
	}
	id, err := values.NewProfileID(doc.ActiveProfile)
	if err != nil {
		return values.ProfileID{}, apperrors.NewCorruptedError(path, err)
	}
	return id, nil
}

// SetActive atomically replaces the active pointer. The zero ID removes it.
func (s *ProfileFileStore) SetActive(ctx context.Context, id values.ProfileID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.activePath()
	if id.IsEmpty() {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return apperrors.NewFileWriteError(path, err)
		}
		return nil
	}

	data, err := yaml.Marshal(activeDoc{ActiveProfile: id.String()})
	if err != nil {
		return apperrors.NewFileWriteError(path, err)
	}
	if err := filesystem.WriteFileAtomic(path, data, 0o644); err != nil {
		return apperrors.NewFileWriteError(path, err)
	}
	return nil
}

func (s *ProfileFileStore) readMetadata(id values.ProfileID) (entities.ProfileMetadata, error) {
	path := filepath.Join(s.profileDir(id), MetadataFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return entities.ProfileMetadata{}, apperrors.NewCorruptedError(path, fmt.Errorf("profile metadata is missing"))
	}
	if err != nil {
		return entities.ProfileMetadata{}, apperrors.NewFileReadError(path, err)
	}

	var doc metadataDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return entities.ProfileMetadata{}, apperrors.NewJSONParseError(path, err)
	}
	if doc.ID != id.String() {
		return entities.ProfileMetadata{}, apperrors.NewCorruptedError(path,
			fmt.Errorf("metadata id %q does not match directory %q", doc.ID, id))
	}
	if err := checkFormatVersion(doc.FormatVersion); err != nil {
		return entities.ProfileMetadata{}, apperrors.NewCorruptedError(path, err)
	}

	return entities.ProfileMetadata{
		ID:            id,
		Name:          doc.Name,
		FormatVersion: doc.FormatVersion,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
		Revision:      doc.Revision,
	}, nil
}

func checkFormatVersion(raw string) error {
	v, err := semver.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("invalid format version %q: %w", raw, err)
	}
	if !supportedFormats.Check(v) {
		return fmt.Errorf("unsupported format version %s (supported: %s)", v, supportedFormats)
	}
	return nil
}

// readJSONFragment decodes path into target. A missing fragment leaves target empty.
func readJSONFragment(path string, target any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return apperrors.NewFileReadError(path, err)
	}
	if !json.Valid(data) {
		var probe any
		return apperrors.NewJSONParseError(path, json.Unmarshal(data, &probe))
	}
	if err := json.Unmarshal(data, target); err != nil {
		return apperrors.NewCorruptedError(path, err)
	}
	return nil
}

var fragmentOrder = []string{
	LayoutFile, ModulesFile, GlobalsFile, PassthroughFile, ModuleStylesFile, StyleFile, MetadataFile,
}

func encodeProfile(p *entities.WaybarProfile) (map[string][]byte, error) {
	p = p.Clone()
	p.Normalize()

	files := make(map[string][]byte, len(fragmentOrder))
	jsonFragments := []struct {
		file  string
		value any
	}{
		{LayoutFile, p.Layout},
		{ModulesFile, p.Modules},
		{GlobalsFile, p.Globals},
		{PassthroughFile, p.Passthrough},
		{ModuleStylesFile, p.ModuleStyles},
	}
	for _, f := range jsonFragments {
		data, err := marshalIndent(f.value)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", f.file, err)
		}
		files[f.file] = data
	}
	files[StyleFile] = []byte(p.StyleCSS)

	format := p.FormatVersion
	if format == "" {
		format = entities.ProfileFormatVersion
	}
	meta, err := yaml.Marshal(metadataDoc{
		ID:            p.ID.String(),
		Name:          p.Name,
		FormatVersion: format,
		CreatedAt:     p.CreatedAt.UTC(),
		UpdatedAt:     p.UpdatedAt.UTC(),
		Revision:      p.Revision,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", MetadataFile, err)
	}
	files[MetadataFile] = meta
	return files, nil
}

// marshalIndent encodes v without HTML escaping, so shell commands such as
// "a && b" in module configs are stored as written.
func marshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
