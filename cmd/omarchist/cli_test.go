package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/omarchist/omarchist/internal/application/errors"
	"github.com/omarchist/omarchist/internal/application/dto"
	"github.com/omarchist/omarchist/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliEnv struct {
	dir       string
	dataDir   string
	waybarDir string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	return &cliEnv{
		dir:       dir,
		dataDir:   filepath.Join(dir, "data"),
		waybarDir: filepath.Join(dir, "waybar"),
	}
}

// run executes the CLI with JSON output and returns stdout.
func (e *cliEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{
		"--config", filepath.Join(e.dir, "config.yaml"),
		"--data-dir", e.dataDir,
		"--waybar-dir", e.waybarDir,
		"--output", "json",
	}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, "", args...)
	require.NoError(t, err, "omarchist %s", strings.Join(args, " "))
	return out
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestCLI_Settings(t *testing.T) {
	env := newCLIEnv(t)

	got := decode[entities.AppSettings](t, env.mustRun(t, "settings", "get"))
	assert.Equal(t, entities.DefaultAppSettings(), got)
	assert.NoFileExists(t, filepath.Join(env.dataDir, "settings.json"), "get never writes")

	doc := filepath.Join(env.dir, "settings.json")
	require.NoError(t, os.WriteFile(doc, []byte(`{"theme":"dark","font_scale":9}`), 0o600))
	stored := decode[entities.AppSettings](t, env.mustRun(t, "settings", "update", "--file", doc))
	assert.Equal(t, entities.ThemeDark, stored.Theme)
	assert.Equal(t, entities.MaxFontScale, stored.FontScale)

	got = decode[entities.AppSettings](t, env.mustRun(t, "settings", "get"))
	assert.Equal(t, stored, got)

	_, err := env.run(t, `{"accent_color":"blue"}`, "settings", "update", "--file", "-")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.KindValidation)

	reset := decode[entities.AppSettings](t, env.mustRun(t, "settings", "reset", "--yes"))
	assert.Equal(t, entities.DefaultAppSettings(), reset)
}

func TestCLI_SettingsCorruptedFileIsReported(t *testing.T) {
	env := newCLIEnv(t)
	require.NoError(t, os.MkdirAll(env.dataDir, 0o755))
	path := filepath.Join(env.dataDir, "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"theme": `), 0o600))

	_, err := env.run(t, "", "settings", "get")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.KindJSONParse)
	assert.Contains(t, userMessage(err), "not valid JSON")
}

func TestCLI_ProfileLifecycle(t *testing.T) {
	env := newCLIEnv(t)

	created := decode[dto.ProfileChangeResponse](t, env.mustRun(t, "waybar", "profiles", "create", "Tokyo Night"))
	assert.Equal(t, "tokyo-night", created.Profile.ID)
	assert.Equal(t, "default", created.ActiveProfileID, "creating never changes the active profile")
	assert.Len(t, created.Profiles, 2)

	filtered := decode[dto.ProfileListResponse](t, env.mustRun(t, "waybar", "profiles", "list", "--filter", `name startsWith "Tokyo"`))
	require.Len(t, filtered.Profiles, 1)
	assert.Equal(t, "tokyo-night", filtered.Profiles[0].ID)

	_, err := env.run(t, "", "waybar", "profiles", "list", "--filter", "name +")
	assert.ErrorIs(t, err, apperrors.KindValidation)

	selected := decode[dto.ProfileChangeResponse](t, env.mustRun(t, "waybar", "profiles", "select", "tokyo-night"))
	assert.Equal(t, "tokyo-night", selected.ActiveProfileID)
	assert.FileExists(t, filepath.Join(env.waybarDir, "config.jsonc"))
	assert.FileExists(t, filepath.Join(env.waybarDir, "style.css"))

	status := decode[dto.SyncStatusResponse](t, env.mustRun(t, "waybar", "sync", "--status"))
	assert.True(t, status.InSync)
	assert.Equal(t, "tokyo-night", status.SyncedProfileID)

	deleted := decode[dto.ProfileChangeResponse](t, env.mustRun(t, "waybar", "profiles", "delete", "tokyo-night", "--yes"))
	assert.Equal(t, "default", deleted.ActiveProfileID)
	assert.Len(t, deleted.Profiles, 1)

	_, err = env.run(t, "", "waybar", "profiles", "delete", "default", "--yes")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.KindConflict)

	_, err = env.run(t, "", "waybar", "profiles", "select", "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.KindNotFound)
	assert.Equal(t, `Profile "missing": not found.`, userMessage(err))
}

func TestCLI_SnapshotAndStyle(t *testing.T) {
	env := newCLIEnv(t)

	snap := decode[entities.WaybarConfigSnapshot](t, env.mustRun(t, "waybar", "snapshot", "get"))
	assert.Equal(t, "default", snap.ProfileID)
	require.NotEmpty(t, snap.Layout.Left)

	snap.Layout.Center = []string{"clock"}
	snap.Passthrough = map[string]json.RawMessage{"mode": json.RawMessage(`"dock"`)}
	edited, err := json.Marshal(snap)
	require.NoError(t, err)

	out, err := env.run(t, string(edited), "waybar", "snapshot", "save", "--file", "-")
	require.NoError(t, err)
	saved := decode[entities.WaybarConfigSnapshot](t, out)
	assert.Equal(t, []string{"clock"}, saved.Layout.Center)
	assert.JSONEq(t, `"dock"`, string(saved.Passthrough["mode"]))

	live, err := os.ReadFile(filepath.Join(env.waybarDir, "config.jsonc"))
	require.NoError(t, err)
	assert.Contains(t, string(live), `"mode": "dock"`)

	out, err = env.run(t, "* { font-size: 14px; }\n", "waybar", "style", "save", "--file", "-")
	require.NoError(t, err)
	style := decode[dto.StyleResponse](t, out)
	assert.Equal(t, "* { font-size: 14px; }\n", style.StyleCSS)

	after := decode[entities.WaybarConfigSnapshot](t, env.mustRun(t, "waybar", "snapshot", "get"))
	assert.Equal(t, saved.ModuleStyles, after.ModuleStyles, "saving the stylesheet keeps module styles")
	assert.Equal(t, []string{"clock"}, after.Layout.Center)

	reset := decode[entities.WaybarConfigSnapshot](t, env.mustRun(t, "waybar", "reset", "--yes"))
	assert.Equal(t, snap.ProfileID, reset.ProfileID)
	assert.Empty(t, reset.Passthrough)
}

func TestCLI_ImportLive(t *testing.T) {
	env := newCLIEnv(t)
	require.NoError(t, os.MkdirAll(env.waybarDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(env.waybarDir, "config.jsonc"), []byte(`{
  // hand written
  "position": "bottom",
  "modules-right": ["clock"],
  "clock": {"format": "{:%R}"},
}`), 0o644))

	imported := decode[dto.ProfileChangeResponse](t, env.mustRun(t, "waybar", "profiles", "import", "Mine"))
	assert.Equal(t, "mine", imported.Profile.ID)
	assert.Equal(t, "default", imported.ActiveProfileID)

	env.mustRun(t, "waybar", "profiles", "select", "mine")
	snap := decode[entities.WaybarConfigSnapshot](t, env.mustRun(t, "waybar", "snapshot", "get"))
	assert.Equal(t, "bottom", snap.Globals.Position)
	assert.Equal(t, []string{"clock"}, snap.Layout.Right)
}

func TestCLI_InvalidOutputFormat(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run(t, "", "settings", "get", "--output", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestCLI_Version(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "version", "--short")
	assert.Equal(t, "dev\n", out)

	info := decode[map[string]string](t, env.mustRun(t, "version"))
	assert.Equal(t, "dev", info["version"])
	assert.NotEmpty(t, info["go_version"])
}

func TestCLI_ListOnFirstUseShowsDefault(t *testing.T) {
	env := newCLIEnv(t)

	list := decode[dto.ProfileListResponse](t, env.mustRun(t, "waybar", "profiles", "list"))
	require.Len(t, list.Profiles, 1)
	assert.Equal(t, "default", list.Profiles[0].ID)
	assert.Equal(t, "default", list.ActiveProfileID)
	assert.NoFileExists(t, filepath.Join(env.waybarDir, "config.jsonc"), "seeding does not touch live files")
}
