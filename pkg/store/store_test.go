package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errUtils "github.com/strata-config/strata/errors"
	"github.com/strata-config/strata/pkg/document"
	"github.com/strata-config/strata/pkg/schema"
)

func widgetDescriptor(t *testing.T) *schema.Descriptor {
	t.Helper()
	desc, err := schema.NewBuilder("widget").
		Property(&schema.Property{Name: "color", Kind: schema.KindString, Default: "red"}).
		Property(&schema.Property{Name: "tags", Kind: schema.KindArray, IncludeCapable: true}).
		Build()
	require.NoError(t, err)
	return desc
}

func writeJSON(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name+".json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestSettingsMissingFileWritesDefaultsAndFails(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSettings(dir, widgetDescriptor(t))
	require.NoError(t, err)

	_, err = s.Read("main")
	require.ErrorIs(t, err, errUtils.ErrMissingRequiredFile)

	// The defaulted file was written for the user to review.
	written, readErr := document.ReadObjectFile(filepath.Join(dir, "main.json"))
	require.NoError(t, readErr)
	assert.Equal(t, map[string]any{"color": "red", "tags": []any{}}, written)

	// A retry after review succeeds.
	_, err = s.Read("main")
	assert.NoError(t, err)
}

func TestSettingsReadResolvesChain(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "base", `{"color": "red", "tags": ["a"]}`)
	writeJSON(t, dir, "child", `{"$extends": "base", "tags": ["b"]}`)

	s, err := NewSettings(dir, widgetDescriptor(t))
	require.NoError(t, err)

	doc, err := s.Read("child")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"color": "red", "tags": []any{"a", "b"}}, doc)
}

func TestSettingsDriftIsStructuredError(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "main", `{"color": "blue", "stale": 1}`)

	s, err := NewSettings(dir, widgetDescriptor(t))
	require.NoError(t, err)

	_, err = s.Read("main")
	require.ErrorIs(t, err, errUtils.ErrSanitizationDrift)

	var drift *errUtils.DriftError
	require.ErrorAs(t, err, &drift)
	assert.Equal(t, []string{"tags"}, drift.AddedProperties)
	assert.Equal(t, []string{"stale"}, drift.RemovedProperties)

	// Drift is reported, never fixed in place in Settings mode.
	raw, readErr := document.ReadObjectFile(filepath.Join(dir, "main.json"))
	require.NoError(t, readErr)
	assert.Equal(t, map[string]any{"color": "blue", "stale": float64(1)}, raw)
}

func TestSettingsPlainWriteRejected(t *testing.T) {
	s, err := NewSettings(t.TempDir(), widgetDescriptor(t))
	require.NoError(t, err)

	err = s.Write("main", map[string]any{})
	assert.ErrorIs(t, err, errUtils.ErrInvalidArgument)
}

func TestSaveEditedProducesMinimalChildProfile(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "base", `{"color": "red", "tags": ["a", "b"]}`)

	s, err := NewSettings(dir, widgetDescriptor(t))
	require.NoError(t, err)

	edited := map[string]any{"color": "red", "tags": []any{"a", "b"}, "size": float64(5)}
	require.NoError(t, s.SaveEdited("custom", "base", edited))

	saved, err := document.ReadObjectFile(filepath.Join(dir, "custom.json"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"$extends": "base", "size": float64(5)}, saved)
}

func TestStateMissingFileCreatedSilently(t *testing.T) {
	dir := t.TempDir()
	s, err := NewState(dir, widgetDescriptor(t))
	require.NoError(t, err)

	doc, err := s.Read("session")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"color": "red", "tags": []any{}}, doc)

	_, statErr := os.Stat(filepath.Join(dir, "session.json"))
	assert.NoError(t, statErr)
}

func TestStateDriftFixedInPlace(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "session", `{"color": "blue", "stale": 1}`)

	s, err := NewState(dir, widgetDescriptor(t))
	require.NoError(t, err)

	doc, err := s.Read("session")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"color": "blue", "tags": []any{}}, doc)

	// The file was rewritten with the sanitized shape.
	raw, readErr := document.ReadObjectFile(filepath.Join(dir, "session.json"))
	require.NoError(t, readErr)
	assert.Equal(t, doc, raw)
}

func TestStateWriteAndReadBack(t *testing.T) {
	dir := t.TempDir()
	s, err := NewState(dir, widgetDescriptor(t))
	require.NoError(t, err)

	require.NoError(t, s.Write("session", map[string]any{"color": "green", "tags": []any{}}))

	doc, err := s.Read("session")
	require.NoError(t, err)
	assert.Equal(t, "green", doc["color"])
}

func TestOutputIsWriteOnly(t *testing.T) {
	dir := t.TempDir()
	s, err := NewOutput(dir)
	require.NoError(t, err)

	require.NoError(t, s.Write("report", map[string]any{"ok": true}))

	_, err = s.Read("report")
	assert.ErrorIs(t, err, errUtils.ErrReadOnlyStore)
}

func TestOutputWriteTimestamped(t *testing.T) {
	dir := t.TempDir()
	s, err := NewOutput(dir)
	require.NoError(t, err)
	s.now = func() time.Time {
		return time.Date(2026, 8, 31, 14, 30, 5, 0, time.UTC)
	}

	name, err := s.WriteTimestamped("report", map[string]any{"ok": true})
	require.NoError(t, err)
	assert.Equal(t, "report_2026-08-31_14-30-05", name)

	_, statErr := os.Stat(filepath.Join(dir, name+".json"))
	assert.NoError(t, statErr)
}

func TestOutputRunDirectory(t *testing.T) {
	dir := t.TempDir()
	s, err := NewOutput(dir)
	require.NoError(t, err)
	s.now = func() time.Time {
		return time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	}

	run, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2026-08-31_09-00-00"), run.BaseDir())

	require.NoError(t, run.Write("report", map[string]any{"ok": true}))
	_, statErr := os.Stat(filepath.Join(run.BaseDir(), "report.json"))
	assert.NoError(t, statErr)
}

func TestSubdirectoryEscapeRejected(t *testing.T) {
	s, err := NewOutput(t.TempDir())
	require.NoError(t, err)

	_, err = s.Subdirectory("../elsewhere")
	assert.ErrorIs(t, err, errUtils.ErrPathEscape)

	_, err = s.Subdirectory("")
	assert.ErrorIs(t, err, errUtils.ErrInvalidArgument)
}

func TestDiscoverExcludesPrivateAndSchemaPaths(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "main", `{}`)
	writeJSON(t, dir, "sub/extra", `{}`)
	writeJSON(t, dir, "_private/hidden", `{}`)
	writeJSON(t, dir, "_draft", `{}`)
	writeJSON(t, dir, "widget.schema", `{}`)
	writeJSON(t, dir, "sub/other.schema", `{}`)

	s, err := NewSettings(dir, widgetDescriptor(t))
	require.NoError(t, err)

	names, err := s.Discover()
	require.NoError(t, err)
	assert.Equal(t, []string{"main", "sub/extra"}, names)
}

func TestDiscoverCustomExcludeGlobs(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "keep", `{}`)
	writeJSON(t, dir, "skip-me", `{}`)

	s, err := NewSettings(dir, widgetDescriptor(t), WithExcludeGlobs("skip-*"))
	require.NoError(t, err)

	names, err := s.Discover()
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, names)
}

func TestTableRoundTrip(t *testing.T) {
	s, err := NewState(t.TempDir(), nil)
	require.NoError(t, err)

	rows := [][]string{{"id", "name"}, {"1", "alpha"}, {"2", "beta"}}
	require.NoError(t, s.WriteTable("index", rows))

	read, err := s.ReadTable("index")
	require.NoError(t, err)
	assert.Equal(t, rows, read)
}

func TestTableMissingCreatedEmpty(t *testing.T) {
	dir := t.TempDir()
	s, err := NewState(dir, nil)
	require.NoError(t, err)

	rows, err := s.ReadTable("index")
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, statErr := os.Stat(filepath.Join(dir, "index.csv"))
	assert.NoError(t, statErr)
}

func TestTableRejectedOutsideStateMode(t *testing.T) {
	s, err := NewOutput(t.TempDir())
	require.NoError(t, err)

	_, err = s.ReadTable("index")
	assert.ErrorIs(t, err, errUtils.ErrInvalidArgument)
}
