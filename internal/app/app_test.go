package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/leg100/rtable/internal/logging"
	"github.com/leg100/rtable/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	dir := t.TempDir()
	app, err := New(Config{
		Store:    storage.File,
		DataDir:  dir,
		MinWidth: 4,
		Watch:    true,
		Logging:  logging.Options{Level: "info"},
	})
	require.NoError(t, err)
	t.Cleanup(app.Cleanup)

	assert.Equal(t, "demo", app.Table.ID())
	assert.Equal(t, 5, app.Table.ColumnCount())
	assert.NotNil(t, app.Changes)

	// widths persist across instances sharing a data directory
	_, err = app.Table.SetColumnWidth(0, 40)
	require.NoError(t, err)

	again, err := New(Config{Store: storage.File, DataDir: dir, MinWidth: 4})
	require.NoError(t, err)
	t.Cleanup(again.Cleanup)

	assert.Equal(t, 40.0, again.Table.Widths()[0])
}

func TestNew_TableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.yaml")
	def := "id: people\nheader:\n  - title: Name\n  - title: Email\nrows:\n  - [alice, alice@example.com]\n"
	require.NoError(t, os.WriteFile(path, []byte(def), 0o644))

	app, err := New(Config{TableFile: path, Store: storage.Memory, MinWidth: 4})
	require.NoError(t, err)
	t.Cleanup(app.Cleanup)

	assert.Equal(t, "people", app.Table.ID())
	assert.Equal(t, 2, app.Table.ColumnCount())
	assert.Nil(t, app.Changes)
}

func TestNew_MissingTableFile(t *testing.T) {
	_, err := New(Config{TableFile: filepath.Join(t.TempDir(), "missing.yaml"), Store: storage.Memory})
	assert.Error(t, err)
}

func TestNew_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rtable.log")

	app, err := New(Config{Store: storage.Memory, LogFile: path, Logging: logging.Options{Level: "info"}})
	require.NoError(t, err)
	app.Cleanup()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "loaded table")
}

func TestStart_Version(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	var stdout bytes.Buffer

	err := Start(&stdout, &bytes.Buffer{}, []string{"--version"})
	require.NoError(t, err)

	assert.Equal(t, "rtable unknown\n", stdout.String())
}

func TestStart_Help(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	var stderr bytes.Buffer

	err := Start(&bytes.Buffer{}, &stderr, []string{"--help"})
	require.NoError(t, err)

	assert.Contains(t, stderr.String(), "--store")
}
