package config

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"limeal.fr/cobalt/pkg/logging"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "config.json"), logging.New(io.Discard))
}

func TestLoadMissingFileCreatesDefaults(t *testing.T) {
	s := newTestStore(t)

	cfg, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.FileExists(t, s.Path())
}

func TestLoadBackfillsMissingKeys(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"java_args":"-Xmx4G","selected_version":"1.20.1"}`), 0o644))

	cfg, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "-Xmx4G", cfg.JavaArgs)
	assert.Equal(t, "1.20.1", cfg.Selected())
	assert.Equal(t, DefaultJavaVersion, cfg.JavaVersion)
	assert.Nil(t, cfg.CurrentAccount)

	var onDisk map[string]any
	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &onDisk))
	for _, key := range []string{"java_args", "selected_version", "current_account", "separate_version_dirs", "java_path", "java_version"} {
		assert.Contains(t, onDisk, key)
	}
}

func TestLoadCorruptFileRestoresDefaults(t *testing.T) {
	for name, content := range map[string]string{
		"syntax": `{"java_args": `,
		"types":  `{"current_account": "abc"}`,
		"array":  `[1,2,3]`,
	} {
		t.Run(name, func(t *testing.T) {
			s := newTestStore(t)
			require.NoError(t, os.WriteFile(s.Path(), []byte(content), 0o644))

			cfg, err := s.Load()
			require.NoError(t, err)
			assert.Equal(t, Default(), cfg)

			again, err := s.Load()
			require.NoError(t, err)
			assert.Equal(t, Default(), again)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	version := "fabric-loader-0.15.11-1.20.1"
	account := 3
	java := "/opt/jdk/bin/java"
	want := &Config{
		JavaArgs:            "-Xmx6G -Xms6G -XX:+UseG1GC",
		SelectedVersion:     &version,
		CurrentAccount:      &account,
		SeparateVersionDirs: true,
		JavaPath:            &java,
		JavaVersion:         "21",
	}

	require.NoError(t, s.Save(want))
	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSetters(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SetSelectedVersion("1.16.5"))
	require.NoError(t, s.SetJavaRuntime("/java/java_8/bin/java", 8))
	id := 2
	require.NoError(t, s.SetCurrentAccount(&id))
	require.NoError(t, s.SetJavaArgs("-Xmx3G"))
	separate, err := s.ToggleSeparateVersionDirs()
	require.NoError(t, err)
	assert.True(t, separate)

	cfg, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "1.16.5", cfg.Selected())
	assert.Equal(t, "/java/java_8/bin/java", cfg.Java())
	assert.Equal(t, "8", cfg.JavaVersion)
	require.NotNil(t, cfg.CurrentAccount)
	assert.Equal(t, 2, *cfg.CurrentAccount)
	assert.Equal(t, "-Xmx3G", cfg.JavaArgs)
	assert.True(t, cfg.SeparateVersionDirs)

	require.NoError(t, s.SetJavaRuntime("", 0))
	cfg, err = s.Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.JavaPath)
	assert.Equal(t, "8", cfg.JavaVersion)
}

func TestUpdateFailureWritesNothing(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SetJavaArgs("-Xmx1G"))

	err := s.Update(func(c *Config) error {
		c.JavaArgs = "changed"
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	cfg, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "-Xmx1G", cfg.JavaArgs)
}
